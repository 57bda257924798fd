// Package session resolves the signed session credential a browser presents
// into an explicit Session value carried on the request context.
package session

import (
	"context"
	"time"

	"github.com/simp-lee/rentfront/internal/domain"
)

// State is the outcome of resolving a credential.
type State int

const (
	// Anonymous means no credential was presented.
	Anonymous State = iota
	// Authenticated means the credential verified and carries usable claims.
	Authenticated
	// Invalid means a credential was presented but could not be trusted:
	// malformed, wrongly signed, or expired.
	Invalid
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Claims is the decoded payload of a session credential.
type Claims struct {
	SubjectID string
	Email     string
	IssuedAt  time.Time
	Role      domain.Role
}

// Session is the resolved view of the current viewer.
type Session struct {
	State  State
	Claims Claims
	// Token is the raw credential, forwarded to the backend as a bearer token.
	// It is empty unless State is Authenticated.
	Token string
}

// LoggedIn reports whether the viewer is authenticated. Invalid sessions
// display exactly like anonymous ones.
func (s Session) LoggedIn() bool {
	return s.State == Authenticated
}

// IsAdmin reports whether the viewer may open admin views.
func (s Session) IsAdmin() bool {
	return s.LoggedIn() && s.Claims.Role.CanAccessAdmin()
}

// UserID returns the subject of an authenticated session, or "".
func (s Session) UserID() string {
	if !s.LoggedIn() {
		return ""
	}
	return s.Claims.SubjectID
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if ctx == nil {
		return Session{}
	}
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return Session{}
}
