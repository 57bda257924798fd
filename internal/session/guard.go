package session

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/rentfront/internal/domain"
)

// tokenClaims is the wire shape of the credential payload. The backend puts
// the account id in "sub"; older tokens carry it in "id" instead.
type tokenClaims struct {
	LegacyID string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Guard verifies and decodes session credentials. A Guard is safe for
// concurrent use.
type Guard struct {
	secret []byte
	now    func() time.Time
	leeway time.Duration
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithClock replaces the clock used for expiry checks.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

// WithLeeway tolerates clock skew between this service and the token issuer.
func WithLeeway(d time.Duration) GuardOption {
	return func(g *Guard) { g.leeway = d }
}

// NewGuard creates a Guard for HS256 credentials signed with secret.
func NewGuard(secret string, opts ...GuardOption) (*Guard, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session: secret is required")
	}
	g := &Guard{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Resolve turns a raw credential into a Session. An empty credential is
// Anonymous. Anything that fails to parse, verify or validate is Invalid;
// Resolve never returns an error and never panics on bad input.
func (g *Guard) Resolve(raw string) Session {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{State: Anonymous}
	}

	claims, err := g.parse(raw)
	if err != nil {
		slog.Debug("session credential rejected", slog.String("reason", err.Error()))
		return Session{State: Invalid}
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.LegacyID
	}
	if subject == "" {
		slog.Debug("session credential rejected", slog.String("reason", "missing subject"))
		return Session{State: Invalid}
	}

	role, known := domain.ParseRole(claims.Role)
	if !known {
		slog.Warn("session credential carries unknown role; treating as customer",
			slog.String("subject", subject), slog.String("role", claims.Role))
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return Session{
		State: Authenticated,
		Claims: Claims{
			SubjectID: subject,
			Email:     claims.Email,
			IssuedAt:  issuedAt,
			Role:      role,
		},
		Token: raw,
	}
}

func (g *Guard) parse(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithLeeway(g.leeway),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
