package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/rentfront/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(testSecret, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return g
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func validClaims(role string) tokenClaims {
	return tokenClaims{
		Email: "asha@example.com",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-42",
			IssuedAt:  jwt.NewNumericDate(fixedNow.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
	}
}

func TestNewGuard_RequiresSecret(t *testing.T) {
	if _, err := NewGuard("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestResolve_EmptyIsAnonymous(t *testing.T) {
	g := newTestGuard(t)
	for _, raw := range []string{"", "   "} {
		s := g.Resolve(raw)
		if s.State != Anonymous {
			t.Errorf("Resolve(%q).State = %v; want anonymous", raw, s.State)
		}
		if s.LoggedIn() || s.IsAdmin() {
			t.Errorf("Resolve(%q) should not be logged in", raw)
		}
	}
}

func TestResolve_GarbageIsInvalid(t *testing.T) {
	g := newTestGuard(t)
	for _, raw := range []string{"garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..", strings.Repeat("x", 4096)} {
		s := g.Resolve(raw)
		if s.State != Invalid {
			t.Errorf("Resolve(%q).State = %v; want invalid", raw, s.State)
		}
		if s.LoggedIn() {
			t.Errorf("invalid session must not be logged in")
		}
		if s.Token != "" {
			t.Errorf("invalid session must not keep the token")
		}
	}
}

func TestResolve_AuthenticatedCustomer(t *testing.T) {
	g := newTestGuard(t)
	raw := sign(t, testSecret, jwt.SigningMethodHS256, validClaims("user"))

	s := g.Resolve(raw)
	if s.State != Authenticated {
		t.Fatalf("State = %v; want authenticated", s.State)
	}
	if s.Claims.SubjectID != "u-42" || s.Claims.Email != "asha@example.com" {
		t.Errorf("Claims = %+v", s.Claims)
	}
	if !s.Claims.IssuedAt.Equal(fixedNow.Add(-time.Hour)) {
		t.Errorf("IssuedAt = %v", s.Claims.IssuedAt)
	}
	if s.Claims.Role != domain.RoleCustomer {
		t.Errorf("Role = %q; want customer", s.Claims.Role)
	}
	if s.IsAdmin() {
		t.Error("customer must not be admin")
	}
	if s.Token != raw || s.UserID() != "u-42" {
		t.Errorf("Token/UserID not carried: %q %q", s.Token, s.UserID())
	}
}

func TestResolve_Admin(t *testing.T) {
	g := newTestGuard(t)
	s := g.Resolve(sign(t, testSecret, jwt.SigningMethodHS256, validClaims("admin")))
	if !s.IsAdmin() {
		t.Fatalf("expected admin session, got %+v", s)
	}
}

func TestResolve_RoleMatchIsExact(t *testing.T) {
	g := newTestGuard(t)
	for _, role := range []string{"Admin", "ADMIN", " admin", "administrator"} {
		s := g.Resolve(sign(t, testSecret, jwt.SigningMethodHS256, validClaims(role)))
		if s.State != Authenticated {
			t.Fatalf("role %q: State = %v; want authenticated", role, s.State)
		}
		if s.IsAdmin() {
			t.Errorf("role %q must not open admin views", role)
		}
	}
}

func TestResolve_LegacyIDClaim(t *testing.T) {
	g := newTestGuard(t)
	c := validClaims("")
	c.Subject = ""
	c.LegacyID = "legacy-7"
	s := g.Resolve(sign(t, testSecret, jwt.SigningMethodHS256, c))
	if s.UserID() != "legacy-7" {
		t.Errorf("UserID() = %q; want legacy-7", s.UserID())
	}
}

func TestResolve_RejectsUntrustedTokens(t *testing.T) {
	g := newTestGuard(t)

	expired := validClaims("admin")
	expired.ExpiresAt = jwt.NewNumericDate(fixedNow.Add(-time.Minute))

	future := validClaims("admin")
	future.IssuedAt = jwt.NewNumericDate(fixedNow.Add(time.Hour))

	noSubject := validClaims("admin")
	noSubject.Subject = ""

	tests := []struct {
		name string
		raw  string
	}{
		{"expired", sign(t, testSecret, jwt.SigningMethodHS256, expired)},
		{"issued in the future", sign(t, testSecret, jwt.SigningMethodHS256, future)},
		{"wrong secret", sign(t, "another-secret-another-secret-xx", jwt.SigningMethodHS256, validClaims("admin"))},
		{"wrong algorithm", sign(t, testSecret, jwt.SigningMethodHS512, validClaims("admin"))},
		{"missing subject", sign(t, testSecret, jwt.SigningMethodHS256, noSubject)},
		{"unsigned", func() string {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("admin")).SignedString(jwt.UnsafeAllowNoneSignatureType)
			if err != nil {
				t.Fatalf("sign none: %v", err)
			}
			return tok
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := g.Resolve(tt.raw)
			if s.State != Invalid {
				t.Errorf("State = %v; want invalid", s.State)
			}
			if s.IsAdmin() {
				t.Error("rejected token must not open admin views")
			}
		})
	}
}

func TestResolve_LeewayToleratesSkew(t *testing.T) {
	g, err := NewGuard(testSecret,
		WithClock(func() time.Time { return fixedNow }),
		WithLeeway(2*time.Minute),
	)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	c := validClaims("")
	c.ExpiresAt = jwt.NewNumericDate(fixedNow.Add(-time.Minute))
	if s := g.Resolve(sign(t, testSecret, jwt.SigningMethodHS256, c)); s.State != Authenticated {
		t.Errorf("State = %v; want authenticated within leeway", s.State)
	}
}

func TestIssuer_RoundTripsThroughGuard(t *testing.T) {
	iss, err := NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	iss.now = func() time.Time { return fixedNow }

	user := &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin}
	user.ID = "u-1"
	tok, err := iss.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.ExpiresAt != fixedNow.Add(time.Hour).Unix() {
		t.Errorf("ExpiresAt = %d", tok.ExpiresAt)
	}

	s := newTestGuard(t).Resolve(tok.Token)
	if !s.IsAdmin() || s.UserID() != "u-1" || s.Claims.Email != "admin@example.com" {
		t.Errorf("round trip session = %+v", s)
	}
}

func TestIssuer_Validation(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewIssuer(testSecret, 0); err == nil {
		t.Error("expected error for zero expiry")
	}
	iss, _ := NewIssuer(testSecret, time.Hour)
	if _, err := iss.Issue(&domain.User{}); err == nil {
		t.Error("expected error for user without id")
	}
	if _, err := iss.Issue(nil); err == nil {
		t.Error("expected error for nil user")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if s := FromContext(context.Background()); s.State != Anonymous {
		t.Errorf("empty context should be anonymous, got %v", s.State)
	}
	want := Session{State: Authenticated, Claims: Claims{SubjectID: "u-9", Role: domain.RoleAdmin}}
	got := FromContext(WithSession(context.Background(), want))
	if got.UserID() != "u-9" || !got.IsAdmin() {
		t.Errorf("FromContext = %+v", got)
	}
}

func TestState_String(t *testing.T) {
	if Anonymous.String() != "anonymous" || Authenticated.String() != "authenticated" || Invalid.String() != "invalid" {
		t.Error("unexpected state names")
	}
	if State(99).String() != "unknown" {
		t.Error("out-of-range state should be unknown")
	}
}
