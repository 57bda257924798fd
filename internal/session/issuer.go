package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/simp-lee/rentfront/internal/domain"
)

// Issuer signs credentials in the shape Guard accepts. Only the local data
// source issues credentials; with the remote backend the backend signs them.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer that signs HS256 tokens valid for expiry.
func NewIssuer(secret string, expiry time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session: secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("session: expiry must be positive")
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Issue signs a credential for user.
func (i *Issuer) Issue(user *domain.User) (*domain.AuthToken, error) {
	if user == nil || user.ID == "" {
		return nil, errors.New("session: user id is required")
	}
	now := i.now()
	expiresAt := now.Add(i.expiry)
	role := user.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	claims := tokenClaims{
		Email: user.Email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, err
	}
	return &domain.AuthToken{Token: signed, ExpiresAt: expiresAt.Unix()}, nil
}
