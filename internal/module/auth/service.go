package auth

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/rentfront/internal/domain"
)

const (
	maxNameLength     = 100
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// Service signs viewers in and creates accounts.
type Service interface {
	Login(ctx context.Context, email, password string) (*domain.AuthToken, error)
	Register(ctx context.Context, name, email, password string) (*domain.AuthToken, error)
}

type authService struct {
	gateway domain.AuthGateway
}

// NewService returns a Service that checks input before handing it to gateway.
func NewService(gateway domain.AuthGateway) Service {
	return &authService{gateway: gateway}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	return s.gateway.Login(ctx, email, password)
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.AuthToken, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegisterInput(name, email, password); err != nil {
		return nil, err
	}
	return s.gateway.Register(ctx, name, email, password)
}

// normalizeEmail trims and lower-cases an address so the same mailbox always
// maps to one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegisterInput reports the first problem with a sign-up form.
func validateRegisterInput(name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return invalid("name is required")
	case n > maxNameLength:
		return invalid("name must not exceed 100 characters")
	}

	if email == "" {
		return invalid("email is required")
	}
	// Only a bare address is accepted, not "Name <addr>".
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return invalid("email must be a valid email address")
	}

	switch {
	case len(password) < minPasswordLength:
		return invalid("password must be at least 8 characters")
	case len(password) > maxPasswordLength:
		return invalid("password must not exceed 72 characters")
	}
	return nil
}

func invalid(msg string) error {
	return domain.NewAppError(domain.CodeValidation, msg, nil)
}
