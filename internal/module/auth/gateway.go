package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/session"
)

var errInvalidCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", nil)

// localGateway serves logins from the local user store and signs its own
// session credentials.
type localGateway struct {
	users  domain.UserRepository
	issuer *session.Issuer
	cost   int
}

// NewLocalGateway creates an AuthGateway backed by users and issuer.
func NewLocalGateway(users domain.UserRepository, issuer *session.Issuer) domain.AuthGateway {
	return &localGateway{users: users, issuer: issuer, cost: bcrypt.DefaultCost}
}

func (g *localGateway) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the account exists.
		if domain.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return g.issue(user)
}

func (g *localGateway) Register(ctx context.Context, name, email, password string) (*domain.AuthToken, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := g.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return g.issue(user)
}

func (g *localGateway) issue(user *domain.User) (*domain.AuthToken, error) {
	tok, err := g.issuer.Issue(user)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to issue token", err)
	}
	return tok, nil
}
