package backend

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/rentfront/internal/domain"
)

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type authGateway struct {
	client *Client
}

// NewAuthGateway returns a domain.AuthGateway where the backend checks
// credentials and signs the session credential.
func NewAuthGateway(c *Client) domain.AuthGateway {
	return &authGateway{client: c}
}

func (g *authGateway) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	var resp tokenResponse
	err := g.client.send(ctx, "POST /auth/login", http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		// The backend reports bad credentials as 400 or 404 on older versions.
		if domain.IsValidation(err) || domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", err)
		}
		return nil, err
	}
	return tokenFrom(resp)
}

func (g *authGateway) Register(ctx context.Context, name, email, password string) (*domain.AuthToken, error) {
	var resp tokenResponse
	err := g.client.send(ctx, "POST /auth/register", http.MethodPost, "/auth/register", credentials{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return tokenFrom(resp)
}

// tokenFrom reads the expiry out of the backend's token so the cookie can
// expire with it. The signature is checked later by the session guard.
func tokenFrom(resp tokenResponse) (*domain.AuthToken, error) {
	if resp.Token == "" {
		return nil, domain.NewAppError(domain.CodeUpstream, "backend returned no token", nil)
	}
	tok := &domain.AuthToken{Token: resp.Token}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, &claims); err == nil && claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return tok, nil
}
