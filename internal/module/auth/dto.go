package auth

import "github.com/simp-lee/rentfront/internal/domain"

// LoginRequest is the sign-in input of both the API and the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterRequest is the sign-up input. The password bounds follow bcrypt,
// which ignores anything past 72 bytes.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

type loginForm struct {
	LoginRequest
	Next string `form:"next"`
}

type registerForm struct {
	RegisterRequest
	Next string `form:"next"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

func newTokenResponse(tok *domain.AuthToken) tokenResponse {
	if tok == nil {
		return tokenResponse{TokenType: "Bearer"}
	}
	return tokenResponse{Token: tok.Token, TokenType: "Bearer", ExpiresAt: tok.ExpiresAt}
}
