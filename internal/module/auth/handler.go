package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// AuthHandler serves the JSON sign-in endpoints. Clients get the credential
// in the body and send it back as a bearer token; no cookie is set.
type AuthHandler struct {
	svc Service
}

func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	tok, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	writeToken(c, http.StatusOK, tok, err)
}

// Register handles POST /api/v1/auth/register. The new account is signed in
// right away.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	tok, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	writeToken(c, http.StatusCreated, tok, err)
}

func writeToken(c *gin.Context, status int, tok *domain.AuthToken, err error) {
	if err != nil {
		pkg.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	resp := newTokenResponse(tok)
	if status == http.StatusCreated {
		pkg.Created(c, resp)
		return
	}
	pkg.Success(c, resp)
}
