package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/middleware"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// AuthPageHandler serves the sign-in and registration pages.
type AuthPageHandler struct {
	svc    Service
	cookie middleware.SessionCookie
}

// NewPageHandler creates an AuthPageHandler that stores credentials in cookie.
func NewPageHandler(svc Service, cookie middleware.SessionCookie) *AuthPageHandler {
	return &AuthPageHandler{svc: svc, cookie: cookie}
}

// LoginPage handles GET /login.
func (h *AuthPageHandler) LoginPage(c *gin.Context) {
	next := returnTarget(c.Query("next"))
	if middleware.CurrentSession(c).LoggedIn() {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	c.HTML(http.StatusOK, "auth/login.html", pkg.View(c, gin.H{
		"Title": "Sign in",
		"Next":  next,
	}))
}

// Login handles POST /login.
func (h *AuthPageHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, "auth/login.html", http.StatusBadRequest, "Enter your email and password.", gin.H{
			"Email": form.Email,
			"Next":  returnTarget(form.Next),
		})
		return
	}

	tok, err := h.svc.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.formError(c, "auth/login.html", err, gin.H{"Email": form.Email, "Next": returnTarget(form.Next)})
		return
	}

	middleware.SetSessionCookie(c, h.cookie, tok.Token, tok.ExpiresAt)
	c.Redirect(http.StatusSeeOther, returnTarget(form.Next))
}

// RegisterPage handles GET /register.
func (h *AuthPageHandler) RegisterPage(c *gin.Context) {
	next := returnTarget(c.Query("next"))
	if middleware.CurrentSession(c).LoggedIn() {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	c.HTML(http.StatusOK, "auth/register.html", pkg.View(c, gin.H{
		"Title": "Create an account",
		"Next":  next,
	}))
}

// Register handles POST /register.
func (h *AuthPageHandler) Register(c *gin.Context) {
	var form registerForm
	err := c.ShouldBind(&form)
	keep := gin.H{"Name": form.Name, "Email": form.Email, "Next": returnTarget(form.Next)}
	if err != nil {
		h.renderForm(c, "auth/register.html", http.StatusBadRequest,
			"Enter your name, a valid email and a password of 8 to 72 characters.", keep)
		return
	}

	tok, err := h.svc.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		h.formError(c, "auth/register.html", err, keep)
		return
	}

	slog.InfoContext(c.Request.Context(), "account registered")
	middleware.SetSessionCookie(c, h.cookie, tok.Token, tok.ExpiresAt)
	c.Redirect(http.StatusSeeOther, returnTarget(form.Next))
}

// Logout handles POST /logout.
func (h *AuthPageHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.cookie)
	c.Redirect(http.StatusSeeOther, "/")
}

// formError re-renders a form for errors the viewer can fix and falls back to
// the error page otherwise.
func (h *AuthPageHandler) formError(c *gin.Context, page string, err error, data gin.H) {
	switch {
	case domain.IsValidation(err), domain.IsUnauthorized(err), domain.IsAlreadyExists(err):
		h.renderForm(c, page, domain.HTTPStatusCode(err), pkg.UserMessage(err), data)
	default:
		pkg.PageError(c, err)
	}
}

func (h *AuthPageHandler) renderForm(c *gin.Context, page string, status int, message string, data gin.H) {
	data["Error"] = message
	c.HTML(status, page, pkg.View(c, data))
}

// returnTarget keeps next only when it stays on this site.
func returnTarget(next string) string {
	if middleware.IsLocalPath(next) {
		return next
	}
	return "/"
}
