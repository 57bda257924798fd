package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/pkg"
	"github.com/simp-lee/rentfront/internal/session"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfNonceBytes = 32
)

// CSRFConfig configures the form guard.
type CSRFConfig struct {
	Secret string
	// Secure restricts the token cookie to HTTPS.
	Secure bool
}

// CSRF protects the HTML form routes with a signed double-submit cookie.
//
// A token is hex(nonce) + "." + base64url(HMAC-SHA256(secret, subject|nonce))
// where subject is the user id of the current session, empty for visitors.
// Binding the token to the subject means a token handed out before login stops
// working once the viewer signs in or out, and the next page view mints a
// fresh one.
//
// Safe methods get a token cookie and expose the token to templates under
// pkg.CSRFTokenKey. Unsafe methods must echo the cookie in the "_csrf_token"
// form field or the X-CSRF-Token header, or they are rejected with 403.
// It reads the session placed by the Session middleware, so it must run after
// it.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	g := csrfGuard{secret: []byte(strings.TrimSpace(cfg.Secret)), secure: cfg.Secure}
	if len(g.secret) == 0 {
		return func(c *gin.Context) {
			pkg.RenderError(c, http.StatusInternalServerError, "csrf secret is required")
			c.Abort()
		}
	}
	return g.handle
}

// GetCSRFToken returns the token the CSRF middleware stored for this request.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(pkg.CSRFTokenKey)
}

var (
	errCSRFMissing = errors.New("CSRF token missing")
	errCSRFInvalid = errors.New("CSRF token invalid")
)

type csrfGuard struct {
	secret []byte
	secure bool
}

func (g csrfGuard) handle(c *gin.Context) {
	subject := session.FromContext(c.Request.Context()).UserID()

	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		token, err := c.Cookie(csrfCookieName)
		if err != nil || !g.valid(token, subject) {
			if token, err = g.issue(subject); err != nil {
				pkg.RenderError(c, http.StatusInternalServerError, "failed to generate CSRF token")
				c.Abort()
				return
			}
			g.setCookie(c, token)
		}
		c.Set(pkg.CSRFTokenKey, token)
		c.Next()

	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		token, err := g.check(c, subject)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "csrf check failed",
				slog.String("reason", err.Error()),
				slog.String("path", c.Request.URL.Path),
			)
			pkg.RenderError(c, http.StatusForbidden, err.Error())
			c.Abort()
			return
		}
		c.Set(pkg.CSRFTokenKey, token)
		c.Next()

	default:
		c.Next()
	}
}

// check compares the submitted token with the cookie and verifies the cookie
// was minted for subject.
func (g csrfGuard) check(c *gin.Context, subject string) (string, error) {
	cookie, err := c.Cookie(csrfCookieName)
	if err != nil || cookie == "" {
		return "", errCSRFMissing
	}
	submitted := c.PostForm(csrfFormField)
	if submitted == "" {
		submitted = c.GetHeader(csrfHeaderName)
	}
	if submitted == "" {
		return "", errCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) != 1 || !g.valid(cookie, subject) {
		return "", errCSRFInvalid
	}
	return cookie, nil
}

func (g csrfGuard) issue(subject string) (string, error) {
	nonce := make([]byte, csrfNonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	n := hex.EncodeToString(nonce)
	return n + "." + g.sign(n, subject), nil
}

func (g csrfGuard) sign(nonce, subject string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(subject))
	mac.Write([]byte{'|'})
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// valid reports whether token is well formed and was signed for subject.
func (g csrfGuard) valid(token, subject string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(g.sign(nonce, subject)))
}

// setCookie stores the token where page scripts can read it.
func (g csrfGuard) setCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
