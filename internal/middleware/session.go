package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/rentfront/internal/pkg"
	"github.com/simp-lee/rentfront/internal/session"
)

// SessionResolver turns a raw credential into a Session.
type SessionResolver interface {
	Resolve(raw string) session.Session
}

// SessionCookie describes the cookie carrying the session credential.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session resolves the session cookie into the request context. An invalid
// credential is cleared from the browser and the request continues as
// anonymous; guarded routes decide what to do with it.
func Session(resolver SessionResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(cookie.Name)
		sess := resolver.Resolve(raw)

		ctx := session.WithSession(c.Request.Context(), sess)
		switch sess.State {
		case session.Authenticated:
			ctx = logger.WithContextAttrs(ctx, slog.String("user_id", sess.UserID()))
		case session.Invalid:
			slog.DebugContext(ctx, "discarding invalid session credential")
			ClearSessionCookie(c, cookie)
		case session.Anonymous:
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentSession returns the session resolved for c.
func CurrentSession(c *gin.Context) session.Session {
	return session.FromContext(c.Request.Context())
}

// RequireLogin stops requests without an authenticated session. API callers
// get 401. Page visitors with no credential are sent to the login page with a
// return path; a credential that failed verification sends them home.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess.LoggedIn() {
			c.Next()
			return
		}

		if pkg.IsAPIRequest(c) {
			pkg.RenderError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if sess.State == session.Invalid {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Redirect(http.StatusSeeOther, LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAdmin lets only admin sessions through. Pages redirect everyone
// else home; API callers get 401 when not logged in and 403 otherwise.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess.IsAdmin() {
			c.Next()
			return
		}

		if !pkg.IsAPIRequest(c) {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		if !sess.LoggedIn() {
			pkg.RenderError(c, http.StatusUnauthorized, "authentication required")
		} else {
			slog.WarnContext(c.Request.Context(), "admin access denied",
				slog.String("path", c.Request.URL.Path),
			)
			pkg.RenderError(c, http.StatusForbidden, "admin access required")
		}
		c.Abort()
	}
}

// LoginURL returns the login page URL that returns to next afterwards.
func LoginURL(next string) string {
	if !IsLocalPath(next) || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// IsLocalPath reports whether p is a same-origin absolute path, safe to
// redirect to after login.
func IsLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// SetSessionCookie stores the credential in an HttpOnly cookie that expires
// with it.
func SetSessionCookie(c *gin.Context, cookie SessionCookie, token string, expiresAt int64) {
	ck := &http.Cookie{
		Name:     cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if expiresAt > 0 {
		ck.Expires = time.Unix(expiresAt, 0)
		ck.MaxAge = int(time.Until(ck.Expires) / time.Second)
		if ck.MaxAge <= 0 {
			ck.MaxAge = -1
		}
	}
	http.SetCookie(c.Writer, ck)
}

// ClearSessionCookie removes the session cookie from the browser.
func ClearSessionCookie(c *gin.Context, cookie SessionCookie) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
