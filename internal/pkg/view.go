package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/session"
)

// CSRFTokenKey is the gin.Context key under which the CSRF middleware stores
// the token for templates.
const CSRFTokenKey = "CSRFToken"

// errorTemplates maps HTTP status codes to their error template paths.
var errorTemplates = map[int]string{
	http.StatusBadRequest:            "errors/400.html",
	http.StatusUnauthorized:          "errors/403.html",
	http.StatusForbidden:             "errors/403.html",
	http.StatusNotFound:              "errors/404.html",
	http.StatusConflict:              "errors/400.html",
	http.StatusRequestEntityTooLarge: "errors/400.html",
	http.StatusTooManyRequests:       "errors/429.html",
	http.StatusInternalServerError:   "errors/500.html",
	http.StatusBadGateway:            "errors/502.html",
}

// View returns data augmented with the values every page layout reads: the
// viewer's session, the CSRF token and the current path.
func View(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = session.FromContext(c.Request.Context())
	data["CSRFToken"] = c.GetString(CSRFTokenKey)
	data["CurrentPath"] = c.Request.URL.Path
	return data
}

// IsAPIRequest reports whether the request targets the JSON API.
func IsAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// RenderError sends an error response appropriate for the client. API routes
// and clients that only accept JSON get the JSON envelope; browsers get the
// error page for code, or errors/500.html when no page exists for it.
func RenderError(c *gin.Context, code int, message string) {
	if IsAPIRequest(c) || !AcceptsHTML(c) {
		c.JSON(code, Response{Code: code, Message: message})
		return
	}
	renderHTMLErrorPage(c, code, message)
}

// PageError renders err as an error page. Only messages of user-facing error
// codes are shown; internal and upstream failures get a generic text.
func PageError(c *gin.Context, err error) {
	code := domain.HTTPStatusCode(err)
	RenderError(c, code, UserMessage(err))
}

// UserMessage returns the text that may be shown to a viewer for err.
func UserMessage(err error) string {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return "Something went wrong. Please try again."
	}
	switch appErr.Code {
	case domain.CodeInternal:
		return "Something went wrong. Please try again."
	case domain.CodeUpstream:
		return "The marketplace is temporarily unavailable. Please try again shortly."
	default:
		return appErr.Message
	}
}

// AcceptsHTML returns true if the client accepts an HTML response.
// Matches text/html, */* (browser default), and empty Accept headers.
func AcceptsHTML(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(accept, "text/html") ||
		strings.Contains(accept, "*/*") ||
		strings.TrimSpace(accept) == ""
}

func renderHTMLErrorPage(c *gin.Context, code int, message string) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(code, "text/plain; charset=utf-8",
				[]byte(fmt.Sprintf("%d %s", code, http.StatusText(code))))
		}
	}()

	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = errorTemplates[http.StatusInternalServerError]
	}
	c.HTML(code, tmpl, View(c, gin.H{
		"Status":  code,
		"Message": message,
	}))
}
