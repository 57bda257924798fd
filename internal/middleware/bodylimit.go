package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/pkg"
)

// BodyLimit caps request bodies at maxBytes. Requests that declare a larger
// Content-Length are rejected up front; others fail when a handler reads past
// the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			pkg.RenderError(c, http.StatusRequestEntityTooLarge, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
