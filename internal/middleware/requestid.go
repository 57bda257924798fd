package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/rentfront/internal/pkg"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls where request ids come from.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming id, for deployments behind
	// a proxy that assigns one.
	TrustUpstream bool
	// Header names the incoming and outgoing header. Defaults to X-Request-ID.
	Header string
}

// RequestID assigns a fresh UUID to every request.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags each request with an id. The id is echoed in the
// response header, attached to every log record of the request and carried
// on the request context, where the backend client picks it up and forwards
// it.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	header := cfg.Header
	if header == "" {
		header = requestIDHeader
	}

	return func(c *gin.Context) {
		var id string
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(header); requestIDPattern.MatchString(upstream) {
				id = upstream
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(header, id)

		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(pkg.WithRequestID(ctx, id))

		c.Next()
	}
}

// GetRequestID returns the request id assigned to c, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
