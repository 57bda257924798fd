package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerConfig configures the access log.
type LoggerConfig struct {
	// QuietPrefixes lists path prefixes (health probes, metrics scrapes,
	// static assets) whose successful requests are logged at Debug.
	QuietPrefixes []string
	// SlowThreshold raises successful requests slower than it to Warn.
	// Zero disables the check.
	SlowThreshold time.Duration
}

// Logger writes one access log line per request with the default config.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return LoggerWithConfig(logger, LoggerConfig{})
}

// LoggerWithConfig writes one access log line per request. The level follows
// the status class: Info for 2xx/3xx, Warn for 4xx, Error for 5xx. Records
// carry the request context, so request_id and user_id attached upstream are
// included.
func LoggerWithConfig(logger *slog.Logger, cfg LoggerConfig) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case cfg.SlowThreshold > 0 && latency > cfg.SlowThreshold:
			level = slog.LevelWarn
		case hasAnyPrefix(path, cfg.QuietPrefixes):
			level = slog.LevelDebug
		}

		ctx := c.Request.Context()
		if !logger.Enabled(ctx, level) {
			return
		}
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.LogAttrs(ctx, level, "request", attrs...)
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
