package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// Recovery turns a handler panic into a 500 page or JSON envelope and counts
// it. Panics caused by a client that went away are logged at Warn without a
// response; http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(logger *slog.Logger, collector *metrics.Collector) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := c.Request.Context()
			if brokenConnection(rec) {
				logger.WarnContext(ctx, "client connection lost",
					slog.Any("error", rec),
					slog.String("path", c.Request.URL.Path),
				)
				c.Abort()
				return
			}

			collector.RecordPanic()
			logger.ErrorContext(ctx, "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			c.Abort()
			if c.Writer.Written() {
				return
			}
			pkg.RenderError(c, http.StatusInternalServerError, "internal server error")
		}()
		c.Next()
	}
}

// brokenConnection reports whether rec is a write error to a peer that
// closed the connection.
func brokenConnection(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}
