package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/metrics"
)

// Metrics records request count and latency per matched route.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
