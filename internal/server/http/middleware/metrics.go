package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digimarket/internal/telemetry"
)

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		telemetry.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
