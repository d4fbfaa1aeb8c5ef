package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count and latency per route pattern.
// A nil recorder yields a pass-through middleware.
func HTTPMetrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// FullPath is the route pattern, which keeps label cardinality bounded
		m.Record(c.Request.Context(), c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
