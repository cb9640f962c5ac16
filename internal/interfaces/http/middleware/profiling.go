package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/retailcore/backend/internal/infrastructure/telemetry"
)

// Profiling tags CPU samples with the route pattern and method so Pyroscope
// can slice profiles per endpoint. Unmatched routes are left unlabeled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		labels := map[string]string{
			telemetry.ProfilingLabelRoute:  c.FullPath(),
			telemetry.ProfilingLabelMethod: c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
