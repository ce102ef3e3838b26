package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	RequestStarted()
	RequestFinished(method, route string, status int, elapsed time.Duration)
}

// RequestMetrics records request counts and durations labelled by route template.
func RequestMetrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		recorder.RequestStarted()
		c.Next()
		recorder.RequestFinished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
