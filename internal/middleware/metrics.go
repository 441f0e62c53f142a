package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records request timings.
type RequestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics observes every request under its route template, so week and
// teacher ids do not explode label cardinality. Unmatched routes are grouped.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		observer.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
