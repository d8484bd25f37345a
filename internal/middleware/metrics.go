package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// RequestObserver records HTTP request metrics.
type RequestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics returns middleware that captures request metrics labelled by route
// template. Requests that match no route share one label.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
