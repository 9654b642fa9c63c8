package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}

// ConfirmDeleteHeader carries the id of the event the operator confirmed for deletion.
const ConfirmDeleteHeader = "X-Confirm-Delete"

// Confirmation moves an explicit delete confirmation from the request onto the
// request context, where the mutation coordinator's confirmer reads it.
func Confirmation() gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.GetHeader(ConfirmDeleteHeader)
		if target == "" {
			target = c.Query("confirm")
		}
		if target != "" {
			c.Request = c.Request.WithContext(service.WithConfirmation(c.Request.Context(), target))
		}
		c.Next()
	}
}
