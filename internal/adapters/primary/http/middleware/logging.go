package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Logging writes one line per request. Health and metrics scrapes are logged
// at debug level.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := log.WithFields(log.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": RequestIDFrom(c),
		})
		switch {
		case c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics":
			entry.Debug("request completed")
		case c.Writer.Status() >= 500:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
