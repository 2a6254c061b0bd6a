package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Incoming ids end up in log lines, so only short opaque tokens are kept.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestID propagates the caller's X-Request-ID or issues a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the id RequestID stored on the context, if any.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
