package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxRequestIDLength caps caller supplied request IDs. Longer ones are cut.
const MaxRequestIDLength = 128

// RequestID adopts the caller's X-Request-ID or mints a UUID, and echoes it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		id = id[:min(len(id), MaxRequestIDLength)]
		c.Set(RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the ID RequestID chose, falling back to the raw
// header on routes mounted without it.
func RequestIDFrom(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(HeaderRequestID)
}
