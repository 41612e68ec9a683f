package requestid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID between client, server and logs.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware tags every request with an ID. A well-formed client-supplied
// header is kept so callers can correlate retries; anything else gets a
// fresh UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context, or "".
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
