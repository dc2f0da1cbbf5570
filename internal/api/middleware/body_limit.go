package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. Oversized JSON then fails to
// bind and the handler answers 400.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && maxBytes > 0 {
			if c.Request.ContentLength > maxBytes {
				response.Error(c, http.StatusRequestEntityTooLarge, 41300, "request body too large")
				c.Abort()
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
