package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// reject aborts the request with the delivery acknowledgement envelope the
// webhook surface uses everywhere else
func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"received": false,
		"message":  message,
	})
}

// BodyLimit caps the delivery payload size. Platform deliveries are small
// JSON envelopes; anything larger is rejected before binding ever runs.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			reject(c, http.StatusRequestEntityTooLarge, "Delivery payload exceeds the maximum size")
			return
		}

		// Chunked requests carry no ContentLength; cap those while reading
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
