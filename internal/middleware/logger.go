// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an identifier, minting one when the
// caller did not send an X-Request-ID header. The id is echoed back in the
// response and stored in the context for error logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger writes one line per request. Scan requests block on two model
// round-trips, so the latency field is the one worth watching.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		id, _ := c.Get("request_id")
		log.Printf("[%s] %s %s -> %d (%s)",
			id, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Recovery turns panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
