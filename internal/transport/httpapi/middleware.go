package httpapi

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs it once served.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "[INFO]"
		if status >= 500 {
			level = "[ERROR]"
		} else if status >= 400 {
			level = "[WARN]"
		}
		log.Printf("%s %s %s %d %s id=%s", level, c.Request.Method, c.Request.URL.RequestURI(),
			status, time.Since(start).Round(time.Millisecond), id)
	}
}
