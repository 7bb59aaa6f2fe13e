package middlewares

import (
	"log"

	"github.com/gin-gonic/gin"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, message string, status int, err error) {
	log.Printf("HTTP %d - %s %s: %v", status, c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// PrepareEventStream sets the headers of a Server-Sent Events response.
func PrepareEventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}
