package middlewares

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// APIKeyQueryParam carries the API key for event streams. Browsers cannot set
// headers on an EventSource.
const APIKeyQueryParam = "apiKey"

// ValidateBearerToken checks the shared API key in the Authorization header.
// Event stream requests may send it as the apiKey query parameter instead.
func ValidateBearerToken(expectedBearerToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && isEventStreamRequest(c) {
			if key := c.Query(APIKeyQueryParam); key != "" {
				authHeader = "Bearer " + key
			}
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedBearerToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Bearer Token"})
			return
		}

		c.Next()
	}
}

func isEventStreamRequest(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

// LoggingMiddleware logs method, path, status and duration of every request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("Request: %s %s | Status: %d | Duration: %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
