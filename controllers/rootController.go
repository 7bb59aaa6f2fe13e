package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write([]byte("Salvadó Dental booking service")); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// SetupRootRoute registers the root greeting and, when metricsHandler is set, /metrics.
func SetupRootRoute(router gin.IRouter, metricsHandler http.Handler) {
	router.GET("/", rootHandler)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
