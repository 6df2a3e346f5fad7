package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root GET /
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is reachable"})
}

// Health GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
