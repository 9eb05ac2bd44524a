package controllers

import (
	"net/http"

	"marketplace/config"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	if config.Client == nil || config.Client.Ping(ctx, nil) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
