// Package api exposes the trigger interface over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// NewRouter builds the HTTP router for the trigger interface.
func NewRouter(handler *CrawlHandler, log logger.Interface) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.POST("/crawl/next", handler.CrawlNext)
	v1.POST("/scan", handler.Scan)
	v1.POST("/sync", handler.Sync)

	return router
}

func ginLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}
