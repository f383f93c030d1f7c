package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/gridsearch/internal/ctxlog"
)

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger), corsMiddleware(s.config.AllowedOrigin))

	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.hub.ServeWS)

	api := router.Group("/api")
	api.GET("/grid", s.handleGrid)
	api.POST("/paint", s.handlePaint)
	api.GET("/tool", s.handleGetTool)
	api.POST("/tool", s.handleSetTool)
	api.POST("/paint-at", s.handlePaintAt)
	api.POST("/walls/random", s.handleScatter)
	api.POST("/speed", s.handleSpeed)
	api.POST("/turbo", s.handleTurbo)

	search := api.Group("/search")
	search.POST("/start", s.handleStart)
	search.POST("/pause", s.handlePause)
	search.POST("/resume", s.handleResume)
	search.POST("/reset", s.handleReset)

	return router
}

// corsMiddleware answers preflight requests and allows the configured origin.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger puts the logger on the request context and logs each request
// once it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), logger))
		c.Next()
		logger.Debug("Request handled.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(started),
		)
	}
}
