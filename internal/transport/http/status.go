// Package http exposes a read-only status API for operators: health,
// room occupancy and session count. It is an observability surface, not
// part of the chat protocol, so the admin room is not hidden here.
package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/andresmx/salachat-server/internal/core"
)

// NewStatusServer builds the HTTP server serving the status routes.
func NewStatusServer(addr string, registry *core.Registry, sessions *core.SessionList, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/rooms", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, registry.List(true))
	})
	engine.GET("/api/sessions", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"count": sessions.Len()})
	})

	return &stdhttp.Server{
		Addr:    addr,
		Handler: engine,
	}
}

func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("status api request")
	}
}
