package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterConfig configures NewRouter
type RouterConfig struct {
	Handler        *Handler
	AllowedOrigins []string
	Release        bool
}

// NewRouter wires both gateways onto a gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	h := cfg.Handler
	router := gin.New()
	router.Use(Recovery(h.logger))
	router.Use(RequestLogger(h.logger))
	router.Use(OriginFilter(cfg.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "rooms", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rooms := router.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.POST("", h.CreateRoom)
		rooms.GET("/:roomId", h.GetRoom)
		rooms.DELETE("/:roomId", h.DeleteRoom)
		rooms.POST("/:roomId/join", h.JoinRoom)
		rooms.GET("/:roomId/players", h.ListPlayers)
	}

	// Membership channel
	router.GET("/ws", h.HandleWebSocket)

	router.NoRoute(NotFound)

	return router
}
