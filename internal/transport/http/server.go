package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eventlane/chatgate/internal/auth"
	"github.com/eventlane/chatgate/internal/config"
	"github.com/eventlane/chatgate/internal/core"
)

// NewServer builds the HTTP server: the WebSocket endpoint, the presence
// query API, and the internal notification hooks used by the rest of the
// platform.
func NewServer(hub *core.Hub, resolver *auth.Resolver, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, resolver, logger)))

	presence := NewPresenceAPI(hub)
	api := router.Group("/api", AuthMiddleware(resolver.Verifier(), logger))
	api.GET("/presence", presence.Overview)
	api.GET("/presence/:userID", presence.UserStatus)

	internal := router.Group("/internal",
		AuthMiddleware(resolver.Verifier(), logger),
		RequireAdmin(logger),
	)
	internal.POST("/events/:eventID/created", presence.EventCreated)
	internal.POST("/events/:eventID/published", presence.EventPublished)
	internal.POST("/events/:eventID/ticket-ready", presence.TicketReady)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
