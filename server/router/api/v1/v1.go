// Package v1 exposes the HTTP API surface.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/server/chat"
	"github.com/oncobrief/oncobrief/server/middleware"
	"github.com/oncobrief/oncobrief/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	ChatService *chat.Service

	logger      *slog.Logger
	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, chatService *chat.Service, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		ChatService: chatService,
		logger:      logger,
		// 5 rps with burst of 10 per client IP on the chat endpoint.
		rateLimiter: middleware.NewRateLimiter(5, 10),
	}
}

// RegisterRoutes attaches all endpoints to the echo server.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	corsHandler := echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: s.Profile.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	})

	g := echoServer.Group("", corsHandler)
	g.GET("/", s.getRoot)
	g.GET("/health", s.getHealth)
	g.POST("/chat", s.handleChat, s.rateLimiter.Middleware())
	g.GET("/conversation/:session_id", s.getConversation)
}
