// Package server assembles the HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/server/chat"
	apiv1 "github.com/oncobrief/oncobrief/server/router/api/v1"
	"github.com/oncobrief/oncobrief/store"
)

type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
	store      *store.Store
}

func NewServer(profile *profile.Profile, st *store.Store, chatService *chat.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status))
			return nil
		},
	}))

	apiV1Service := apiv1.NewAPIV1Service(profile, st, chatService, logger)
	apiV1Service.RegisterRoutes(e)

	return &Server{
		echoServer: e,
		profile:    profile,
		store:      st,
	}
}

func (s *Server) Start(_ context.Context) error {
	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port))
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("server stopped")
}
