// Package server wires the HTTP transport: REST routes, auth middleware,
// and the WebSocket upgrade endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pscheid92/eventpulse/internal/auth"
	"github.com/pscheid92/eventpulse/internal/config"
	"github.com/pscheid92/eventpulse/internal/domain"
	apperrors "github.com/pscheid92/eventpulse/internal/errors"
	"github.com/pscheid92/eventpulse/internal/realtime"
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	users    domain.UserRepository
	events   domain.EventRepository
	auth     *auth.Service
	bridge   *realtime.Bridge
	realtime *realtime.Handler
	pool     *pgxpool.Pool
}

func NewServer(cfg *config.Config, users domain.UserRepository, events domain.EventRepository, authSvc *auth.Service, bridge *realtime.Bridge, rt *realtime.Handler, pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(requestMetrics)
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:     e,
		config:   cfg,
		users:    users,
		events:   events,
		auth:     authSvc,
		bridge:   bridge,
		realtime: rt,
		pool:     pool,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
