package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.GET("/", s.handleRoot)

	// Authentication. Signup and login are unauthenticated and bcrypt-backed,
	// so they get a per-IP rate limit.
	authLimiter := newRateLimiter(s.config.AuthRateLimit, s.config.AuthRateBurst)
	s.echo.POST("/auth/signup", s.handleSignup, authLimiter)
	s.echo.POST("/auth/login", s.handleLogin, authLimiter)
	s.echo.GET("/auth/me", s.handleMe, s.requireAuth)

	// Events: reads for any authenticated user, mutations admin-only.
	// Mutations broadcast to all live WebSocket sessions after commit.
	events := s.echo.Group("/events")
	events.GET("", s.handleListEvents, s.requireAuth)
	events.GET("/:id", s.handleGetEvent, s.requireAuth)
	events.POST("", s.handleCreateEvent, s.requireAuth, s.requireAdmin)
	events.PUT("/:id", s.handleUpdateEvent, s.requireAuth, s.requireAdmin)
	events.DELETE("/:id", s.handleDeleteEvent, s.requireAuth, s.requireAdmin)

	// Real-time endpoint. The bearer token travels in a query parameter
	// because browsers cannot set headers on WebSocket upgrades.
	events.GET("/ws", s.handleWebSocket)

	// Admin surface: plain CRUD without broadcasts.
	admin := s.echo.Group("/admin", s.requireAuth, s.requireAdmin)
	admin.GET("/events", s.handleAdminListEvents)
	admin.POST("/events", s.handleAdminCreateEvent)
	admin.GET("/events/:id", s.handleGetEvent)
	admin.PUT("/events/:id", s.handleAdminUpdateEvent)
	admin.DELETE("/events/:id", s.handleAdminDeleteEvent)
}
