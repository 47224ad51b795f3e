package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/eventpulse/internal/version"
)

const readinessTimeout = 2 * time.Second

func (s *Server) handleRoot(c echo.Context) error {
	if err := c.JSON(200, map[string]any{"message": "Event Management API", "version": version.Get()}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleLiveness reports that the process is up.
func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

// handleReadiness reports whether the database is reachable.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return c.JSON(503, map[string]string{"status": "unavailable", "reason": "database unreachable"})
		}
	}

	return c.JSON(200, map[string]string{"status": "ok"})
}
