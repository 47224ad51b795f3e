package server

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/eventpulse/internal/auth"
	"github.com/pscheid92/eventpulse/internal/domain"
	apperrors "github.com/pscheid92/eventpulse/internal/errors"
	"github.com/pscheid92/eventpulse/internal/metrics"
)

const contextKeyUser = "user"

// requestMetrics counts requests per route pattern and status. It runs
// outside the error middleware so handled errors report their real status.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request().Method, c.Path(), strconv.Itoa(c.Response().Status),
		).Inc()
		return err
	}
}

// requireAuth resolves the bearer token from the Authorization header and
// stores the authenticated user in the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := auth.TokenFromHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return apperrors.UnauthorizedError("missing bearer token")
		}

		user, err := s.auth.Verify(c.Request().Context(), token)
		if err != nil {
			return apperrors.UnauthorizedError("invalid authentication credentials")
		}

		c.Set(contextKeyUser, user)
		c.Set("userID", user.ID)
		return next(c)
	}
}

// requireAdmin gates mutating operations to admin users. Must run after
// requireAuth.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(contextKeyUser).(*domain.User)
		if !ok {
			return apperrors.InternalError("missing user in context", nil)
		}
		if !user.IsAdmin() {
			return apperrors.ForbiddenError("not enough permissions").
				WithField("user_id", user.ID)
		}
		return next(c)
	}
}

// currentUser returns the authenticated user placed by requireAuth.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(contextKeyUser).(*domain.User)
	if !ok {
		return nil, apperrors.InternalError("missing user in context", nil)
	}
	return user, nil
}
