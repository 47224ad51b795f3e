package server

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/eventpulse/internal/auth"
	"github.com/pscheid92/eventpulse/internal/domain"
	apperrors "github.com/pscheid92/eventpulse/internal/errors"
	"github.com/pscheid92/eventpulse/internal/logging"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	User        domain.UserSummary `json:"user"`
}

func (s *Server) handleSignup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.ValidationError("name, email, and password are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperrors.ValidationError("invalid email address")
	}
	if req.Role == "" {
		req.Role = domain.RoleNormal
	}
	if req.Role != domain.RoleNormal && req.Role != domain.RoleAdmin {
		return apperrors.ValidationError("role must be admin or normal").WithField("role", req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError("failed to hash password", err)
	}

	ctx := c.Request().Context()
	user, err := s.users.Create(ctx, req.Name, req.Email, hash, req.Role)
	if errors.Is(err, domain.ErrEmailTaken) {
		return apperrors.ValidationError("email already registered").WithField("email", req.Email)
	}
	if err != nil {
		return apperrors.InternalError("failed to create user", err)
	}

	token, err := s.auth.Issue(user)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}
	logging.WithUser(user.ID).Info("User signed up", "role", user.Role)

	if err := c.JSON(200, tokenResponse{AccessToken: token, TokenType: "bearer", User: user.Summary()}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	ctx := c.Request().Context()
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return apperrors.UnauthorizedError("incorrect email or password")
	}
	if err != nil {
		return apperrors.InternalError("failed to load user", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return apperrors.UnauthorizedError("incorrect email or password")
	}

	token, err := s.auth.Issue(user)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}
	logging.WithUser(user.ID).Info("User logged in")

	if err := c.JSON(200, tokenResponse{AccessToken: token, TokenType: "bearer", User: user.Summary()}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{"user": user.Summary()}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
