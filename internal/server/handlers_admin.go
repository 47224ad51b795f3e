package server

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/eventpulse/internal/domain"
	apperrors "github.com/pscheid92/eventpulse/internal/errors"
)

// The admin surface is plain CRUD for back-office tooling. Unlike /events,
// these mutations do not fan out to real-time sessions.

const adminListLimit = 100

func (s *Server) handleAdminListEvents(c echo.Context) error {
	skip, limit := pagination(c, adminListLimit)

	events, err := s.events.List(c.Request().Context(), skip, limit)
	if err != nil {
		return apperrors.InternalError("failed to list events", err)
	}

	if err := c.JSON(200, events); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAdminCreateEvent(c echo.Context) error {
	var fields domain.EventFields
	if err := c.Bind(&fields); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateEventFields(fields); err != nil {
		return err
	}

	event, err := s.events.Create(c.Request().Context(), fields)
	if err != nil {
		return apperrors.InternalError("failed to create event", err)
	}

	if err := c.JSON(200, event); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAdminUpdateEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	var patch domain.EventPatch
	if err := c.Bind(&patch); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if patch.IsEmpty() {
		return apperrors.ValidationError("no fields to update")
	}

	event, err := s.events.Update(c.Request().Context(), eventID, patch)
	if errors.Is(err, domain.ErrEventNotFound) {
		return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
	}
	if err != nil {
		return apperrors.InternalError("failed to update event", err)
	}

	if err := c.JSON(200, event); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAdminDeleteEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	if _, err := s.events.Delete(c.Request().Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
		}
		return apperrors.InternalError("failed to delete event", err)
	}

	if err := c.JSON(200, map[string]string{"message": "event deleted successfully"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
