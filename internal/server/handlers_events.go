package server

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/eventpulse/internal/domain"
	apperrors "github.com/pscheid92/eventpulse/internal/errors"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

func eventIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("invalid event id").WithField("id", c.Param("id"))
	}
	return id, nil
}

func pagination(c echo.Context, defaultLimit int) (skip, limit int) {
	skip, _ = strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit == 0 {
		limit = defaultLimit
	}
	limit = min(maxListLimit, max(1, limit))
	return skip, limit
}

func (s *Server) handleListEvents(c echo.Context) error {
	skip, limit := pagination(c, defaultListLimit)

	events, err := s.events.List(c.Request().Context(), skip, limit)
	if err != nil {
		return apperrors.InternalError("failed to list events", err)
	}

	if err := c.JSON(200, events); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	event, err := s.events.GetByID(c.Request().Context(), eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
	}
	if err != nil {
		return apperrors.InternalError("failed to load event", err)
	}

	if err := c.JSON(200, event); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func validateEventFields(fields domain.EventFields) error {
	if fields.Title == "" || fields.Description == "" || fields.Date == "" || fields.Time == "" || fields.ImageURL == "" {
		return apperrors.ValidationError("missing required fields")
	}
	return nil
}

func (s *Server) handleCreateEvent(c echo.Context) error {
	var fields domain.EventFields
	if err := c.Bind(&fields); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateEventFields(fields); err != nil {
		return err
	}

	event, err := s.events.Create(c.Request().Context(), fields)
	if err != nil {
		// Store failure: nothing was committed, so nothing is broadcast.
		return apperrors.InternalError("failed to create event", err)
	}

	// The write has committed; notify every live session. The HTTP
	// response does not wait on delivery outcomes.
	s.bridge.EventCreated(event)

	if err := c.JSON(201, event); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateEvent(c echo.Context) error {
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

	ctx := c.Request().Context()

	// Load the previous state first: the update notification carries both
	// old and new field values.
	oldEvent, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
	}
	if err != nil {
		return apperrors.InternalError("failed to load event", err)
	}

	event, err := s.events.Update(ctx, eventID, patch)
	if errors.Is(err, domain.ErrEventNotFound) {
		return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
	}
	if err != nil {
		return apperrors.InternalError("failed to update event", err)
	}

	s.bridge.EventUpdated(oldEvent, event)

	if err := c.JSON(200, event); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	event, err := s.events.Delete(c.Request().Context(), eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		// Nothing was deleted, so nothing is broadcast.
		return apperrors.NotFoundError("event not found").WithField("event_id", eventID)
	}
	if err != nil {
		return apperrors.InternalError("failed to delete event", err)
	}

	s.bridge.EventDeleted(event, user.ID)

	return c.NoContent(204)
}
