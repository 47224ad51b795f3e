package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/eventpulse/internal/domain"
	"github.com/pscheid92/eventpulse/internal/metrics"
)

// eventColumns must match the Scan order in scanEvent.
const eventColumns = `id, title, description, date, time, image_url, created_at, updated_at`

// EventRepo implements domain.EventRepository backed by PostgreSQL.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.Date,
		&event.Time, &event.ImageURL, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func observe(operation string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (r *EventRepo) Create(ctx context.Context, fields domain.EventFields) (*domain.Event, error) {
	defer observe("event_create", time.Now())

	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (title, description, date, time, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+eventColumns,
		fields.Title, fields.Description, fields.Date, fields.Time, fields.ImageURL,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *EventRepo) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	defer observe("event_get", time.Now())

	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}
	return event, nil
}

func (r *EventRepo) List(ctx context.Context, skip, limit int) ([]domain.Event, error) {
	defer observe("event_list", time.Now())

	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func (r *EventRepo) Update(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	defer observe("event_update", time.Now())

	row := r.pool.QueryRow(ctx, `
		UPDATE events SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			date        = COALESCE($4, date),
			time        = COALESCE($5, time),
			image_url   = COALESCE($6, image_url),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING `+eventColumns,
		eventID, patch.Title, patch.Description, patch.Date, patch.Time, patch.ImageURL,
	)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (r *EventRepo) Delete(ctx context.Context, eventID int64) (*domain.Event, error) {
	defer observe("event_delete", time.Now())

	row := r.pool.QueryRow(ctx, `
		DELETE FROM events WHERE id = $1
		RETURNING `+eventColumns,
		eventID,
	)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return event, nil
}
