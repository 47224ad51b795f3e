package domain

import (
	"context"
	"time"
)

// Event is the central entity of the system. Date and Time are stored as
// plain strings ("YYYY-MM-DD" / "HH:MM") because they describe wall-clock
// schedule information, not instants.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventFields carries the writable fields of an event for creation.
type EventFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ImageURL    string `json:"image_url"`
}

// EventPatch carries a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	ImageURL    *string `json:"image_url"`
}

// IsEmpty reports whether the patch would change nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil && p.ImageURL == nil
}

type EventRepository interface {
	Create(ctx context.Context, fields EventFields) (*Event, error)
	GetByID(ctx context.Context, eventID int64) (*Event, error)
	// List returns events ordered by created_at descending (newest first).
	List(ctx context.Context, skip, limit int) ([]Event, error)
	Update(ctx context.Context, eventID int64, patch EventPatch) (*Event, error)
	// Delete removes the event and returns its last persisted state so the
	// caller can broadcast what was deleted.
	Delete(ctx context.Context, eventID int64) (*Event, error)
}
