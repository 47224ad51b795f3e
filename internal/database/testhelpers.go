package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/eventpulse/internal/domain"
)

// CreateTestUser is a helper that creates a user with default values for testing.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, email, role string) *domain.User {
	t.Helper()

	repo := NewUserRepo(pool)
	user, err := repo.Create(context.Background(), "Test User", email, "$2a$10$fakehashfakehashfakehash", role)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	return user
}

// CreateTestEvent is a helper that creates an event with default values for testing.
func CreateTestEvent(t *testing.T, pool *pgxpool.Pool, title string) *domain.Event {
	t.Helper()

	repo := NewEventRepo(pool)
	event, err := repo.Create(context.Background(), domain.EventFields{
		Title:       title,
		Description: "description of " + title,
		Date:        "2025-07-01",
		Time:        "18:30",
		ImageURL:    "https://example.com/image.png",
	})
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	return event
}
