package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/pscheid92/eventpulse/internal/domain"
)

// fakeSink records everything sent to it and can be told to fail.
type fakeSink struct {
	mu       sync.Mutex
	sent     []Notification
	failWith error
	closed   bool
}

func (s *fakeSink) Send(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// blockingSink blocks every Send until release is closed.
type blockingSink struct {
	fakeSink
	release chan struct{}
}

func (s *blockingSink) Send(n Notification) error {
	<-s.release
	return s.fakeSink.Send(n)
}

// fakeVerifier resolves a fixed set of tokens to users.
type fakeVerifier struct {
	users map[string]*domain.User
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (*domain.User, error) {
	user, ok := v.users[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

type listCall struct {
	skip  int
	limit int
}

// fakeEventRepo serves a fixed event list and records List calls.
type fakeEventRepo struct {
	mu      sync.Mutex
	events  []domain.Event
	listErr error
	calls   []listCall
}

func (r *fakeEventRepo) Create(context.Context, domain.EventFields) (*domain.Event, error) {
	panic("not used in tests")
}

func (r *fakeEventRepo) GetByID(context.Context, int64) (*domain.Event, error) {
	panic("not used in tests")
}

func (r *fakeEventRepo) List(_ context.Context, skip, limit int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, listCall{skip: skip, limit: limit})
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.Event(nil), r.events...), nil
}

func (r *fakeEventRepo) Update(context.Context, int64, domain.EventPatch) (*domain.Event, error) {
	panic("not used in tests")
}

func (r *fakeEventRepo) Delete(context.Context, int64) (*domain.Event, error) {
	panic("not used in tests")
}

func (r *fakeEventRepo) listCalls() []listCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]listCall(nil), r.calls...)
}

func testUser(id int64, email, role string) *domain.User {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:        id,
		Name:      "Test User",
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testEvent(id int64, title string) domain.Event {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Event{
		ID:          id,
		Title:       title,
		Description: "description of " + title,
		Date:        "2025-07-01",
		Time:        "18:30",
		ImageURL:    "https://example.com/image.png",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
