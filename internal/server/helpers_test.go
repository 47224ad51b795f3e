package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/eventpulse/internal/auth"
	"github.com/pscheid92/eventpulse/internal/config"
	"github.com/pscheid92/eventpulse/internal/domain"
	"github.com/pscheid92/eventpulse/internal/realtime"
)

type mockUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *mockUserRepo) Create(_ context.Context, name, email, passwordHash, role string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrEmailTaken
	}

	r.nextID++
	now := time.Now().UTC()
	user := &domain.User{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byEmail[email] = user
	return user, nil
}

func (r *mockUserRepo) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byEmail {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

type mockEventRepo struct {
	mu       sync.Mutex
	nextID   int64
	events   map[int64]*domain.Event
	failWith error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[int64]*domain.Event)}
}

func (r *mockEventRepo) Create(_ context.Context, fields domain.EventFields) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	r.nextID++
	now := time.Now().UTC()
	event := &domain.Event{
		ID:          r.nextID,
		Title:       fields.Title,
		Description: fields.Description,
		Date:        fields.Date,
		Time:        fields.Time,
		ImageURL:    fields.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.events[event.ID] = event
	return event, nil
}

func (r *mockEventRepo) GetByID(_ context.Context, eventID int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *mockEventRepo) List(_ context.Context, skip, limit int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	ids := make([]int64, 0, len(r.events))
	for id := range r.events {
		ids = append(ids, id)
	}
	// Newest first, same as the SQL repository.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	result := make([]domain.Event, 0, limit)
	for i := skip; i < len(ids) && len(result) < limit; i++ {
		result = append(result, *r.events[ids[i]])
	}
	return result, nil
}

func (r *mockEventRepo) Update(_ context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Time != nil {
		event.Time = *patch.Time
	}
	if patch.ImageURL != nil {
		event.ImageURL = *patch.ImageURL
	}
	event.UpdatedAt = time.Now().UTC()

	copied := *event
	return &copied, nil
}

func (r *mockEventRepo) Delete(_ context.Context, eventID int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	delete(r.events, eventID)
	return event, nil
}

// recordingSink captures broadcast deliveries so handler tests can observe
// the fan-out side of a mutation.
type recordingSink struct {
	mu   sync.Mutex
	sent []realtime.Notification
}

func (s *recordingSink) Send(n realtime.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSink) Close() {}

func (s *recordingSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, len(s.sent))
	for i, n := range s.sent {
		kinds[i] = n.Kind()
	}
	return kinds
}

func (s *recordingSink) last(t *testing.T) map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)

	var m map[string]any
	require.NoError(t, json.Unmarshal(s.sent[len(s.sent)-1].Data(), &m))
	return m
}

type testEnv struct {
	srv        *Server
	users      *mockUserRepo
	events     *mockEventRepo
	registry   *realtime.Registry
	sink       *recordingSink
	admin      *domain.User
	user       *domain.User
	adminToken string
	userToken  string
}

// newTestEnv wires a full server against in-memory repositories, with one
// recording sink registered as a live real-time session.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := clockwork.NewRealClock()
	cfg := &config.Config{
		Port:               "0",
		JWTSecret:          "test-secret-test-secret-test-secret!",
		TokenTTL:           30 * time.Minute,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		AuthRateLimit:      100,
		AuthRateBurst:      100,
	}

	users := newMockUserRepo()
	events := newMockEventRepo()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, clock)
	authSvc := auth.NewService(tokens, users)

	registry := realtime.NewRegistry(0)
	engine := realtime.NewEngine(registry)
	bridge := realtime.NewBridge(engine, clock)
	rt := realtime.NewHandler(authSvc, events, registry, engine, clock, time.Minute)

	srv := NewServer(cfg, users, events, authSvc, bridge, rt, nil)

	env := &testEnv{
		srv:      srv,
		users:    users,
		events:   events,
		registry: registry,
		sink:     &recordingSink{},
	}

	env.admin = env.createUser(t, "Admin", "admin@example.com", "admin-password", domain.RoleAdmin)
	env.user = env.createUser(t, "Norma", "norma@example.com", "user-password", domain.RoleNormal)

	var err error
	env.adminToken, err = authSvc.Issue(env.admin)
	require.NoError(t, err)
	env.userToken, err = authSvc.Issue(env.user)
	require.NoError(t, err)

	require.NoError(t, registry.Register("observer", domain.UserSummary{ID: 999}, env.sink, clock.Now()))

	return env
}

func (env *testEnv) createUser(t *testing.T, name, email, password, role string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user, err := env.users.Create(context.Background(), name, email, hash, role)
	require.NoError(t, err)
	return user
}

func (env *testEnv) seedEvent(t *testing.T, title string) *domain.Event {
	t.Helper()
	event, err := env.events.Create(context.Background(), domain.EventFields{
		Title:       title,
		Description: "description of " + title,
		Date:        "2025-07-01",
		Time:        "18:30",
		ImageURL:    "https://example.com/image.png",
	})
	require.NoError(t, err)
	return event
}

// request runs a full request through the router and middleware chain.
func (env *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	return list
}
