package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/pscheid92/eventpulse/internal/domain"
	"github.com/pscheid92/eventpulse/internal/metrics"
)

var (
	// ErrDuplicateSession reports a session ID collision on Register.
	ErrDuplicateSession = errors.New("duplicate session id")
	// ErrRegistryFull reports that the connection limit has been reached.
	ErrRegistryFull = errors.New("connection limit reached")
)

type session struct {
	id          string
	identity    domain.UserSummary
	sink        Sink
	connectedAt time.Time
}

// SessionRef is one entry of a registry snapshot.
type SessionRef struct {
	ID   string
	Sink Sink
}

// Registry tracks live real-time sessions. The mutex guards only map
// mutation and snapshot copying; message delivery never happens under it,
// so a slow client cannot block registration of others.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
}

// NewRegistry creates a registry limited to maxSessions concurrent entries.
// maxSessions <= 0 means unlimited.
func NewRegistry(maxSessions int) *Registry {
	return &Registry{
		sessions:    make(map[string]*session),
		maxSessions: maxSessions,
	}
}

// Register inserts a new session. The sink must be live at time of insertion.
func (r *Registry) Register(sessionID string, identity domain.UserSummary, sink Sink, connectedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sessionID]; exists {
		return ErrDuplicateSession
	}
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return ErrRegistryFull
	}

	r.sessions[sessionID] = &session{
		id:          sessionID,
		identity:    identity,
		sink:        sink,
		connectedAt: connectedAt,
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return nil
}

// Remove deletes a session and releases its delivery handle. Removing an
// absent ID is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	entry, exists := r.sessions[sessionID]
	if exists {
		delete(r.sessions, sessionID)
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	// Close outside the lock: the writer waits for its goroutine to exit.
	if exists {
		entry.sink.Close()
	}
}

// Snapshot returns a point-in-time copy of the live sessions, safe to
// iterate without holding the registry lock during delivery.
func (r *Registry) Snapshot() []SessionRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	refs := make([]SessionRef, 0, len(r.sessions))
	for id, entry := range r.sessions {
		refs = append(refs, SessionRef{ID: id, Sink: entry.sink})
	}
	return refs
}

// Get returns the delivery handle for one session, if present.
func (r *Registry) Get(sessionID string) (Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.sessions[sessionID]
	if !exists {
		return nil, false
	}
	return entry.sink, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
