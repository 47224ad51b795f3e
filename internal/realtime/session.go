package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/eventpulse/internal/domain"
	"github.com/pscheid92/eventpulse/internal/logging"
	"github.com/pscheid92/eventpulse/internal/metrics"
)

const (
	defaultEventPage = 10
	maxEventPage     = 50
	queryTimeout     = 5 * time.Second
	closeGracePeriod = time.Second
)

// Handler drives one WebSocket connection through its lifecycle:
// authenticate, register, serve, deregister. One Serve call per connection.
type Handler struct {
	verifier    domain.TokenVerifier
	events      domain.EventRepository
	registry    *Registry
	engine      *Engine
	clock       clockwork.Clock
	idleTimeout time.Duration
}

func NewHandler(verifier domain.TokenVerifier, events domain.EventRepository, registry *Registry, engine *Engine, clock clockwork.Clock, idleTimeout time.Duration) *Handler {
	return &Handler{
		verifier:    verifier,
		events:      events,
		registry:    registry,
		engine:      engine,
		clock:       clock,
		idleTimeout: idleTimeout,
	}
}

// Serve authenticates the connection and runs its receive loop until the
// client disconnects, delivery fails, or ctx is canceled. It always
// deregisters before returning; the connection is closed on exit.
func (h *Handler) Serve(ctx context.Context, conn *websocket.Conn, token string) {
	if token == "" {
		metrics.SessionsRejectedTotal.WithLabelValues("missing_token").Inc()
		h.refuse(conn, websocket.ClosePolicyViolation, "authentication required")
		return
	}

	user, err := h.verifier.Verify(ctx, token)
	if err != nil {
		metrics.SessionsRejectedTotal.WithLabelValues("invalid_token").Inc()
		h.refuse(conn, websocket.ClosePolicyViolation, "invalid authentication credentials")
		return
	}

	sink := newClientWriter(conn, h.clock)
	connectedAt := h.clock.Now()

	sessionID, err := h.register(user, sink, connectedAt)
	if err != nil {
		if errors.Is(err, ErrRegistryFull) {
			metrics.SessionsRejectedTotal.WithLabelValues("registry_full").Inc()
		} else {
			metrics.SessionsRejectedTotal.WithLabelValues("duplicate_session").Inc()
		}
		slog.Warn("Rejecting WebSocket connection", "user_id", user.ID, "error", err)
		sink.Close()
		return
	}

	logger := logging.WithSession(sessionID, user.ID)
	logger.Info("Client connected", "total_sessions", h.registry.Len())

	// Removal is idempotent; whichever path gets here first wins. Remove
	// also releases the sink, which closes the connection.
	defer func() {
		h.registry.Remove(sessionID)
		logger.Info("Client disconnected", "total_sessions", h.registry.Len())
	}()

	ack, err := NewConnectionAck(user.Summary(), connectedAt)
	if err != nil {
		logger.Error("Failed to build connection ack", "error", err)
		return
	}
	if err := sink.Send(ack); err != nil {
		return
	}

	h.receiveLoop(ctx, conn, sink, logger)
}

// register inserts the session under a fresh collision-resistant ID. A
// duplicate should not occur; if it does, regenerate once, else fail closed.
func (h *Handler) register(user *domain.User, sink Sink, connectedAt time.Time) (string, error) {
	sessionID := newSessionID(user.ID)
	err := h.registry.Register(sessionID, user.Summary(), sink, connectedAt)
	if errors.Is(err, ErrDuplicateSession) {
		sessionID = newSessionID(user.ID)
		err = h.registry.Register(sessionID, user.Summary(), sink, connectedAt)
	}
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func newSessionID(userID int64) string {
	return fmt.Sprintf("%d_%s", userID, uuid.NewString())
}

type inbound struct {
	data []byte
	err  error
}

// receiveLoop waits for either an inbound client message or the idle
// timeout, whichever comes first. Broadcast deliveries happen on the
// engine's goroutines via the sink and never touch this loop.
func (h *Handler) receiveLoop(ctx context.Context, conn *websocket.Conn, sink Sink, logger *slog.Logger) {
	done := make(chan struct{})
	defer close(done)

	msgCh := make(chan inbound)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			select {
			case msgCh <- inbound{data: data, err: err}:
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		timer := h.clock.NewTimer(h.idleTimeout)

		select {
		case in := <-msgCh:
			timer.Stop()
			if in.err != nil {
				// Transport closed or read error: tear down promptly.
				return
			}
			if err := h.handleMessage(ctx, in.data, sink, logger); err != nil {
				return
			}

		case <-timer.Chan():
			// Idle window elapsed: probe liveness. A failed probe send is
			// treated as a disconnect.
			metrics.IdleProbesTotal.Inc()
			ping, err := NewPing()
			if err != nil {
				logger.Error("Failed to build ping", "error", err)
				return
			}
			if err := sink.Send(ping); err != nil {
				logger.Info("Liveness probe failed", "error", err)
				return
			}

		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, data []byte, sink Sink, logger *slog.Logger) error {
	msg, err := parseClientMessage(data)
	if err != nil {
		logger.Debug("Malformed client message", "error", err)
		return h.reply(sink, NewMalformedMessage)
	}

	switch msg.Type {
	case msgTypePing:
		return h.reply(sink, NewPong)

	case msgTypeGetEvents:
		return h.handleGetEvents(ctx, msg, sink, logger)

	default:
		logger.Debug("Unknown client message type", "type", msg.Type)
		n, err := NewUnknownType(msg.Type)
		if err != nil {
			return err
		}
		return sink.Send(n)
	}
}

func (h *Handler) handleGetEvents(ctx context.Context, msg clientMessage, sink Sink, logger *slog.Logger) error {
	skip := 0
	if msg.Skip != nil && *msg.Skip > 0 {
		skip = *msg.Skip
	}
	limit := defaultEventPage
	if msg.Limit != nil {
		limit = min(maxEventPage, max(1, *msg.Limit))
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	events, err := h.events.List(queryCtx, skip, limit)
	if err != nil {
		logger.Error("Failed to load events for session", "error", err)
		return h.reply(sink, NewQueryFailed)
	}

	n, err := NewInitialEvents(events)
	if err != nil {
		logger.Error("Failed to build initial events", "error", err)
		return err
	}
	return sink.Send(n)
}

func (h *Handler) reply(sink Sink, build func() (Notification, error)) error {
	n, err := build()
	if err != nil {
		return err
	}
	return sink.Send(n)
}

// refuse sends a close frame with the given code before the connection has
// a writer goroutine, then closes it.
func (h *Handler) refuse(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	deadline := h.clock.Now().Add(closeGracePeriod)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = conn.Close()
}
