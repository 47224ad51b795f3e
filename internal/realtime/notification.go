package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pscheid92/eventpulse/internal/domain"
)

// Notification kinds. The outbound message set is closed: every message a
// client can receive is one of these.
const (
	KindConnection   = "connection"
	KindPing         = "ping"
	KindPong         = "pong"
	KindInitial      = "initial_events"
	KindEventCreated = "event_created"
	KindEventUpdated = "event_updated"
	KindEventDeleted = "event_deleted"
	KindError        = "error"
)

// Notification is a single outbound message, marshaled once at construction
// and immutable afterwards. The same bytes are delivered to every recipient.
type Notification struct {
	kind string
	data []byte
}

// Kind returns the notification's type tag.
func (n Notification) Kind() string { return n.kind }

// Data returns the marshaled JSON payload.
func (n Notification) Data() []byte { return n.data }

func newNotification(kind string, v any) (Notification, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to marshal %s notification: %w", kind, err)
	}
	return Notification{kind: kind, data: data}, nil
}

// NewConnectionAck confirms a successful registration to the client.
func NewConnectionAck(user domain.UserSummary, at time.Time) (Notification, error) {
	return newNotification(KindConnection, struct {
		Type      string `json:"type"`
		Status    string `json:"status"`
		User      ackUser `json:"user"`
		Timestamp string `json:"timestamp"`
	}{
		Type:      KindConnection,
		Status:    "connected",
		User:      ackUser{ID: user.ID, Email: user.Email},
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

type ackUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// NewPing is the server-initiated liveness probe.
func NewPing() (Notification, error) {
	return newNotification(KindPing, struct {
		Type string `json:"type"`
	}{Type: KindPing})
}

// NewPong answers a client ping.
func NewPong() (Notification, error) {
	return newNotification(KindPong, struct {
		Type string `json:"type"`
	}{Type: KindPong})
}

// NewInitialEvents carries a snapshot page of events, newest first.
func NewInitialEvents(events []domain.Event) (Notification, error) {
	return newNotification(KindInitial, struct {
		Type   string         `json:"type"`
		Events []domain.Event `json:"events"`
	}{Type: KindInitial, Events: events})
}

// NewEventCreated announces a freshly committed event.
func NewEventCreated(event *domain.Event, at time.Time) (Notification, error) {
	return newNotification(KindEventCreated, struct {
		Type      string        `json:"type"`
		Event     *domain.Event `json:"event"`
		Timestamp string        `json:"timestamp"`
	}{
		Type:      KindEventCreated,
		Event:     event,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// NewEventUpdated carries both the previous and the new field values.
func NewEventUpdated(oldEvent, newEvent *domain.Event) (Notification, error) {
	return newNotification(KindEventUpdated, struct {
		Type    string        `json:"type"`
		EventID int64         `json:"event_id"`
		OldData *domain.Event `json:"old_data"`
		NewData *domain.Event `json:"new_data"`
	}{
		Type:    KindEventUpdated,
		EventID: newEvent.ID,
		OldData: oldEvent,
		NewData: newEvent,
	})
}

// NewEventDeleted carries the deleted event's last persisted state.
func NewEventDeleted(event *domain.Event, deletedBy int64, at time.Time) (Notification, error) {
	return newNotification(KindEventDeleted, struct {
		Type      string        `json:"type"`
		EventID   int64         `json:"event_id"`
		EventData *domain.Event `json:"event_data"`
		DeletedBy int64         `json:"deleted_by"`
		Timestamp string        `json:"timestamp"`
	}{
		Type:      KindEventDeleted,
		EventID:   event.ID,
		EventData: event,
		DeletedBy: deletedBy,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// NewMalformedMessage rejects an inbound payload that is not valid JSON.
func NewMalformedMessage() (Notification, error) {
	return newNotification(KindError, struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{Type: KindError, Error: "malformed message"})
}

// NewQueryFailed tells the client a get_events request could not be served.
func NewQueryFailed() (Notification, error) {
	return newNotification(KindError, struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{Type: KindError, Error: "failed to load events"})
}

// NewUnknownType rejects an unrecognized inbound message type explicitly
// instead of silently ignoring it.
func NewUnknownType(msgType string) (Notification, error) {
	return newNotification(KindError, struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{Type: KindError, Error: fmt.Sprintf("unknown message type %q", msgType)})
}

// Inbound client message types.
const (
	msgTypePing      = "ping"
	msgTypeGetEvents = "get_events"
)

// clientMessage is the shape of every inbound client message.
type clientMessage struct {
	Type  string `json:"type"`
	Skip  *int   `json:"skip"`
	Limit *int   `json:"limit"`
}

func parseClientMessage(data []byte) (clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return clientMessage{}, fmt.Errorf("malformed client message: %w", err)
	}
	return msg, nil
}
