package realtime

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/eventpulse/internal/domain"
)

// Bridge translates committed event mutations into broadcasts. It must be
// invoked only after the store write has committed; a store failure means no
// broadcast. The initiating client, if connected, receives its own
// notification too - that echo confirms the write landed.
type Bridge struct {
	engine *Engine
	clock  clockwork.Clock
}

func NewBridge(engine *Engine, clock clockwork.Clock) *Bridge {
	return &Bridge{engine: engine, clock: clock}
}

// EventCreated broadcasts a freshly committed event to all sessions.
func (b *Bridge) EventCreated(event *domain.Event) {
	n, err := NewEventCreated(event, b.clock.Now())
	if err != nil {
		slog.Error("Failed to build event_created notification", "event_id", event.ID, "error", err)
		return
	}
	b.engine.Broadcast(n, nil)
}

// EventUpdated broadcasts an update with both old and new field values.
func (b *Bridge) EventUpdated(oldEvent, newEvent *domain.Event) {
	n, err := NewEventUpdated(oldEvent, newEvent)
	if err != nil {
		slog.Error("Failed to build event_updated notification", "event_id", newEvent.ID, "error", err)
		return
	}
	b.engine.Broadcast(n, nil)
}

// EventDeleted broadcasts a deletion with the event's last persisted state.
func (b *Bridge) EventDeleted(event *domain.Event, deletedBy int64) {
	n, err := NewEventDeleted(event, deletedBy, b.clock.Now())
	if err != nil {
		slog.Error("Failed to build event_deleted notification", "event_id", event.ID, "error", err)
		return
	}
	b.engine.Broadcast(n, nil)
}
