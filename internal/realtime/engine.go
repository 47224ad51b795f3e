package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pscheid92/eventpulse/internal/metrics"
)

// Engine delivers notifications to registered sessions. Delivery is
// fire-and-forget: failures are logged, counted, and turn into session
// removal, never into an error for the caller.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// SendTo delivers a notification to a single session, best effort. A failed
// delivery removes the session from the registry; there is no retry.
func (e *Engine) SendTo(sessionID string, n Notification) {
	sink, ok := e.registry.Get(sessionID)
	if !ok {
		return
	}

	if err := sink.Send(n); err != nil {
		slog.Warn("Delivery failed, removing session",
			"session_id", sessionID, "kind", n.Kind(), "error", err)
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		e.registry.Remove(sessionID)
		return
	}
	metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
}

// Broadcast delivers a notification to every registered session not in
// exclude. Delivery runs concurrently over a point-in-time snapshot; one
// session's failure never blocks or fails the others. Failed sessions are
// pruned after the sweep completes.
func (e *Engine) Broadcast(n Notification, exclude map[string]struct{}) {
	start := time.Now()
	targets := e.registry.Snapshot()

	var (
		mu     sync.Mutex
		failed []string
		wg     sync.WaitGroup
	)

	for _, target := range targets {
		if _, skip := exclude[target.ID]; skip {
			continue
		}

		wg.Add(1)
		go func(target SessionRef) {
			defer wg.Done()
			if err := target.Sink.Send(n); err != nil {
				slog.Warn("Broadcast delivery failed",
					"session_id", target.ID, "kind", n.Kind(), "error", err)
				mu.Lock()
				failed = append(failed, target.ID)
				mu.Unlock()
				return
			}
			metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
		}(target)
	}
	wg.Wait()

	// Prune after the sweep: a delivery failure is an implicit disconnect.
	for _, sessionID := range failed {
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		metrics.SlowClientsEvicted.Inc()
		e.registry.Remove(sessionID)
	}

	metrics.BroadcastsTotal.WithLabelValues(n.Kind()).Inc()
	metrics.BroadcastDuration.Observe(time.Since(start).Seconds())

	if len(failed) > 0 {
		slog.Info("Broadcast sweep pruned sessions",
			"kind", n.Kind(), "delivered", len(targets)-len(failed), "pruned", len(failed))
	}
}
