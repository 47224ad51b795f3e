// Package metrics defines Prometheus metrics for the application.
//
// All metrics are registered via promauto at package init and exposed
// through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Real-time subsystem metrics
var (
	// ActiveSessions tracks the number of live WebSocket sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_active_sessions",
			Help: "Number of currently registered real-time sessions",
		},
	)

	// BroadcastsTotal counts broadcast sweeps by notification type.
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_broadcasts_total",
			Help: "Total broadcast sweeps by notification type",
		},
		[]string{"type"},
	)

	// DeliveriesTotal counts individual deliveries by outcome.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_deliveries_total",
			Help: "Total per-session delivery attempts by status",
		},
		[]string{"status"},
	)

	// BroadcastDuration tracks the duration of a full broadcast sweep.
	BroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "realtime_broadcast_duration_seconds",
			Help:    "Duration of a broadcast sweep across all sessions",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// SlowClientsEvicted counts sessions pruned because their send queue was full.
	SlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_slow_clients_evicted_total",
			Help: "Total clients disconnected because their send queue was full",
		},
	)

	// IdleProbesTotal counts liveness pings sent after the idle window elapsed.
	IdleProbesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_idle_probes_total",
			Help: "Total liveness pings sent to idle sessions",
		},
	)

	// SessionsRejectedTotal counts connections refused before registration.
	SessionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_sessions_rejected_total",
			Help: "Total WebSocket connections rejected by reason",
		},
		[]string{"reason"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)
)

// Database metrics
var (
	// DBQueryDuration tracks query latency by operation.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
