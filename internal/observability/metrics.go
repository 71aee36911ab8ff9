// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_cache_lookups_total",
		Help: "Cache-aside lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crafthub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// Interactions counts ledger mutations. kind is like/share/comment/follow,
	// result is what the call did (created, removed, noop).
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_interactions_total",
		Help: "Interaction ledger mutations by kind and result",
	}, []string{"kind", "result"})

	// PostMutations counts post create/update/delete outcomes.
	PostMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_post_mutations_total",
		Help: "Post mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// EventsPublished counts realtime events pushed to Redis by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_events_published_total",
		Help: "Realtime events published by type",
	}, []string{"event_type"})

	// WebSocketConnections is the number of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crafthub_websocket_connections",
		Help: "Open notification websocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped before reaching a
	// socket. reason is full (send buffer) or closed (client already gone).
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crafthub_websocket_backpressure_drops_total",
		Help: "Notification events dropped per reason",
	}, []string{"reason"})
)

// Interaction results.
const (
	ResultCreated = "created"
	ResultRemoved = "removed"
	ResultNoop    = "noop"
)

// RecordInteraction increments the interaction counter.
func RecordInteraction(kind, result string) {
	Interactions.WithLabelValues(kind, result).Inc()
}

// RecordPostMutation increments the post mutation counter; a nil err is "ok".
func RecordPostMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PostMutations.WithLabelValues(operation, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
