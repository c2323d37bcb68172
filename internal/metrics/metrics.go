package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stream message outcomes.
const (
	OutcomeDelivered  = "delivered"
	OutcomeHandshake  = "handshake"
	OutcomePaused     = "paused"
	OutcomeParseError = "parse_error"
	OutcomeStale      = "stale"
)

var (
	// Poller metrics
	PollFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_poll_fetches_total",
			Help: "Total number of poll fetches by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsboard_poll_duration_seconds",
			Help:    "Duration of poll fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Stream metrics
	StreamMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_stream_messages_total",
			Help: "Total number of stream messages by outcome",
		},
		[]string{"outcome"},
	)

	StreamState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "opsboard_stream_state",
			Help: "Current stream state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	StreamTransportErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opsboard_stream_transport_errors_total",
			Help: "Total number of stream transport errors",
		},
	)

	// History metrics
	EventHistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "opsboard_event_history_size",
			Help: "Current number of events held in the recent history",
		},
	)

	EventHistoryEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opsboard_event_history_evictions_total",
			Help: "Total number of events evicted from the recent history",
		},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_notifications_total",
			Help: "Total number of notifications shown by type",
		},
		[]string{"type"},
	)
)
