package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation store operations
	ConversationOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webchat",
			Subsystem: "conversations",
			Name:      "operations_total",
			Help:      "Total conversation store operations",
		},
		[]string{"operation", "status"},
	)

	ConversationOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "webchat",
			Subsystem: "conversations",
			Name:      "operation_duration_seconds",
			Help:      "Conversation store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	ConversationsListed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "webchat",
			Subsystem: "conversations",
			Name:      "listed_count",
			Help:      "Number of conversations returned per list call",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	MessagesPerSave = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "webchat",
			Subsystem: "conversations",
			Name:      "messages_per_save",
			Help:      "Number of messages in each saved conversation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// WebSocket change feed
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "webchat",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open WebSocket connections",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webchat",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Conversation events published",
		},
		[]string{"status"},
	)
)

// ObserveConversationOp records the outcome and latency of one store call.
func ObserveConversationOp(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ConversationOpsTotal.WithLabelValues(operation, status).Inc()
	ConversationOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
