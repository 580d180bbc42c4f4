// Package metrics defines and registers all custom Prometheus metrics for
// the conversation API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ghola"

// ConversationsStartedTotal counts successful chat handshakes.
// Label:
//   - visibility: the profile's visibility ("public" or "private")
var ConversationsStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversations_started_total",
		Help:      "Total number of conversations successfully started.",
	},
	[]string{"visibility"},
)

// HandshakeFailuresTotal counts rejected chat handshakes.
// Label:
//   - reason: "missing_fields", "user_not_found", "profile_not_found",
//     "not_accessible", or "internal"
var HandshakeFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshake_failures_total",
		Help:      "Total number of chat handshakes rejected, by reason.",
	},
	[]string{"reason"},
)

// UsageRecordsCreatedTotal counts lazily created per-day usage records.
var UsageRecordsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_records_created_total",
		Help:      "Total number of per-user per-day usage records created.",
	},
)

// MessagesDedupTotal counts deduplication decisions on the usage pipeline.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new message, processed)
var MessagesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dedup_total",
		Help:      "Total number of message deduplication checks, by result.",
	},
	[]string{"result"},
)

// MessageProcessingDuration measures how long a message event takes to be
// logged and accounted.
// Label:
//   - status: "ok" or "error"
var MessageProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_processing_duration_seconds",
		Help:      "Duration of message event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)
