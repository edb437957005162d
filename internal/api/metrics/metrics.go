// Package metrics defines all custom Prometheus metrics for the check-in
// service. It is the single source of truth for metric names, labels, and
// help strings; promauto registers everything with the default registry at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkin"

// RecordedTotal counts check-ins accepted and persisted by the ledger.
var RecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recorded_total",
		Help:      "Total number of check-ins recorded.",
	},
)

// RejectedTotal counts check-in requests the ledger refused.
// Label:
//   - reason: "already_checked_in" or "error"
var RejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_total",
		Help:      "Total number of check-in requests rejected, by reason.",
	},
	[]string{"reason"},
)

// DedupCacheTotal counts advisory marker lookups.
// Label:
//   - result: "hit" (user already seen today) or "miss"
var DedupCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dedup_cache_total",
		Help:      "Total number of daily-marker lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// RecordDuration measures how long a recording request takes end-to-end.
var RecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "record_duration_seconds",
		Help:      "Duration of check-in recording from request to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ProfileQueueDepth tracks jobs waiting in each denormalization worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ProfileQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "profile_queue_depth",
		Help:      "Current number of profile updates pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
