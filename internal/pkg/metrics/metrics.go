// Package metrics defines and registers all custom Prometheus metrics for the
// dashboard API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Goal metrics ──────────────────────────────────────────────────────────────

// GoalTransitionsTotal counts goal status changes.
// Labels:
//   - from: the previous status (e.g. "active")
//   - to: the new status (e.g. "completed")
//   - cause: "auto" when promoted by a value update, "explicit" otherwise
var GoalTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "goal_transitions_total",
		Help:      "Total number of goal status transitions.",
	},
	[]string{"from", "to", "cause"},
)

// JobsCreatedTotal counts logged jobs.
// Label:
//   - lead_source: the job's lead source as entered by the user
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs logged.",
	},
	[]string{"lead_source"},
)

// ── Plan generation metrics ───────────────────────────────────────────────────

// PlanCacheTotal counts plan cache lookups.
// Label:
//   - result: "hit", "miss" or "coalesced" (joined an in-flight generation)
var PlanCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_cache_total",
		Help:      "Total number of plan cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// PlanGenerationDuration measures a single upstream plan generation.
// Label:
//   - outcome: "ok" or "error"
var PlanGenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plan_generation_duration_seconds",
		Help:      "Duration of upstream action plan generation.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30},
	},
	[]string{"outcome"},
)

// ── Advisor metrics ───────────────────────────────────────────────────────────

// ChatTurnsTotal counts processed chat turns.
// Label:
//   - outcome: "ok", "degraded" (upstream failure persisted as text) or "error"
var ChatTurnsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_turns_total",
		Help:      "Total number of advisory chat turns processed.",
	},
	[]string{"outcome"},
)

// ChatQueueDepth tracks the current number of turns waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ChatQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_queue_depth",
		Help:      "Current number of chat turns pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ChatTurnDuration measures how long a turn takes from dequeue to persisted reply.
var ChatTurnDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_turn_duration_seconds",
		Help:      "Duration of chat turn processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhookEventsTotal counts inbound webhook deliveries.
// Labels:
//   - source: "identity" or "billing"
//   - result: "applied", "ignored", "unverified" or "invalid"
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of webhook deliveries, by source and result.",
	},
	[]string{"source", "result"},
)
