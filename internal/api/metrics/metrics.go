// Package metrics defines and registers all custom Prometheus metrics for the
// ticketing API and the receipt worker. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticketing"

// ── Purchase metrics ──────────────────────────────────────────────────────────

// PurchasesTotal counts purchase attempts by outcome.
// Label:
//   - result: "created", "validation", "forbidden", "not_found", "conflict", "internal"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of ticket purchase attempts, by result.",
	},
	[]string{"result"},
)

// TicketsSoldTotal counts tickets in committed purchases.
var TicketsSoldTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_sold_total",
		Help:      "Total number of tickets sold in committed purchases.",
	},
)

// PurchaseDuration measures the purchase request from decode to response.
var PurchaseDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "purchase_duration_seconds",
		Help:      "Duration of purchase handling, by result.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// PurchaseWarningsTotal counts committed purchases whose best-effort follow-up failed.
var PurchaseWarningsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_warnings_total",
		Help:      "Committed purchases returned with a non-fatal warning.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification hand-offs.
// Label:
//   - result: "published", "skipped" (no queue configured), "dropped" (buffer full), "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Purchase notifications handed to the queue, by result.",
	},
	[]string{"result"},
)

// DispatchQueueDepth tracks the notifications waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var DispatchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Receipt worker metrics ────────────────────────────────────────────────────

// ReceiptsTotal counts queue records handled by the receipt worker.
// Label:
//   - result: "sent", "mail_error", "duplicate", "malformed", "dead_lettered"
var ReceiptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipts_total",
		Help:      "Queue records processed by the receipt worker, by result.",
	},
	[]string{"result"},
)

// ReceiptBatchDuration measures one read-process-ack cycle.
var ReceiptBatchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "receipt_batch_duration_seconds",
		Help:      "Duration of a receipt batch from read to acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
)
