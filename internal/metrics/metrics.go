// Package metrics exposes Prometheus collectors for household activity and
// HTTP latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger entry sources.
const (
	SourceManual    = "manual"
	SourceSavings   = "savings"
	SourcePlanned   = "planned"
	SourceRecurring = "recurring"
)

// Operations that can short-circuit as idempotent no-ops.
const (
	OpSettle        = "settle"
	OpPostRecurring = "post_recurring"
	OpRejoin        = "rejoin"
)

var (
	InvitesRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hogar_invites_redeemed_total",
		Help: "Invite redemptions by resulting join status.",
	}, []string{"status"})

	JoinDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hogar_join_decisions_total",
		Help: "Join request decisions by outcome.",
	}, []string{"decision"})

	LedgerEntriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hogar_ledger_entries_created_total",
		Help: "Ledger entries created by source.",
	}, []string{"source"})

	IdempotentNoops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hogar_idempotent_noops_total",
		Help: "Repeated calls that were detected as already completed.",
	}, []string{"operation"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hogar_notification_failures_total",
		Help: "Notification deliveries that failed and were swallowed.",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hogar_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
