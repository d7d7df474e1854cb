// Package metrics defines the custom Prometheus metrics of the catalogue API.
// Every metric is registered with the default registry on package init via
// promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carnavalia"

// ── Authentication ───────────────────────────────────────────────────────────

// AuthFilterTotal counts request filter outcomes.
// Label:
//   - outcome: "authenticated", "anonymous" (no bearer token) or "rejected"
//     (token present but unusable; expired and malformed are not told apart)
var AuthFilterTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_filter_total",
		Help:      "Requests seen by the authentication filter, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "disabled", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts, by result.",
	},
	[]string{"result"},
)

// RefreshesTotal counts refresh token redemptions.
// Label:
//   - result: "success", "invalid", "expired", "disabled" or "error"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Refresh token redemptions, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests refused by the authorization rules.
// Label:
//   - status: "401" or "403"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Requests refused by authorization rules, by response status.",
	},
	[]string{"status"},
)

// ── Audit trail ──────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts events discarded because a worker channel was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Audit events dropped because the dispatcher queue was full.",
	},
)

// AuditWriteDuration measures how long persisting one audit event takes.
// Label:
//   - result: "ok" or "error"
var AuditWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of a single audit event insert.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Catalogue ────────────────────────────────────────────────────────────────

// CatalogWritesTotal counts successful catalogue mutations.
// Labels:
//   - kind: entity collection, e.g. "groups"
//   - op: "create", "update" or "delete"
var CatalogWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_writes_total",
		Help:      "Successful catalogue writes, by entity kind and operation.",
	},
	[]string{"kind", "op"},
)

// ── HTTP ─────────────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: matched route template, e.g. "/api/v1/groups/:id"
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
