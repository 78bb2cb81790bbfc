// Package metrics defines and registers the Prometheus metrics of the hub
// client. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry on import; a host that
// already serves /metrics picks them up without extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hub_client"

// ── Renewal metrics ───────────────────────────────────────────────────────────

// RenewalsTotal counts credential renewal attempts.
// Labels:
//   - result: "success", "rejected", "transport_error", "no_credential", "superseded",
//     "already_renewed"
var RenewalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renewals_total",
		Help:      "Total number of credential renewal attempts, by result.",
	},
	[]string{"result"},
)

// RenewalDuration measures the refresh round trip.
var RenewalDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "renewal_duration_seconds",
		Help:      "Duration of refresh calls to the identity service.",
		Buckets:   prometheus.DefBuckets,
	},
)

// SchedulerTicksTotal counts scheduler ticks.
// Label:
//   - action: "idle", "renew", "stop"
var SchedulerTicksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_ticks_total",
		Help:      "Total number of renewal scheduler ticks, by action taken.",
	},
	[]string{"action"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts calls leaving the gateway.
// Label:
//   - code_class: "2xx", "4xx", "5xx", … or "error" when no response arrived
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of HTTP calls issued, by response status class.",
	},
	[]string{"code_class"},
)

// GatewayReauthTotal counts 401 handling outcomes.
// Label:
//   - outcome: "retried" (renewed and resent) or "teardown" (renewal failed)
var GatewayReauthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_reauth_total",
		Help:      "Total number of 401 responses handled by the gateway, by outcome.",
	},
	[]string{"outcome"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state transitions.
// Labels:
//   - to: "authenticated" or "empty"
//   - reason: e.g. "login", "restore", "renewal", "logout", "rejected"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session transitions, by target state and reason.",
	},
	[]string{"to", "reason"},
)

// SessionAuthenticated is 1 while the session is authenticated.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the client currently holds an authenticated session.",
	},
)

// StorageErrorsTotal counts credential storage failures.
// Label:
//   - op: "load", "save", "delete"
var StorageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_errors_total",
		Help:      "Total number of credential storage failures, by operation.",
	},
	[]string{"op"},
)

// CodeClass maps an HTTP status to its "Nxx" label.
func CodeClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return string(rune('0'+status/100)) + "xx"
}
