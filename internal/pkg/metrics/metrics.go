// Package metrics defines and registers the Prometheus metrics of the travel
// review client. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default registry on package init; the view server
// exposes them on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travelreviews"

// ── Outbound API metrics ──────────────────────────────────────────────────────

// APIRequestsTotal counts requests made through the HTTP client adapter.
// Labels:
//   - method: HTTP method
//   - code: response status code, or "transport_error" when none was received
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of REST API requests, by method and status code.",
	},
	[]string{"method", "code"},
)

// APIRequestDuration measures round-trip time of REST API requests.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of REST API requests including body decoding.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// UnauthorizedTotal counts 401 responses intercepted by the adapter.
var UnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_unauthorized_total",
		Help:      "Total number of 401 responses that cleared the stored credential.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - to: "anonymous" or "authenticated"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"to"},
)

// StaleResponsesTotal counts responses dropped because a newer session change
// superseded them.
// Label:
//   - operation: "boot", "login", "register" or "update_profile"
var StaleResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_stale_responses_total",
		Help:      "Total number of session responses discarded as stale.",
	},
	[]string{"operation"},
)

// ── Access gate metrics ───────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate outcomes.
// Label:
//   - decision: "pending", "redirect_login", "redirect_unauthorized" or "allow"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions, by outcome.",
	},
	[]string{"decision"},
)

// StatusCode renders a status code label value.
func StatusCode(code int) string {
	if code == 0 {
		return "transport_error"
	}
	return strconv.Itoa(code)
}
