// Package metrics defines the portal's Prometheus metrics. Metrics are registered
// with the default registry on package init and served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// LoginsTotal counts login and registration attempts.
// Labels:
//   - kind: "login" or "register"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and registration attempts, by result.",
	},
	[]string{"kind", "result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: pending, unauthenticated, forbidden, authorized
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// BackendRequestsTotal counts calls to the club API.
// Labels:
//   - method: HTTP method
//   - class: "ok" or the error class from Classify
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of club API requests, by method and result class.",
	},
	[]string{"method", "class"},
)

// BackendRequestDuration measures club API round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of club API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// StorageErrorsTotal counts best-effort client storage failures that were logged and ignored.
// Label:
//   - op: get, set, remove
var StorageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_storage_errors_total",
		Help:      "Total number of client storage operations that failed.",
	},
	[]string{"op"},
)

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: the matched mux pattern, or "unmatched"
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request handling time.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
