package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mediconnect"

// HTTPRequestDuration measures handler latency.
// Labels: route template, method, status code.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method", "status"},
)

// ProfileResolutionsTotal counts session resolutions by outcome
// (anonymous, found, repaired, provisional, unavailable).
var ProfileResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "profile_resolutions_total",
		Help:      "Total number of session profile resolutions, by status.",
	},
	[]string{"status"},
)

// DocumentCompensationsTotal counts compensating actions run after a
// partially failed document operation.
// Labels:
//   - operation: "create" or "delete"
//   - result: "ok" or "failed" (failed leaves an orphan behind)
var DocumentCompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "document_compensations_total",
		Help:      "Compensating actions after partial document operation failures.",
	},
	[]string{"operation", "result"},
)

// CartCheckoutsTotal labels:
//   - result: "ok", "failed" (no payment intent) or "uncleared" (intent
//     created but the cart could not be cleared)
var CartCheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cart_checkouts_total",
		Help:      "Cart checkout attempts, by result.",
	},
	[]string{"result"},
)
