// Package metrics exposes prometheus collectors for remote task service
// traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts remote requests by operation and outcome
	// ("ok" or the classified error kind).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_requests_total",
			Help: "Remote task service requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// RequestDuration tracks remote request latency per operation.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_request_duration_seconds",
			Help:    "Remote task service request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// RetriesTotal counts retried attempts by classified error kind.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_retries_total",
			Help: "Retried attempts by classified error kind",
		},
		[]string{"kind"},
	)

	// RateLimitedTotal counts responses classified as rate limited.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasksync_rate_limited_total",
			Help: "Responses classified as rate limited",
		},
	)
)
