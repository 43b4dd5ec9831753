package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts handled requests by route and status.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rootly",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	// httpRequestDuration tracks request latency in seconds.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rootly",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// throttledTotal counts login and registration attempts rejected by the limiter.
	throttledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rootly",
			Subsystem: "auth",
			Name:      "throttled_total",
			Help:      "Total number of throttled authentication attempts",
		},
		[]string{"action"},
	)
)
