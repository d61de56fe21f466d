// Package metrics exposes the Prometheus collectors for the admin backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "teamvest",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teamvest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teamvest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method"},
	)

	// RankBatchRuns counts completed full rank-batch passes by outcome.
	RankBatchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teamvest",
			Subsystem: "rank",
			Name:      "batch_runs_total",
			Help:      "Total number of rank batch runs.",
		},
		[]string{"outcome"},
	)

	// RankUserFailures counts users whose pipeline failed inside a batch.
	RankUserFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teamvest",
			Subsystem: "rank",
			Name:      "user_failures_total",
			Help:      "Users whose rank pipeline failed during a batch.",
		},
	)

	// RankBatchDuration observes full batch wall time.
	RankBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "teamvest",
			Subsystem: "rank",
			Name:      "batch_duration_seconds",
			Help:      "Duration of full rank batch runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		RankBatchRuns,
		RankUserFailures,
		RankBatchDuration,
	)
}

// Handler serves the collected metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with count, duration and in-flight
// gauges.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		httpRequests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
