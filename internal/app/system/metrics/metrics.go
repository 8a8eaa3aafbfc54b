// internal/app/system/metrics/metrics.go

// Package metrics provides Prometheus instrumentation: HTTP middleware and
// the integrity gauges the background scan feeds.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadhub_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	orphanReplies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadhub_orphan_replies",
			Help: "Replies whose parent thread no longer exists, per the last integrity scan",
		},
	)

	staleUserRefs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadhub_stale_user_refs",
			Help: "Users whose thread list references deleted threads, per the last integrity scan",
		},
	)

	staleCommunityRefs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadhub_stale_community_refs",
			Help: "Communities whose thread list references deleted threads, per the last integrity scan",
		},
	)

	cascadeDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadhub_cascade_deletes_total",
			Help: "Cascading subtree deletions by outcome",
		},
		[]string{"outcome"},
	)
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, duration and in-flight gauge.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// Use chi's route pattern to keep label cardinality bounded.
		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// SetIntegrityCounts publishes the results of an integrity scan.
func SetIntegrityCounts(orphans, userRefs, communityRefs int) {
	orphanReplies.Set(float64(orphans))
	staleUserRefs.Set(float64(userRefs))
	staleCommunityRefs.Set(float64(communityRefs))
}

// RecordCascadeDelete counts a cascading delete by outcome: "ok" or
// "partial" (records deleted, retraction failed).
func RecordCascadeDelete(outcome string) {
	cascadeDeletes.WithLabelValues(outcome).Inc()
}
