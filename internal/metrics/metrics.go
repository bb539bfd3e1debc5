// Package metrics exposes Prometheus instrumentation for the HTTP
// surface and the weekly record lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})

	requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "timeclock",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	})

	weeksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "records",
		Name:      "weeks_created_total",
		Help:      "Weekly records lazily created on first access.",
	})

	weekSavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "records",
		Name:      "week_saves_total",
		Help:      "Payload overwrites applied via week save.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, weeksCreatedTotal, weekSavesTotal)
}

// RecordWeekCreated counts a lazily created weekly record.
func RecordWeekCreated() {
	weeksCreatedTotal.Inc()
}

// RecordWeekSaved counts a payload overwrite.
func RecordWeekSaved() {
	weekSavesTotal.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer so http.ResponseController and
// WebSocket upgrades can reach the raw connection.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Instrument wraps an http.Handler with request counting and latency
// observation.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.Observe(time.Since(start).Seconds())
	})
}
