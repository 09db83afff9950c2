package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appealdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "appealdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "appealdesk",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Appeal lifecycle metrics
	appealsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appealdesk",
			Subsystem: "appeal",
			Name:      "created_total",
			Help:      "Total number of appeals created",
		},
	)

	lettersGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appealdesk",
			Subsystem: "letter",
			Name:      "generated_total",
			Help:      "Total number of appeal letters generated",
		},
		[]string{"source"}, // provider or fallback
	)

	letterGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "appealdesk",
			Subsystem: "letter",
			Name:      "generation_duration_seconds",
			Help:      "Duration of letter generation including the provider call",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	quotaDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appealdesk",
			Subsystem: "quota",
			Name:      "denied_total",
			Help:      "Total number of requests denied by the appeal quota",
		},
	)

	trialsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appealdesk",
			Subsystem: "trial",
			Name:      "expired_total",
			Help:      "Total number of profiles whose trial was expired by the sweeper",
		},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAppealCreated records a created appeal
func RecordAppealCreated() {
	appealsCreatedTotal.Inc()
}

// RecordLetterGenerated records a generated letter and where the text came from
func RecordLetterGenerated(source string, duration time.Duration) {
	lettersGeneratedTotal.WithLabelValues(source).Inc()
	letterGenerationDuration.Observe(duration.Seconds())
}

// RecordQuotaDenied records a quota rejection
func RecordQuotaDenied() {
	quotaDeniedTotal.Inc()
}

// RecordTrialsExpired records profiles expired by the trial sweeper
func RecordTrialsExpired(count int64) {
	trialsExpiredTotal.Add(float64(count))
}
