package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	// ProviderRequestsTotal counts outbound AI/NLP provider calls.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of provider requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	// ProviderRequestDuration observes provider call latency.
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider", "operation"},
	)
	// ProviderFailuresTotal counts swallowed provider failures by reason.
	ProviderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_failures_total",
			Help: "Total number of provider failures absorbed by the fan-out",
		},
		[]string{"provider", "reason"},
	)

	// EvaluationsTotal counts completed answer evaluations by provider count.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of answer evaluations by number of providers fused",
		},
		[]string{"providers"},
	)
	// DialogueIntentsTotal counts resolved dialogue intents.
	DialogueIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_intents_total",
			Help: "Total number of dialogue messages by resolved intent",
		},
		[]string{"mode", "intent"},
	)
)

var metricsOnce sync.Once

// InitMetrics registers all metric vectors with the default registry.
// Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderFailuresTotal,
			EvaluationsTotal,
			DialogueIntentsTotal,
		)
	})
}

// ObserveProviderCall records one outbound provider call.
func ObserveProviderCall(provider, operation string, start time.Time) {
	ProviderRequestsTotal.WithLabelValues(provider, operation).Inc()
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// HTTPMetricsMiddleware records request counts and latencies per chi route.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
