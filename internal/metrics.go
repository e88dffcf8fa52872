package internal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"computer-inventory-api/internal/inventory"
)

// Metrics provides Prometheus metrics for HTTP requests and inventory writes
type Metrics struct {
	reqTotal      *prometheus.CounterVec
	reqLatency    *prometheus.HistogramVec
	upserts       *prometheus.CounterVec
	searchResults prometheus.Histogram
	registry      *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	upserts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_upserts_total",
			Help: "Create-or-update calls by outcome",
		},
		[]string{"result"},
	)

	searchResults := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_search_results",
			Help:    "Entries returned per search page",
			Buckets: []float64{0, 1, 5, 10, 20, 25},
		},
	)

	registry.MustRegister(reqTotal, reqLatency, upserts, searchResults)

	return &Metrics{
		reqTotal:      reqTotal,
		reqLatency:    reqLatency,
		upserts:       upserts,
		searchResults: searchResults,
		registry:      registry,
	}
}

// ObserveUpsert implements inventory.Recorder
func (m *Metrics) ObserveUpsert(outcome inventory.Outcome) {
	m.upserts.WithLabelValues(string(outcome)).Inc()
}

// ObserveSearch implements inventory.Recorder
func (m *Metrics) ObserveSearch(results int) {
	m.searchResults.Observe(float64(results))
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rw, r)

			// label by route pattern to keep ids out of the series
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			status := http.StatusText(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code and body size
type statusRecorder struct {
	http.ResponseWriter
	code int
	size int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}
