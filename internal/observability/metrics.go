// Package observability wires Prometheus metrics into the HTTP stack and
// exposes the counters the business flows bump.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	OrdersCreated      prometheus.Counter
	DegradedQuotes     prometheus.Counter
	SettlementsCreated prometheus.Counter
	SettlementsVoided  prometheus.Counter
	JobRuns            *prometheus.CounterVec
}

// NewMetrics initializes the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukkan_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dukkan_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukkan_orders_created_total",
		Help: "Orders accepted by the checkout flow.",
	})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukkan_degraded_quotes_total",
		Help: "Quotes priced from cart snapshots because the price lookup failed.",
	})
	settlements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukkan_settlements_created_total",
		Help: "Settlement documents posted.",
	})
	voided := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dukkan_settlements_voided_total",
		Help: "Settlement documents reversed.",
	})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dukkan_jobs_total",
		Help: "Background job executions by task and outcome.",
	}, []string{"task", "outcome"})
	registry.MustRegister(requests, duration, orders, degraded, settlements, voided, jobs)
	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:      requests,
		requestDuration:    duration,
		OrdersCreated:      orders,
		DegradedQuotes:     degraded,
		SettlementsCreated: settlements,
		SettlementsVoided:  voided,
		JobRuns:            jobs,
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
