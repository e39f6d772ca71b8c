// Package metrics exposes Prometheus collectors for dashboard loads,
// department mutations and HTTP traffic.
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

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	dashboardLoads    *prometheus.CounterVec
	dashboardDuration *prometheus.HistogramVec
	mutations         *prometheus.CounterVec
	instances         prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers collectors with reg. Pass prometheus.NewRegistry() in tests
// to avoid clashing with the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		dashboardLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collegehub_dashboard_loads_total",
				Help: "Dashboard aggregate loads by view and outcome.",
			},
			[]string{"view", "outcome"},
		),
		dashboardDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collegehub_dashboard_load_duration_seconds",
				Help:    "Time to assemble a dashboard view.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
		mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collegehub_department_mutations_total",
				Help: "Department create/delete attempts by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		instances: f.NewGauge(prometheus.GaugeOpts{
			Name: "collegehub_dashboard_instances",
			Help: "Dashboard instances currently cached.",
		}),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collegehub_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collegehub_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveLoad records one dashboard load.
func (m *Metrics) ObserveLoad(view string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.dashboardLoads.WithLabelValues(view, outcome(err)).Inc()
	m.dashboardDuration.WithLabelValues(view).Observe(d.Seconds())
}

// CountMutation records one department create or delete.
func (m *Metrics) CountMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome(err)).Inc()
}

// SetInstances reports the size of the dashboard instance cache.
func (m *Metrics) SetInstances(n int) {
	if m == nil {
		return
	}
	m.instances.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests labelled by chi route pattern so ids in the
// path do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
