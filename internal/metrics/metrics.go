// Package metrics provides Prometheus metrics for the studyhub API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	CalendarQueriesTotal *prometheus.CounterVec
	CalendarItemsTotal   *prometheus.CounterVec
	ErrorsTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyhub_http_request_duration_seconds",
				Help:    "HTTP request duration by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		CalendarQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_calendar_queries_total",
				Help: "Calendar aggregations by scope (dashboard or project).",
			},
			[]string{"scope"},
		),
		CalendarItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_calendar_items_total",
				Help: "Calendar items served by kind.",
			},
			[]string{"kind"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.CalendarQueriesTotal)
	reg.MustRegister(m.CalendarItemsTotal)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts a finished request and its duration.
func (m *Metrics) RecordRequest(route, method, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordCalendar counts one aggregation and the items it returned.
func (m *Metrics) RecordCalendar(scope string, itemsByKind map[string]int) {
	m.CalendarQueriesTotal.WithLabelValues(scope).Inc()
	for kind, n := range itemsByKind {
		m.CalendarItemsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}
