// Package metrics exposes Prometheus collectors for the service.
//
// All recording methods are safe to call on a nil *Metrics, so components
// can take an optional recorder without guarding every call.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workflow outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	WorkflowOperationsTotal *prometheus.CounterVec
	PermissionDenialsTotal  *prometheus.CounterVec

	CountEventsTotal   *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kurukatsu_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kurukatsu_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		WorkflowOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kurukatsu_workflow_operations_total",
			Help: "Total number of membership workflow operations by outcome.",
		}, []string{"operation", "outcome"}),

		PermissionDenialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kurukatsu_permission_denials_total",
			Help: "Total number of operations rejected by a role check.",
		}, []string{"operation"}),

		CountEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kurukatsu_count_events_total",
			Help: "Total number of count event delivery attempts by result.",
		}, []string{"kind", "result"}),

		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kurukatsu_notifications_total",
			Help: "Total number of notification dispatch attempts by status.",
		}, []string{"kind", "status"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WorkflowOperationsTotal,
		m.PermissionDenialsTotal,
		m.CountEventsTotal,
		m.NotificationsTotal,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDB adds connection pool statistics for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	if m == nil || db == nil {
		return
	}
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveHTTP records a finished request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncWorkflow counts a workflow operation with its outcome.
func (m *Metrics) IncWorkflow(operation, outcome string) {
	if m == nil {
		return
	}
	m.WorkflowOperationsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome == OutcomeDenied {
		m.PermissionDenialsTotal.WithLabelValues(operation).Inc()
	}
}

// ObserveCountEvent counts one count event delivery attempt.
func (m *Metrics) ObserveCountEvent(kind, result string) {
	if m == nil {
		return
	}
	m.CountEventsTotal.WithLabelValues(kind, result).Inc()
}

// IncNotification counts one notification dispatch attempt.
func (m *Metrics) IncNotification(kind, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, status).Inc()
}
