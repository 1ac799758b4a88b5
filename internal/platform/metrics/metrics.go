// Package metrics registers and exposes Prometheus instrumentation for the
// HTTP surface, the validation layer, and the migration runner.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	MigrationRuns      *prometheus.CounterVec
	MigrationDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics on the default registry.
// Call it once per process; promauto panics on duplicate registration.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metric bundle on the given registerer.
// Tests use a fresh registry per case.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchdata_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pitchdata_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchdata_validation_failures_total",
			Help: "Total number of rejected payloads by resource",
		}, []string{"resource"}),
		MigrationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchdata_migration_runs_total",
			Help: "Total number of migration runs by outcome",
		}, []string{"outcome"}),
		MigrationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchdata_migration_duration_seconds",
			Help:    "Wall-clock duration of migration runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncrementValidationFailures counts one rejected payload for the resource.
func (m *Metrics) IncrementValidationFailures(resource string) {
	m.ValidationFailures.WithLabelValues(resource).Inc()
}

// ObserveMigrationRun records one migration run and its outcome, either
// "success" or "failure".
func (m *Metrics) ObserveMigrationRun(outcome string, elapsed time.Duration) {
	m.MigrationRuns.WithLabelValues(outcome).Inc()
	m.MigrationDuration.Observe(elapsed.Seconds())
}
