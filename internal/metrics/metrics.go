package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the analytics service.
// Each instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	StoreOperationsTotal   *prometheus.CounterVec
	StoreErrorsTotal       *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	ViewsRecordedTotal   prometheus.Counter
	ReadingSamplesTotal  *prometheus.CounterVec
	PopularQueryDuration prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvstore_operations_total",
				Help: "Total number of key-value store operations",
			},
			[]string{"backend", "operation"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvstore_errors_total",
				Help: "Total number of failed key-value store operations",
			},
			[]string{"backend", "operation"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kvstore_operation_duration_seconds",
				Help:    "Key-value store operation latency in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "operation"},
		),
		ViewsRecordedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analytics_views_recorded_total",
			Help: "Total number of recorded page views",
		}),
		ReadingSamplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_reading_samples_total",
				Help: "Reading-time beacons by outcome",
			},
			[]string{"outcome"},
		),
		PopularQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_popular_query_duration_seconds",
			Help:    "Time spent ranking popular posts",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreOperationsTotal,
		m.StoreErrorsTotal,
		m.StoreOperationDuration,
		m.ViewsRecordedTotal,
		m.ReadingSamplesTotal,
		m.PopularQueryDuration,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
