// Package metrics exposes Prometheus instrumentation for the HTTP boundary
// and the extraction pipeline on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reliefdocs"

// Metrics implements port.PipelineMetrics and serves the HTTP scrape endpoint.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	modelCallsTotal    *prometheus.CounterVec
	modelCallAttempts  *prometheus.HistogramVec
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	recordsTotal       *prometheus.CounterVec
}

// New creates Metrics with every collector registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		modelCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "structured_calls_total",
				Help:      "Schema-validated model calls by schema and outcome.",
			},
			[]string{"schema", "outcome"},
		),
		modelCallAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "structured_call_attempts",
				Help:      "Attempts needed per schema-validated model call.",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
			[]string{"schema"},
		),
		extractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "extractions_total",
				Help:      "Pipeline runs by outcome.",
			},
			[]string{"outcome"},
		),
		extractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "extraction_duration_seconds",
				Help:      "Pipeline run duration in seconds.",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "records_total",
				Help:      "Records produced by the pipeline by kind.",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.modelCallsTotal,
		m.modelCallAttempts,
		m.extractionsTotal,
		m.extractionDuration,
		m.recordsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests. Paths
// are labelled by route template so unmatched URLs share one series.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveStructuredCall implements port.PipelineMetrics.
func (m *Metrics) ObserveStructuredCall(schema string, attempts int, outcome string) {
	m.modelCallsTotal.WithLabelValues(schema, outcome).Inc()
	if attempts > 0 {
		m.modelCallAttempts.WithLabelValues(schema).Observe(float64(attempts))
	}
}

// ObserveExtraction implements port.PipelineMetrics.
func (m *Metrics) ObserveExtraction(duration time.Duration, outcome string, expenses, claims, missing int) {
	m.extractionsTotal.WithLabelValues(outcome).Inc()
	m.extractionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.recordsTotal.WithLabelValues("expense_item").Add(float64(expenses))
	m.recordsTotal.WithLabelValues("damage_claim").Add(float64(claims))
	m.recordsTotal.WithLabelValues("missing_evidence").Add(float64(missing))
}
