// Package monitoring exposes Prometheus metrics for the playground service.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Playground metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	ResetsTotal    prometheus.Counter

	// Theme metrics
	ThemeToggles prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "playground_sessions_active",
			Help: "Number of live playground sessions",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "playground_sessions_total",
			Help: "Total playground sessions created",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playground_runs_total",
			Help: "Total sandboxed executions",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "playground_run_duration_seconds",
			Help:    "Sandboxed execution duration",
			Buckets: prometheus.DefBuckets,
		}),
		ResetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "playground_resets_total",
			Help: "Total playground resets",
		}),
		ThemeToggles: factory.NewCounter(prometheus.CounterOpts{
			Name: "theme_toggles_total",
			Help: "Total theme toggles",
		}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Active websocket connections",
		}),
	}
}

// RecordRun tracks one sandboxed execution.
func (m *Metrics) RecordRun(failed bool, seconds float64) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(seconds)
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
