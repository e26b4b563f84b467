// Package metrics provides the centralized Prometheus metrics registry for the risk tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "risk_tracker"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysisRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_runs_total",
		Help:      "Total number of analysis runs by status",
	}, []string{"status"})
	UndefinedMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "undefined_metrics_total",
		Help:      "Total number of headline metrics reported as undefined",
	}, []string{"metric"})
)

// Gauge metrics
var (
	AnalysesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "analyses_in_flight",
		Help:      "Number of analysis runs currently executing",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of analysis stages in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"stage"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AnalysisRunsTotal)
		registry.MustRegister(UndefinedMetricsTotal)
		registry.MustRegister(AnalysesInFlight)
		registry.MustRegister(AnalysisDuration)

		registry.MustRegister(OptimizerIterations)
		registry.MustRegister(OptimizerFailuresTotal)
		registry.MustRegister(SimulatedPathsTotal)

		registry.MustRegister(DataFetchDuration)
		registry.MustRegister(DataFetchErrorsTotal)
		registry.MustRegister(PriceCacheHitsTotal)
		registry.MustRegister(PriceCacheMissesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAnalysisRun records a finished analysis run.
// status should be one of: "success", "invalid_request", "data_error", "failure"
func RecordAnalysisRun(status string) {
	AnalysisRunsTotal.WithLabelValues(status).Inc()
}

// RecordStageDuration records the duration of one analysis stage.
func RecordStageDuration(stage string, durationSeconds float64) {
	AnalysisDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordUndefinedMetric records a metric left undefined for its input.
func RecordUndefinedMetric(metric string) {
	UndefinedMetricsTotal.WithLabelValues(metric).Inc()
}

// AnalysisStarted increments the in-flight gauge and returns a func that decrements it.
func AnalysisStarted() func() {
	AnalysesInFlight.Inc()
	return AnalysesInFlight.Dec
}
