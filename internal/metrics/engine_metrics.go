package metrics

import "github.com/prometheus/client_golang/prometheus"

// Optimizer and simulation metrics
var (
	OptimizerIterations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "optimizer_iterations",
		Help:      "Major iterations used by the max-Sharpe solver by method",
		Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"method"})
	OptimizerFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizer_failures_total",
		Help:      "Total number of optimizer failures by status",
	}, []string{"status"})
	SimulatedPathsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulated_paths_total",
		Help:      "Total number of simulated price paths by kind",
	}, []string{"kind"})
)

// RecordOptimization records a successful solve.
func RecordOptimization(method string, iterations int) {
	OptimizerIterations.WithLabelValues(method).Observe(float64(iterations))
}

// RecordOptimizerFailure records a solve that did not converge.
func RecordOptimizerFailure(status string) {
	OptimizerFailuresTotal.WithLabelValues(status).Inc()
}

// RecordSimulatedPaths records generated paths.
// kind should be one of: "aggregate", "individual"
func RecordSimulatedPaths(kind string, paths int) {
	SimulatedPathsTotal.WithLabelValues(kind).Add(float64(paths))
}
