package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for analysis runs.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// WithRun returns a logger bound to a single analysis run.
func (al *AnalysisLogger) WithRun(runID string) *AnalysisLogger {
	return &AnalysisLogger{Entry: al.WithField("run_id", runID)}
}

// LogAnalysisStarted logs the start of an analysis run.
func (al *AnalysisLogger) LogAnalysisStarted(symbols []string, start, end time.Time, simulations, days int) {
	al.WithFields(logrus.Fields{
		"symbols":     symbols,
		"start_date":  start.Format("2006-01-02"),
		"end_date":    end.Format("2006-01-02"),
		"simulations": simulations,
		"days":        days,
	}).Info("Analysis started")
}

// LogAnalysisCompleted logs a finished analysis run.
func (al *AnalysisLogger) LogAnalysisCompleted(observations int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"observations": observations,
		"duration_ms":  float64(duration.Microseconds()) / 1000,
	}).Info("Analysis completed")
}

// LogAnalysisFailed logs a failed analysis stage.
func (al *AnalysisLogger) LogAnalysisFailed(stage string, err error) {
	al.WithFields(logrus.Fields{
		"stage": stage,
		"error": err.Error(),
	}).Error("Analysis failed")
}

// LogUndefinedMetric logs a headline metric that could not be computed.
func (al *AnalysisLogger) LogUndefinedMetric(metric, reason string) {
	al.WithFields(logrus.Fields{
		"metric": metric,
		"reason": reason,
	}).Warn("Metric undefined for input")
}

// LogOptimization logs the outcome of the max-Sharpe solve.
func (al *AnalysisLogger) LogOptimization(method, status string, iterations int, sharpe float64, weights map[string]float64) {
	al.WithFields(logrus.Fields{
		"method":       method,
		"status":       status,
		"iterations":   iterations,
		"sharpe_ratio": sharpe,
		"weights":      weights,
	}).Info("Portfolio optimization completed")
}

// LogSimulation logs a finished simulation batch.
func (al *AnalysisLogger) LogSimulation(kind string, assets, simulations, days int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"kind":        kind,
		"assets":      assets,
		"simulations": simulations,
		"days":        days,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Debug("Monte carlo simulation completed")
}
