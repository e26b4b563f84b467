package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DataLogger provides dedicated logging for price data retrieval.
type DataLogger struct {
	*logrus.Entry
}

// NewDataLogger creates a new data source logger.
func NewDataLogger(baseLogger *logrus.Logger, provider string) *DataLogger {
	return &DataLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "datasource",
			"provider":  provider,
		}),
	}
}

// LogFetch logs a completed price fetch.
func (dl *DataLogger) LogFetch(symbols []string, rows int, duration time.Duration) {
	dl.WithFields(logrus.Fields{
		"symbols":     symbols,
		"rows":        rows,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Info("Prices fetched")
}

// LogFetchFailed logs a failed price fetch.
func (dl *DataLogger) LogFetchFailed(symbol string, err error) {
	dl.WithFields(logrus.Fields{
		"symbol": symbol,
		"error":  err.Error(),
	}).Warn("Price fetch failed")
}

// LogCache logs a price cache lookup.
func (dl *DataLogger) LogCache(key string, hit bool) {
	dl.WithFields(logrus.Fields{
		"cache_key": key,
		"hit":       hit,
	}).Debug("Price cache lookup")
}

// LogRowsDropped logs rows removed while aligning series.
func (dl *DataLogger) LogRowsDropped(dropped, kept int) {
	if dropped == 0 {
		return
	}
	dl.WithFields(logrus.Fields{
		"rows_dropped": dropped,
		"rows_kept":    kept,
	}).Info("Dropped incomplete rows")
}
