package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for API requests.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogAnalysisRequest logs an incoming analysis request.
func (al *AuditLogger) LogAnalysisRequest(runID, remoteAddr string, symbols []string, start, end time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"remote_addr": remoteAddr,
		"symbols":     symbols,
		"start_date":  start.Format("2006-01-02"),
		"end_date":    end.Format("2006-01-02"),
	}).Info("Analysis requested")
}

// LogRequestRejected logs a request refused before analysis.
func (al *AuditLogger) LogRequestRejected(remoteAddr, reason string, status int) {
	al.WithFields(logrus.Fields{
		"remote_addr": remoteAddr,
		"reason":      reason,
		"status":      status,
	}).Warn("Analysis request rejected")
}
