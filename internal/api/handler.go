// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/logger"
	"github.com/yourusername/risk-tracker/internal/models"
	"github.com/yourusername/risk-tracker/internal/report"
	"github.com/yourusername/risk-tracker/internal/service"
	"github.com/yourusername/risk-tracker/internal/tracing"
)

const maxBodyBytes = 1 << 20

// Analyzer runs analyses
type Analyzer interface {
	NewRequest(tickers string, start, end time.Time, simulations, days int) service.AnalysisRequest
	Analyze(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisResult, error)
}

// AnalysisHandler handles analysis requests
type AnalysisHandler struct {
	analyzer Analyzer
	audit    *logger.AuditLogger
	timeout  time.Duration
}

// NewAnalysisHandler creates a new analysis handler. A zero timeout leaves the
// request context as is.
func NewAnalysisHandler(analyzer Analyzer, log *logrus.Logger, timeout time.Duration) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		audit:    logger.NewAuditLogger(log),
		timeout:  timeout,
	}
}

// NewRouter mounts the API routes behind CORS and tracing middleware
func NewRouter(h *AnalysisHandler, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyze", h.Analyze)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         300,
	})
	return tracing.Handler("risk-tracker-api", c.Handler(mux))
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	remote := clientAddr(r)

	var body AnalyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.reject(w, remote, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	start, err := parseDate(body.StartDate)
	if err != nil {
		h.reject(w, remote, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("invalid start_date: %v", err))
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		h.reject(w, remote, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("invalid end_date: %v", err))
		return
	}

	tickers := body.Tickers
	if len(body.Symbols) > 0 {
		tickers = strings.Join(body.Symbols, ",")
	}
	req := h.analyzer.NewRequest(tickers, start, end, body.Simulations, body.Days)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.analyzer.Analyze(ctx, req)
	if err != nil {
		status, code := classify(err)
		h.reject(w, remote, status, code, err.Error())
		return
	}
	h.audit.LogAnalysisRequest(result.RunID, remote, result.Symbols, result.Start, result.End)

	rep := report.Build(result)
	if wantsYAML(r) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_ = yaml.NewEncoder(w).Encode(rep)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *AnalysisHandler) reject(w http.ResponseWriter, remote string, status int, code, message string) {
	h.audit.LogRequestRejected(remote, message, status)
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// classify maps analysis errors onto HTTP statuses
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusBadGateway, CodeDataUnavailable
	case errors.Is(err, analysis.ErrInsufficientData), errors.Is(err, analysis.ErrZeroVariance):
		return http.StatusUnprocessableEntity, CodeUnprocessable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeRequestCancelled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func parseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func wantsYAML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		format, err := report.ParseFormat(f)
		return err == nil && format == report.FormatYAML
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "yaml")
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
