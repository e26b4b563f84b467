// Package datasource retrieves daily adjusted closing prices from external providers.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/risk-tracker/internal/models"
)

// PriceSource returns a date-aligned table of adjusted closing prices for the
// requested symbols over [start, end). Columns follow the order of symbols and
// rows with a missing price for any symbol are dropped. An unknown symbol or an
// empty result fails with an error wrapping models.ErrDataUnavailable.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error)

	// Name returns the provider name used in logs and metrics
	Name() string
}

// Series is the chronological price history of one symbol
type Series struct {
	Symbol string
	Dates  []time.Time
	Prices []float64
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes both the underlying cause and models.ErrDataUnavailable
func (e DataSourceError) Unwrap() []error {
	if e.Err != nil {
		return []error{models.ErrDataUnavailable, e.Err}
	}
	return []error{models.ErrDataUnavailable}
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
