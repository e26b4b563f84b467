package api

// AnalyzeRequest is the body of POST /api/v1/analyze. Symbols may be given as a
// list or as a comma-separated Tickers string; dates use YYYY-MM-DD.
type AnalyzeRequest struct {
	Symbols     []string `json:"symbols,omitempty"`
	Tickers     string   `json:"tickers,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Simulations int      `json:"simulations,omitempty"`
	Days        int      `json:"days,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnprocessable    = "INSUFFICIENT_DATA"
	CodeDataUnavailable  = "DATA_UNAVAILABLE"
	CodeRequestCancelled = "REQUEST_CANCELLED"
	CodeInternal         = "INTERNAL_ERROR"
)
