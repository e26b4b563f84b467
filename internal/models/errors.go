package models

import "errors"

// Custom errors
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrZeroVariance     = errors.New("zero variance")
	ErrDataUnavailable  = errors.New("market data unavailable")
	ErrEmptySymbols     = errors.New("at least one symbol is required")
	ErrShapeMismatch    = errors.New("price table shape mismatch")
)
