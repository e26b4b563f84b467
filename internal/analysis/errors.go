package analysis

import (
	"errors"
	"fmt"

	"github.com/yourusername/risk-tracker/internal/models"
)

var (
	// ErrInsufficientData is returned when a series is too short for the requested statistic
	ErrInsufficientData = models.ErrInsufficientData
	// ErrZeroVariance is returned when a ratio would divide by a zero standard deviation or variance
	ErrZeroVariance = models.ErrZeroVariance
	// ErrLengthMismatch is returned when paired series differ in length
	ErrLengthMismatch = errors.New("series length mismatch")
	// ErrInvalidConfidence is returned for confidence levels outside [0, 1]
	ErrInvalidConfidence = errors.New("confidence level must be within [0, 1]")
	// ErrInvalidSimulation is returned for non-positive simulation or day counts
	ErrInvalidSimulation = errors.New("simulation and day counts must be positive")
	// ErrNonConvergence is returned when the optimizer stops without meeting its convergence criteria
	ErrNonConvergence = errors.New("optimizer did not converge")
)

// OptimizerError carries the raw solver status of a failed optimization
type OptimizerError struct {
	Status     string
	Method     string
	Iterations int
	Err        error
}

func (e *OptimizerError) Error() string {
	msg := fmt.Sprintf("%s: method=%s status=%s iterations=%d", ErrNonConvergence.Error(), e.Method, e.Status, e.Iterations)
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrNonConvergence)
func (e *OptimizerError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNonConvergence, e.Err}
	}
	return []error{ErrNonConvergence}
}
