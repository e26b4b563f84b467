// Package analysis implements the quantitative engine: risk metrics, the
// max-Sharpe portfolio optimizer and Monte Carlo price path simulation.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear converts between daily and annual figures
	TradingDaysPerYear = 252.0
	// DefaultRiskFreeRate is the annual risk-free rate used when none is configured
	DefaultRiskFreeRate = 0.01
	// DefaultConfidenceLevel is the VaR confidence used when none is configured
	DefaultConfidenceLevel = 0.95

	zeroVarianceTolerance = 1e-12
)

// SharpeRatio returns mean(excess)/std(excess) over the full sample, where the
// annual risk-free rate is converted to a daily rate. The result is not annualized.
func SharpeRatio(returns []float64, riskFreeRate float64) (float64, error) {
	if len(returns) == 0 {
		return math.NaN(), fmt.Errorf("sharpe ratio: %w: empty return series", ErrInsufficientData)
	}
	daily := riskFreeRate / TradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - daily
	}
	mean, std := stat.PopMeanStdDev(excess, nil)
	if !(std > zeroVarianceTolerance) {
		return math.NaN(), fmt.Errorf("sharpe ratio: %w", ErrZeroVariance)
	}
	return mean / std, nil
}

// Beta returns covariance(asset, market) / variance(market).
// The covariance is the sample estimate and the market variance the population
// estimate.
func Beta(asset, market []float64) (float64, error) {
	if len(asset) != len(market) {
		return math.NaN(), fmt.Errorf("beta: %w: %d vs %d", ErrLengthMismatch, len(asset), len(market))
	}
	if len(market) < 2 {
		return math.NaN(), fmt.Errorf("beta: %w: need at least 2 observations", ErrInsufficientData)
	}
	variance := stat.PopVariance(market, nil)
	if !(variance > zeroVarianceTolerance*zeroVarianceTolerance) {
		return math.NaN(), fmt.Errorf("beta: %w: market series is constant", ErrZeroVariance)
	}
	return stat.Covariance(asset, market, nil) / variance, nil
}

// ValueAtRisk returns the empirical (1-confidence) quantile of returns as a signed
// return. Higher confidence yields a lower (more negative) threshold.
func ValueAtRisk(returns []float64, confidenceLevel float64) (float64, error) {
	if len(returns) == 0 {
		return math.NaN(), fmt.Errorf("value at risk: %w: empty return series", ErrInsufficientData)
	}
	if math.IsNaN(confidenceLevel) || confidenceLevel < 0 || confidenceLevel > 1 {
		return math.NaN(), fmt.Errorf("value at risk: %w: got %v", ErrInvalidConfidence, confidenceLevel)
	}
	sorted := append([]float64{}, returns...)
	sort.Float64s(sorted)
	return percentile(sorted, 1-confidenceLevel), nil
}

// percentile interpolates linearly between the closest ranks of a sorted slice,
// with p in [0, 1] mapping to index p*(n-1).
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
