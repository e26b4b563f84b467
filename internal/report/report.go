// Package report renders analysis results for terminals, files and API clients.
package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/service"
)

const (
	ratioPlaces   = 4
	percentPlaces = 2
	pricePlaces   = 2
)

// Report is the rounded, presentation-ready view of an analysis result
type Report struct {
	RunID                 string               `json:"run_id" yaml:"run_id"`
	Symbols               []string             `json:"symbols" yaml:"symbols"`
	StartDate             string               `json:"start_date" yaml:"start_date"`
	EndDate               string               `json:"end_date" yaml:"end_date"`
	Observations          int                  `json:"observations" yaml:"observations"`
	Summary               SummarySection       `json:"summary" yaml:"summary"`
	Optimization          *OptimizationSection `json:"optimization,omitempty" yaml:"optimization,omitempty"`
	OptimizationError     string               `json:"optimization_error,omitempty" yaml:"optimization_error,omitempty"`
	AggregateSimulation   SimulationSection    `json:"aggregate_simulation" yaml:"aggregate_simulation"`
	IndividualSimulations []SimulationSection  `json:"individual_simulations" yaml:"individual_simulations"`
	DurationMS            float64              `json:"duration_ms" yaml:"duration_ms"`
}

// SummarySection holds the equal-weight headline metrics
type SummarySection struct {
	AnnualizedReturnPct     float64           `json:"annualized_return_pct" yaml:"annualized_return_pct"`
	AnnualizedVolatilityPct float64           `json:"annualized_volatility_pct" yaml:"annualized_volatility_pct"`
	SharpeRatio             *float64          `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	Beta                    *float64          `json:"beta" yaml:"beta"`
	ValueAtRiskPct          *float64          `json:"value_at_risk_pct" yaml:"value_at_risk_pct"`
	ConfidenceLevel         float64           `json:"confidence_level" yaml:"confidence_level"`
	Undefined               map[string]string `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// WeightEntry is one optimized allocation
type WeightEntry struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	WeightPct float64 `json:"weight_pct" yaml:"weight_pct"`
}

// OptimizationSection holds the max-Sharpe portfolio
type OptimizationSection struct {
	Weights                 []WeightEntry `json:"weights" yaml:"weights"`
	AnnualizedReturnPct     float64       `json:"annualized_return_pct" yaml:"annualized_return_pct"`
	AnnualizedVolatilityPct float64       `json:"annualized_volatility_pct" yaml:"annualized_volatility_pct"`
	SharpeRatio             *float64      `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	Method                  string        `json:"method" yaml:"method"`
	Status                  string        `json:"status" yaml:"status"`
	Iterations              int           `json:"iterations" yaml:"iterations"`
}

// SimulationSection summarizes final simulated prices of one batch
type SimulationSection struct {
	Symbol      string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Simulations int     `json:"simulations" yaml:"simulations"`
	Days        int     `json:"days" yaml:"days"`
	MeanFinal   float64 `json:"mean_final" yaml:"mean_final"`
	P5Final     float64 `json:"p5_final" yaml:"p5_final"`
	MedianFinal float64 `json:"median_final" yaml:"median_final"`
	P95Final    float64 `json:"p95_final" yaml:"p95_final"`
}

// Build converts a result into a Report
func Build(result *service.AnalysisResult) Report {
	r := Report{
		RunID:        result.RunID,
		Symbols:      append([]string{}, result.Symbols...),
		StartDate:    result.Start.Format("2006-01-02"),
		EndDate:      result.End.Format("2006-01-02"),
		Observations: result.Observations,
		DurationMS:   round(float64(result.Duration)/float64(time.Millisecond), 1),

		OptimizationError:   result.OptimizationError,
		AggregateSimulation: simulationSection("", result.AggregateSummary),
	}

	if s := result.Summary; s != nil {
		r.Summary = SummarySection{
			AnnualizedReturnPct:     percent(s.AnnualizedReturn),
			AnnualizedVolatilityPct: percent(s.AnnualizedVolatility),
			SharpeRatio:             roundPtr(s.SharpeRatio, ratioPlaces, 1),
			Beta:                    roundPtr(s.Beta, ratioPlaces, 1),
			ValueAtRiskPct:          roundPtr(s.ValueAtRisk, percentPlaces, 100),
			ConfidenceLevel:         s.ConfidenceLevel,
			Undefined:               s.Undefined,
		}
	}

	if opt := result.Optimization; opt != nil {
		r.Optimization = optimizationSection(opt)
	}

	for _, symbol := range result.Symbols {
		if summary, ok := result.IndividualSummary[symbol]; ok {
			r.IndividualSimulations = append(r.IndividualSimulations, simulationSection(symbol, summary))
		}
	}
	return r
}

func optimizationSection(opt *analysis.OptimizationResult) *OptimizationSection {
	section := &OptimizationSection{
		AnnualizedReturnPct:     percent(opt.AnnualizedReturn),
		AnnualizedVolatilityPct: percent(opt.AnnualizedVolatility),
		SharpeRatio:             finite(opt.SharpeRatio, ratioPlaces),
		Method:                  opt.Method,
		Status:                  opt.Status,
		Iterations:              opt.Iterations,
	}
	for i, symbol := range opt.Symbols {
		section.Weights = append(section.Weights, WeightEntry{Symbol: symbol, WeightPct: percent(opt.Weights[i])})
	}
	return section
}

func simulationSection(symbol string, s analysis.BatchSummary) SimulationSection {
	return SimulationSection{
		Symbol:      symbol,
		Simulations: s.Simulations,
		Days:        s.Days,
		MeanFinal:   round(s.MeanFinal, pricePlaces),
		P5Final:     round(s.P5Final, pricePlaces),
		MedianFinal: round(s.MedianFinal, pricePlaces),
		P95Final:    round(s.P95Final, pricePlaces),
	}
}

// round rounds half away from zero; NaN and Inf pass through unchanged
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func percent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Shift(2).Round(percentPlaces).InexactFloat64()
}

// finite returns nil for values JSON cannot carry
func finite(v float64, places int32) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	out := round(v, places)
	return &out
}

func roundPtr(v *float64, places int32, scale float64) *float64 {
	if v == nil {
		return nil
	}
	out := round(*v*scale, places)
	return &out
}
