package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/risk-tracker/internal/models"
)

// SummaryConfig configures the equal-weight portfolio summary
type SummaryConfig struct {
	RiskFreeRate    float64
	ConfidenceLevel float64
}

// PortfolioSummary holds headline metrics of the equal-weight basket.
// Metrics that are undefined for the input are nil and explained in Undefined.
type PortfolioSummary struct {
	Weights              []float64         `json:"weights"`
	AnnualizedReturn     float64           `json:"annualized_return"`
	AnnualizedVolatility float64           `json:"annualized_volatility"`
	SharpeRatio          *float64          `json:"sharpe_ratio,omitempty"`
	Beta                 *float64          `json:"beta,omitempty"`
	ValueAtRisk          *float64          `json:"value_at_risk,omitempty"`
	ConfidenceLevel      float64           `json:"confidence_level"`
	Undefined            map[string]string `json:"undefined,omitempty"`
}

// Summarize computes the equal-weight headline metrics.
//
// Sharpe ratio and VaR are taken over the vector of per-asset mean returns, and
// beta compares the first symbol against the cross-sectional mean return series
// used as the market proxy.
func Summarize(returns *models.ReturnTable, cfg SummaryConfig) (*PortfolioSummary, error) {
	if returns == nil || returns.Columns() == 0 || returns.Rows() == 0 {
		return nil, fmt.Errorf("summarize: %w: empty return table", ErrInsufficientData)
	}
	if cfg.ConfidenceLevel == 0 {
		cfg.ConfidenceLevel = DefaultConfidenceLevel
	}

	n := returns.Columns()
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	means := returns.Means()

	summary := &PortfolioSummary{
		Weights:          weights,
		AnnualizedReturn: TradingDaysPerYear * floats.Dot(weights, means),
		ConfidenceLevel:  cfg.ConfidenceLevel,
		Undefined:        map[string]string{},
	}

	if returns.Rows() >= 2 {
		data := mat.NewDense(returns.Rows(), n, nil)
		for i, row := range returns.Returns {
			data.SetRow(i, row)
		}
		cov := mat.NewSymDense(n, nil)
		stat.CovarianceMatrix(cov, data, nil)
		w := mat.NewVecDense(n, weights)
		summary.AnnualizedVolatility = math.Sqrt(TradingDaysPerYear * mat.Inner(w, cov, w))
	}

	if sharpe, err := SharpeRatio(means, cfg.RiskFreeRate); err != nil {
		summary.Undefined["sharpe_ratio"] = err.Error()
	} else {
		summary.SharpeRatio = &sharpe
	}

	if beta, err := Beta(returns.Column(0), returns.RowMeans()); err != nil {
		summary.Undefined["beta"] = err.Error()
	} else {
		summary.Beta = &beta
	}

	if v, err := ValueAtRisk(means, cfg.ConfidenceLevel); err != nil {
		summary.Undefined["value_at_risk"] = err.Error()
	} else {
		summary.ValueAtRisk = &v
	}

	if len(summary.Undefined) == 0 {
		summary.Undefined = nil
	}
	return summary, nil
}
