package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/risk-tracker/internal/models"
)

// OptimizerConfig configures the max-Sharpe solver
type OptimizerConfig struct {
	MaxIterations     int
	GradientThreshold float64
	WeightTolerance   float64
}

// DefaultOptimizerConfig returns solver settings suitable for daily return tables
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxIterations:     1000,
		GradientThreshold: 1e-9,
		WeightTolerance:   1e-6,
	}
}

// OptimizationResult is the outcome of a max-Sharpe solve
type OptimizationResult struct {
	Symbols              []string  `json:"symbols"`
	Weights              []float64 `json:"weights"`
	Objective            float64   `json:"objective"`
	AnnualizedReturn     float64   `json:"annualized_return"`
	AnnualizedVolatility float64   `json:"annualized_volatility"`
	SharpeRatio          float64   `json:"sharpe_ratio"`
	Method               string    `json:"method"`
	Status               string    `json:"status"`
	Iterations           int       `json:"iterations"`
}

// WeightOf returns the optimized weight of a symbol
func (r *OptimizationResult) WeightOf(symbol string) float64 {
	for i, s := range r.Symbols {
		if s == symbol {
			return r.Weights[i]
		}
	}
	return 0
}

// sharpeObjective evaluates -annualized return / annualized volatility
type sharpeObjective struct {
	mu  []float64
	cov *mat.SymDense
}

func newSharpeObjective(returns *models.ReturnTable) (*sharpeObjective, error) {
	if returns == nil || returns.Columns() == 0 {
		return nil, fmt.Errorf("%w: empty return table", ErrInsufficientData)
	}
	if returns.Rows() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 return periods, got %d", ErrInsufficientData, returns.Rows())
	}
	n := returns.Columns()
	data := mat.NewDense(returns.Rows(), n, nil)
	for i, row := range returns.Returns {
		data.SetRow(i, row)
	}
	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return &sharpeObjective{mu: returns.Means(), cov: cov}, nil
}

func (o *sharpeObjective) annualized(w []float64) (ret, vol float64) {
	v := mat.NewVecDense(len(w), w)
	ret = TradingDaysPerYear * floats.Dot(w, o.mu)
	vol = math.Sqrt(TradingDaysPerYear * mat.Inner(v, o.cov, v))
	return ret, vol
}

func (o *sharpeObjective) value(w []float64) float64 {
	ret, vol := o.annualized(w)
	if !(vol > zeroVarianceTolerance) {
		return math.Inf(1)
	}
	return -ret / vol
}

// gradient writes d(objective)/dw into dst
func (o *sharpeObjective) gradient(dst, w []float64) {
	n := len(w)
	ret, vol := o.annualized(w)
	sigmaW := mat.NewVecDense(n, nil)
	sigmaW.MulVec(o.cov, mat.NewVecDense(n, w))
	vol3 := vol * vol * vol
	for i := 0; i < n; i++ {
		dst[i] = -TradingDaysPerYear*o.mu[i]/vol + ret*TradingDaysPerYear*sigmaW.AtVec(i)/vol3
	}
}

// NegativeSharpe evaluates the optimizer objective for a candidate weight vector
func NegativeSharpe(returns *models.ReturnTable, weights []float64) (float64, error) {
	obj, err := newSharpeObjective(returns)
	if err != nil {
		return math.NaN(), err
	}
	if len(weights) != len(obj.mu) {
		return math.NaN(), fmt.Errorf("%w: %d weights for %d assets", ErrLengthMismatch, len(weights), len(obj.mu))
	}
	return obj.value(weights), nil
}

// OptimizePortfolio finds long-only, fully invested weights maximizing the annualized
// Sharpe ratio, starting from equal weights.
//
// The simplex constraint is enforced through a softmax parameterization so the
// unconstrained gonum solvers can be used; weights smaller than WeightTolerance
// are snapped to zero afterwards.
func OptimizePortfolio(ctx context.Context, returns *models.ReturnTable, cfg OptimizerConfig) (*OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.MaxIterations <= 0 {
		cfg = DefaultOptimizerConfig()
	}
	obj, err := newSharpeObjective(returns)
	if err != nil {
		return nil, fmt.Errorf("optimize portfolio: %w", err)
	}
	n := len(obj.mu)

	if n == 1 {
		return buildOptimizationResult(returns.Symbols, []float64{1}, obj, "closed_form", "Success", 0), nil
	}

	equal := make([]float64, n)
	for i := range equal {
		equal[i] = 1 / float64(n)
	}
	if f := obj.value(equal); math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, &OptimizerError{Status: "DegenerateCovariance", Method: "none", Err: ErrZeroVariance}
	}

	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			return obj.value(softmax(z))
		},
		Grad: func(grad, z []float64) {
			w := softmax(z)
			gw := make([]float64, n)
			obj.gradient(gw, w)
			avg := floats.Dot(w, gw)
			for i := range grad {
				grad[i] = w[i] * (gw[i] - avg)
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: cfg.GradientThreshold,
		MajorIterations:   cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	// z = 0 maps to equal weights
	initial := make([]float64, n)

	result, err := optimize.Minimize(problem, initial, settings, &optimize.BFGS{})
	method := "bfgs"
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
		method = "nelder_mead"
	}
	if err != nil {
		status := "Failure"
		iterations := 0
		if result != nil {
			status = result.Status.String()
			iterations = result.MajorIterations
		}
		return nil, &OptimizerError{Status: status, Method: method, Iterations: iterations, Err: err}
	}
	if !converged(result.Status) {
		return nil, &OptimizerError{Status: result.Status.String(), Method: method, Iterations: result.MajorIterations}
	}

	weights := snapWeights(softmax(result.X), cfg.WeightTolerance)
	return buildOptimizationResult(returns.Symbols, weights, obj, method, result.Status.String(), result.MajorIterations), nil
}

func buildOptimizationResult(symbols []string, weights []float64, obj *sharpeObjective, method, status string, iterations int) *OptimizationResult {
	ret, vol := obj.annualized(weights)
	sharpe := math.NaN()
	if vol > zeroVarianceTolerance {
		sharpe = ret / vol
	}
	return &OptimizationResult{
		Symbols:              append([]string{}, symbols...),
		Weights:              weights,
		Objective:            obj.value(weights),
		AnnualizedReturn:     ret,
		AnnualizedVolatility: vol,
		SharpeRatio:          sharpe,
		Method:               method,
		Status:               status,
		Iterations:           iterations,
	}
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.MethodConverge:
		return true
	default:
		return false
	}
}

func softmax(z []float64) []float64 {
	w := make([]float64, len(z))
	maxZ := floats.Max(z)
	for i, v := range z {
		w[i] = math.Exp(v - maxZ)
	}
	floats.Scale(1/floats.Sum(w), w)
	return w
}

// snapWeights zeroes negligible weights and renormalizes onto the simplex
func snapWeights(w []float64, tol float64) []float64 {
	out := append([]float64{}, w...)
	for i, v := range out {
		if v < tol {
			out[i] = 0
		}
	}
	sum := floats.Sum(out)
	if sum <= 0 {
		return w
	}
	floats.Scale(1/sum, out)
	return out
}
