// Package service orchestrates price retrieval and the analysis engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/datasource"
	"github.com/yourusername/risk-tracker/internal/logger"
	"github.com/yourusername/risk-tracker/internal/metrics"
	"github.com/yourusername/risk-tracker/internal/models"
	"github.com/yourusername/risk-tracker/internal/tracing"
)

// Analysis stages, used as metric labels and trace segment names
const (
	StageFetch      = "fetch"
	StageReturns    = "returns"
	StageSummary    = "summary"
	StageOptimize   = "optimize"
	StageAggregate  = "simulate_aggregate"
	StageIndividual = "simulate_individual"
)

// ErrInvalidRequest is returned when an AnalysisRequest fails validation
var ErrInvalidRequest = errors.New("invalid analysis request")

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// AnalysisRequest describes one analysis run. Zero Simulations or Days fall back
// to the engine defaults.
type AnalysisRequest struct {
	Symbols     []string  `json:"symbols" validate:"required,min=1,max=50,dive,ticker"`
	Start       time.Time `json:"start_date" validate:"required"`
	End         time.Time `json:"end_date" validate:"required,gtfield=Start"`
	Simulations int       `json:"simulations,omitempty" validate:"omitempty,gte=100,lte=1000"`
	Days        int       `json:"days,omitempty" validate:"omitempty,gte=30,lte=365"`
}

// AnalysisResult holds every output of a run
type AnalysisResult struct {
	RunID        string              `json:"run_id"`
	Symbols      []string            `json:"symbols"`
	Start        time.Time           `json:"start_date"`
	End          time.Time           `json:"end_date"`
	Observations int                 `json:"observations"`
	Prices       *models.PriceTable  `json:"-"`
	Returns      *models.ReturnTable `json:"-"`

	Summary           *analysis.PortfolioSummary   `json:"summary"`
	Optimization      *analysis.OptimizationResult `json:"optimization,omitempty"`
	OptimizationError string                       `json:"optimization_error,omitempty"`

	Aggregate         analysis.SimulationBatch            `json:"-"`
	AggregateSummary  analysis.BatchSummary               `json:"aggregate_simulation"`
	Individual        map[string]analysis.SimulationBatch `json:"-"`
	IndividualSummary map[string]analysis.BatchSummary    `json:"individual_simulations"`

	Duration time.Duration `json:"duration_ns"`
}

// Options configures an AnalysisService
type Options struct {
	Engine       analysis.Config
	DefaultStart time.Time
	DefaultEnd   time.Time
}

// AnalysisService runs the full analysis pipeline for a request
type AnalysisService struct {
	source   datasource.PriceSource
	opts     Options
	logger   *logger.AnalysisLogger
	validate *validator.Validate
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(source datasource.PriceSource, opts Options, log *logrus.Logger) *AnalysisService {
	v := validator.New()
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})

	return &AnalysisService{
		source:   source,
		opts:     opts,
		logger:   logger.NewAnalysisLogger(log),
		validate: v,
	}
}

// NewRequest builds a request from raw CLI or form input. Zero dates take the
// configured default range.
func (s *AnalysisService) NewRequest(tickers string, start, end time.Time, simulations, days int) AnalysisRequest {
	if start.IsZero() {
		start = s.opts.DefaultStart
	}
	if end.IsZero() {
		end = s.opts.DefaultEnd
	}
	return AnalysisRequest{
		Symbols:     datasource.ParseSymbols(tickers),
		Start:       start,
		End:         end,
		Simulations: simulations,
		Days:        days,
	}
}

// Validate normalizes the request symbols in place and validates the request
func (s *AnalysisService) Validate(req *AnalysisRequest) error {
	req.Symbols = datasource.NormalizeSymbols(req.Symbols)
	if err := s.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, formatValidationErrors(validationErrors))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Analyze fetches prices and runs the summary, optimizer and both simulations
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if err := s.Validate(&req); err != nil {
		metrics.RecordAnalysisRun("invalid_request")
		return nil, err
	}

	done := metrics.AnalysisStarted()
	defer done()

	began := time.Now()
	result := &AnalysisResult{
		RunID:   uuid.New().String(),
		Symbols: req.Symbols,
		Start:   req.Start,
		End:     req.End,
	}
	log := s.logger.WithRun(result.RunID)

	individualCfg := s.opts.Engine.Simulation(req.Simulations, req.Days)
	log.LogAnalysisStarted(req.Symbols, req.Start, req.End, individualCfg.Simulations, individualCfg.Days)

	ctx, endRun := tracing.StartStage(ctx, "analysis")
	tracing.AddAnnotation(ctx, "run_id", result.RunID)

	err := s.run(ctx, log, req, result)
	endRun(err)
	if err != nil {
		metrics.RecordAnalysisRun(runStatus(err))
		return nil, err
	}

	result.Duration = time.Since(began)
	metrics.RecordAnalysisRun("success")
	log.LogAnalysisCompleted(result.Observations, result.Duration)
	return result, nil
}

func (s *AnalysisService) run(ctx context.Context, log *logger.AnalysisLogger, req AnalysisRequest, result *AnalysisResult) error {
	engine := s.opts.Engine

	err := s.stage(ctx, log, StageFetch, func(ctx context.Context) error {
		prices, err := s.source.FetchPrices(ctx, req.Symbols, req.Start, req.End)
		if err != nil {
			return err
		}
		result.Prices = prices.DropIncomplete()
		result.Observations = result.Prices.Rows()
		return nil
	})
	if err != nil {
		return err
	}

	err = s.stage(ctx, log, StageReturns, func(context.Context) error {
		if result.Observations < analysis.MinPriceRows {
			return fmt.Errorf("%w: need at least %d complete price rows, got %d",
				analysis.ErrInsufficientData, analysis.MinPriceRows, result.Observations)
		}
		returns, err := analysis.CalculateReturns(result.Prices)
		result.Returns = returns
		return err
	})
	if err != nil {
		return err
	}

	err = s.stage(ctx, log, StageSummary, func(context.Context) error {
		summary, err := analysis.Summarize(result.Returns, engine.Summary())
		if err != nil {
			return err
		}
		for metric, reason := range summary.Undefined {
			metrics.RecordUndefinedMetric(metric)
			log.LogUndefinedMetric(metric, reason)
		}
		result.Summary = summary
		return nil
	})
	if err != nil {
		return err
	}

	// A failed solve is reported on the result; simulations do not depend on it.
	err = s.stage(ctx, log, StageOptimize, func(ctx context.Context) error {
		opt, err := analysis.OptimizePortfolio(ctx, result.Returns, engine.Optimizer)
		if err != nil {
			var optErr *analysis.OptimizerError
			if errors.As(err, &optErr) {
				metrics.RecordOptimizerFailure(optErr.Status)
				result.OptimizationError = err.Error()
				log.WithError(err).Warn("Portfolio optimization did not converge")
				return nil
			}
			return err
		}
		metrics.RecordOptimization(opt.Method, opt.Iterations)
		weights := make(map[string]float64, len(opt.Symbols))
		for i, symbol := range opt.Symbols {
			weights[symbol] = opt.Weights[i]
		}
		log.LogOptimization(opt.Method, opt.Status, opt.Iterations, opt.SharpeRatio, weights)
		result.Optimization = opt
		return nil
	})
	if err != nil {
		return err
	}

	err = s.stage(ctx, log, StageAggregate, func(ctx context.Context) error {
		cfg := engine.AggregateSimulation(req.Simulations, req.Days)
		began := time.Now()
		batch, err := analysis.MonteCarloSimulation(ctx, result.Prices, cfg)
		if err != nil {
			return err
		}
		sims, days := batch.Shape()
		metrics.RecordSimulatedPaths("aggregate", sims)
		log.LogSimulation("aggregate", len(result.Symbols), sims, days, time.Since(began))
		result.Aggregate = batch
		result.AggregateSummary = batch.Summary()
		return nil
	})
	if err != nil {
		return err
	}

	return s.stage(ctx, log, StageIndividual, func(ctx context.Context) error {
		cfg := engine.Simulation(req.Simulations, req.Days)
		began := time.Now()
		batches, err := analysis.MonteCarloSimulationIndividual(ctx, result.Prices, cfg)
		if err != nil {
			return err
		}
		result.Individual = batches
		result.IndividualSummary = make(map[string]analysis.BatchSummary, len(batches))
		for symbol, batch := range batches {
			result.IndividualSummary[symbol] = batch.Summary()
			metrics.RecordSimulatedPaths("individual", len(batch))
		}
		log.LogSimulation("individual", len(batches), cfg.Simulations, cfg.Days, time.Since(began))
		return nil
	})
}

// stage times, traces and logs one pipeline step
func (s *AnalysisService) stage(ctx context.Context, log *logger.AnalysisLogger, name string, fn func(context.Context) error) error {
	ctx, end := tracing.StartStage(ctx, name)
	began := time.Now()
	err := fn(ctx)
	metrics.RecordStageDuration(name, time.Since(began).Seconds())
	end(err)
	if err != nil {
		log.LogAnalysisFailed(name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func runStatus(err error) string {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return "data_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failure"
	}
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		switch e.Tag() {
		case "required":
			msg += fmt.Sprintf("%s is required", e.Field())
		case "min":
			msg += fmt.Sprintf("%s needs at least %s entries", e.Field(), e.Param())
		case "max":
			msg += fmt.Sprintf("%s allows at most %s entries", e.Field(), e.Param())
		case "gte":
			msg += fmt.Sprintf("%s must be >= %s", e.Field(), e.Param())
		case "lte":
			msg += fmt.Sprintf("%s must be <= %s", e.Field(), e.Param())
		case "gtfield":
			msg += fmt.Sprintf("%s must be after %s", e.Field(), e.Param())
		case "ticker":
			msg += fmt.Sprintf("%s is not a valid ticker: %q", e.Field(), e.Value())
		default:
			msg += fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
		}
	}
	return msg
}
