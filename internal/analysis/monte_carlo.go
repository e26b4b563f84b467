package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/risk-tracker/internal/models"
)

// SimulationConfig configures monte carlo simulation
type SimulationConfig struct {
	Simulations int
	Days        int
	Seed        uint64
}

// Default simulation sizes for the aggregate and per-asset entry points
const (
	DefaultAggregateSimulations  = 500
	DefaultIndividualSimulations = 300
	DefaultSimulationDays        = 252

	// MinPriceRows is the shortest price history every stage can work with:
	// two return periods, so volatility and covariance are defined.
	MinPriceRows = 3
)

// SimulationBatch holds simulated price paths indexed [simulation][day].
// Day 0 is the first stepped price, not the starting price.
type SimulationBatch [][]float64

// BatchSummary describes the distribution of final-day simulated prices
type BatchSummary struct {
	Simulations int     `json:"simulations"`
	Days        int     `json:"days"`
	MeanFinal   float64 `json:"mean_final"`
	P5Final     float64 `json:"p5_final"`
	MedianFinal float64 `json:"median_final"`
	P95Final    float64 `json:"p95_final"`
}

// Shape returns the number of simulations and days in the batch
func (b SimulationBatch) Shape() (simulations, days int) {
	if len(b) == 0 {
		return 0, 0
	}
	return len(b), len(b[0])
}

// FinalPrices returns the last simulated price of every path
func (b SimulationBatch) FinalPrices() []float64 {
	out := make([]float64, 0, len(b))
	for _, path := range b {
		if len(path) > 0 {
			out = append(out, path[len(path)-1])
		}
	}
	return out
}

// Summary returns final-day statistics of the batch
func (b SimulationBatch) Summary() BatchSummary {
	sims, days := b.Shape()
	summary := BatchSummary{Simulations: sims, Days: days}
	finals := b.FinalPrices()
	if len(finals) == 0 {
		return summary
	}
	sort.Float64s(finals)
	summary.MeanFinal = stat.Mean(finals, nil)
	summary.P5Final = percentile(finals, 0.05)
	summary.MedianFinal = percentile(finals, 0.5)
	summary.P95Final = percentile(finals, 0.95)
	return summary
}

// SimulatePaths generates nSims geometric Brownian motion paths of nDays steps each:
// price <- price * exp((mu - sigma^2/2) + sigma*z), z ~ N(0, 1) drawn from src.
func SimulatePaths(ctx context.Context, src rand.Source, start, mu, sigma float64, nSims, nDays int) (SimulationBatch, error) {
	if nSims <= 0 || nDays <= 0 {
		return nil, fmt.Errorf("%w: simulations=%d days=%d", ErrInvalidSimulation, nSims, nDays)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	drift := mu - 0.5*sigma*sigma

	batch := make(SimulationBatch, nSims)
	for i := 0; i < nSims; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := make([]float64, nDays)
		price := start
		for t := 0; t < nDays; t++ {
			price *= math.Exp(drift + sigma*normal.Rand())
			path[t] = price
		}
		batch[i] = path
	}
	return batch, nil
}

// assetParams holds the GBM inputs estimated from one price series
type assetParams struct {
	last  float64
	mu    float64
	sigma float64
}

func estimateParams(symbol string, prices []float64) (assetParams, error) {
	if len(prices) < MinPriceRows {
		return assetParams{}, fmt.Errorf("%w: %s needs at least %d prices to estimate volatility, got %d", ErrInsufficientData, symbol, MinPriceRows, len(prices))
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	mu, sigma := stat.MeanStdDev(returns, nil)
	if math.IsNaN(mu) || math.IsNaN(sigma) {
		return assetParams{}, fmt.Errorf("%w: %s has undefined return statistics", ErrInsufficientData, symbol)
	}
	return assetParams{last: prices[len(prices)-1], mu: mu, sigma: sigma}, nil
}

func estimateAll(prices *models.PriceTable) ([]assetParams, error) {
	if prices == nil || len(prices.Symbols) == 0 {
		return nil, fmt.Errorf("%w: empty price table", ErrInsufficientData)
	}
	clean := prices.DropIncomplete()
	params := make([]assetParams, len(clean.Symbols))
	for j, symbol := range clean.Symbols {
		col, _ := clean.Column(symbol)
		p, err := estimateParams(symbol, col)
		if err != nil {
			return nil, err
		}
		params[j] = p
	}
	return params, nil
}

func resolveSeed(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}

func withDefaults(cfg SimulationConfig, sims int) SimulationConfig {
	if cfg.Simulations <= 0 {
		cfg.Simulations = sims
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultSimulationDays
	}
	return cfg
}

// MonteCarloSimulation simulates a single proxy for the whole basket: the start price is
// the mean of the latest prices, and drift and volatility are the cross-sectional means
// of each asset's own return mean and standard deviation.
func MonteCarloSimulation(ctx context.Context, prices *models.PriceTable, cfg SimulationConfig) (SimulationBatch, error) {
	cfg = withDefaults(cfg, DefaultAggregateSimulations)
	params, err := estimateAll(prices)
	if err != nil {
		return nil, fmt.Errorf("monte carlo simulation: %w", err)
	}

	lasts := make([]float64, len(params))
	mus := make([]float64, len(params))
	sigmas := make([]float64, len(params))
	for i, p := range params {
		lasts[i], mus[i], sigmas[i] = p.last, p.mu, p.sigma
	}

	src := rand.NewPCG(resolveSeed(cfg.Seed), 0)
	return SimulatePaths(ctx, src, stat.Mean(lasts, nil), stat.Mean(mus, nil), stat.Mean(sigmas, nil), cfg.Simulations, cfg.Days)
}

// MonteCarloSimulationIndividual simulates every asset independently from its own last
// price, mean return and return standard deviation. Assets run concurrently, each with
// its own random stream derived from the seed.
func MonteCarloSimulationIndividual(ctx context.Context, prices *models.PriceTable, cfg SimulationConfig) (map[string]SimulationBatch, error) {
	cfg = withDefaults(cfg, DefaultIndividualSimulations)
	params, err := estimateAll(prices)
	if err != nil {
		return nil, fmt.Errorf("monte carlo simulation individual: %w", err)
	}
	seed := resolveSeed(cfg.Seed)

	batches := make([]SimulationBatch, len(params))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range params {
		g.Go(func() error {
			src := rand.NewPCG(seed, uint64(i)+1)
			batch, err := SimulatePaths(gctx, src, p.last, p.mu, p.sigma, cfg.Simulations, cfg.Days)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]SimulationBatch, len(params))
	for i, symbol := range prices.Symbols {
		out[symbol] = batches[i]
	}
	return out, nil
}
