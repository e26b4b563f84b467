package analysis

import (
	"fmt"

	"github.com/yourusername/risk-tracker/internal/config"
)

// Config groups engine settings derived from application config
type Config struct {
	RiskFreeRate         float64
	ConfidenceLevel      float64
	Simulations          int
	AggregateSimulations int
	Days                 int
	Seed                 uint64
	Optimizer            OptimizerConfig
}

// FromConfig converts app config to engine config
func FromConfig(cfg *config.AnalysisConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("analysis config is required")
	}
	opt := DefaultOptimizerConfig()
	if cfg.OptimizerMaxIterations > 0 {
		opt.MaxIterations = cfg.OptimizerMaxIterations
	}
	if cfg.OptimizerWeightTolerance > 0 {
		opt.WeightTolerance = cfg.OptimizerWeightTolerance
	}

	aggregate := cfg.AggregateSimulations
	if aggregate <= 0 {
		aggregate = DefaultAggregateSimulations
	}

	c := Config{
		RiskFreeRate:         cfg.RiskFreeRate,
		ConfidenceLevel:      cfg.ConfidenceLevel,
		Simulations:          cfg.Simulations,
		AggregateSimulations: aggregate,
		Days:                 cfg.Days,
		Seed:                 cfg.Seed,
		Optimizer:            opt,
	}
	return c, c.Validate()
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:         DefaultRiskFreeRate,
		ConfidenceLevel:      DefaultConfidenceLevel,
		Simulations:          DefaultIndividualSimulations,
		AggregateSimulations: DefaultAggregateSimulations,
		Days:                 DefaultSimulationDays,
		Optimizer:            DefaultOptimizerConfig(),
	}
}

// Validate validates engine parameters
func (c Config) Validate() error {
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("risk free rate must be between 0 and 1")
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be between 0 and 1")
	}
	if c.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive")
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive")
	}
	return nil
}

// Summary returns the equal-weight summary settings
func (c Config) Summary() SummaryConfig {
	return SummaryConfig{RiskFreeRate: c.RiskFreeRate, ConfidenceLevel: c.ConfidenceLevel}
}

// AggregateSimulation returns the settings for the basket-level simulation.
// Request overrides win; AggregateSimulations is the default path count.
func (c Config) AggregateSimulation(simulations, days int) SimulationConfig {
	sc := SimulationConfig{Simulations: c.AggregateSimulations, Days: c.Days, Seed: c.Seed}
	if simulations > 0 {
		sc.Simulations = simulations
	}
	if days > 0 {
		sc.Days = days
	}
	return sc
}

// Simulation returns the per-asset simulation settings, optionally overridden per request
func (c Config) Simulation(simulations, days int) SimulationConfig {
	sc := SimulationConfig{Simulations: c.Simulations, Days: c.Days, Seed: c.Seed}
	if simulations > 0 {
		sc.Simulations = simulations
	}
	if days > 0 {
		sc.Days = days
	}
	return sc
}
