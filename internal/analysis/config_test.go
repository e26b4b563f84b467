package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/risk-tracker/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.AnalysisConfig{
		RiskFreeRate:             0.02,
		ConfidenceLevel:          0.99,
		Simulations:              400,
		Days:                     120,
		Seed:                     42,
		OptimizerMaxIterations:   250,
		OptimizerWeightTolerance: 1e-5,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.02, cfg.RiskFreeRate)
	assert.Equal(t, 0.99, cfg.ConfidenceLevel)
	assert.Equal(t, 250, cfg.Optimizer.MaxIterations)
	assert.Equal(t, 1e-5, cfg.Optimizer.WeightTolerance)
	assert.Equal(t, DefaultOptimizerConfig().GradientThreshold, cfg.Optimizer.GradientThreshold)
	assert.Equal(t, SimulationConfig{Simulations: 400, Days: 120, Seed: 42}, cfg.Simulation(0, 0))
	assert.Equal(t, SimulationConfig{Simulations: 1000, Days: 30, Seed: 42}, cfg.Simulation(1000, 30))
	assert.Equal(t, SimulationConfig{Simulations: DefaultAggregateSimulations, Days: 30, Seed: 42}, cfg.AggregateSimulation(0, 30))
	assert.Equal(t, SimulationConfig{Simulations: 150, Days: 60, Seed: 42}, cfg.AggregateSimulation(150, 60))
	assert.Equal(t, SummaryConfig{RiskFreeRate: 0.02, ConfidenceLevel: 0.99}, cfg.Summary())
}

func TestFromConfigInvalid(t *testing.T) {
	_, err := FromConfig(nil)
	assert.Error(t, err)

	_, err = FromConfig(&config.AnalysisConfig{RiskFreeRate: 0.01, ConfidenceLevel: 1.5, Simulations: 10, Days: 10})
	assert.Error(t, err)
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultRiskFreeRate, cfg.RiskFreeRate)
	assert.Equal(t, DefaultConfidenceLevel, cfg.ConfidenceLevel)

	cfg.Days = 0
	assert.Error(t, cfg.Validate())
}
