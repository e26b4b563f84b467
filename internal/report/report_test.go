package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/service"
)

func ptr(v float64) *float64 {
	return &v
}

func sampleResult() *service.AnalysisResult {
	return &service.AnalysisResult{
		RunID:        "run-1",
		Symbols:      []string{"AAPL", "MSFT"},
		Start:        time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Observations: 1257,
		Summary: &analysis.PortfolioSummary{
			Weights:              []float64{0.5, 0.5},
			AnnualizedReturn:     0.234567,
			AnnualizedVolatility: 0.281234,
			SharpeRatio:          ptr(1.234567),
			ValueAtRisk:          ptr(0.00112345),
			ConfidenceLevel:      0.95,
			Undefined:            map[string]string{"beta": "zero variance"},
		},
		Optimization: &analysis.OptimizationResult{
			Symbols:              []string{"AAPL", "MSFT"},
			Weights:              []float64{0.623456, 0.376544},
			AnnualizedReturn:     0.25,
			AnnualizedVolatility: 0.27,
			SharpeRatio:          0.925925925,
			Method:               "bfgs",
			Status:               "GradientThreshold",
			Iterations:           12,
		},
		AggregateSummary: analysis.BatchSummary{Simulations: 500, Days: 252, MeanFinal: 210.123, P5Final: 150.555, MedianFinal: 205.5, P95Final: 290.999},
		IndividualSummary: map[string]analysis.BatchSummary{
			"MSFT": {Simulations: 300, Days: 252, MeanFinal: 420, P5Final: 300, MedianFinal: 410, P95Final: 560},
			"AAPL": {Simulations: 300, Days: 252, MeanFinal: 200, P5Final: 140, MedianFinal: 195, P95Final: 280},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleResult())

	assert.Equal(t, "2020-01-01", r.StartDate)
	assert.Equal(t, "2024-12-31", r.EndDate)
	assert.Equal(t, 23.46, r.Summary.AnnualizedReturnPct)
	assert.Equal(t, 28.12, r.Summary.AnnualizedVolatilityPct)
	require.NotNil(t, r.Summary.SharpeRatio)
	assert.Equal(t, 1.2346, *r.Summary.SharpeRatio)
	assert.Nil(t, r.Summary.Beta)
	require.NotNil(t, r.Summary.ValueAtRiskPct)
	assert.Equal(t, 0.11, *r.Summary.ValueAtRiskPct)

	require.NotNil(t, r.Optimization)
	assert.Equal(t, []WeightEntry{{"AAPL", 62.35}, {"MSFT", 37.65}}, r.Optimization.Weights)
	assert.Equal(t, 0.9259, *r.Optimization.SharpeRatio)

	assert.Equal(t, 150.56, r.AggregateSimulation.P5Final)
	require.Len(t, r.IndividualSimulations, 2)
	assert.Equal(t, "AAPL", r.IndividualSimulations[0].Symbol)
	assert.Equal(t, "MSFT", r.IndividualSimulations[1].Symbol)
	assert.Equal(t, 1500.0, r.DurationMS)
}

func TestBuildNonFiniteSharpe(t *testing.T) {
	result := sampleResult()
	result.Optimization.SharpeRatio = math.NaN()

	r := Build(result)
	assert.Nil(t, r.Optimization.SharpeRatio)

	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, r, FormatJSON))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, "": FormatConsole, "text": FormatConsole, " csv ": FormatCSV, "html": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(sampleResult()), FormatJSON))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 62.35, decoded.Optimization.Weights[0].WeightPct)
	assert.Contains(t, buf.String(), `"beta": null`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(sampleResult()), FormatYAML))
	assert.Contains(t, buf.String(), "run_id: run-1")

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"AAPL", "MSFT"}, decoded.Symbols)
	assert.Equal(t, 300, decoded.IndividualSimulations[0].Simulations)
}

func TestGenerateConsoleReport(t *testing.T) {
	out := GenerateConsoleReport(Build(sampleResult()))

	assert.Contains(t, out, "Symbols: AAPL, MSFT")
	assert.Contains(t, out, "Annualized Return: 23.46%")
	assert.Contains(t, out, "Beta (AAPL vs basket): n/a")
	assert.Contains(t, out, "Value at Risk (95%): 0.11%")
	assert.Contains(t, out, "62.35%")
	assert.Contains(t, out, "BASKET")
}

func TestGenerateConsoleReportOptimizationFailure(t *testing.T) {
	result := sampleResult()
	result.Optimization = nil
	result.OptimizationError = "optimizer did not converge"

	out := GenerateConsoleReport(Build(result))
	assert.Contains(t, out, "Optimization failed: optimizer did not converge")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(sampleResult()), FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "metric,symbol,value", lines[0])
	assert.Contains(t, buf.String(), "optimal_weight_pct,AAPL,62.35")
	assert.Contains(t, buf.String(), "beta,AAPL,\n")
}

func TestWriteFileHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	require.NoError(t, WriteFile(path, Build(sampleResult()), FormatHTML))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<td>AAPL</td><td>62.35</td>")
}
