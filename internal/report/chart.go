package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/vicanso/go-charts/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/risk-tracker/internal/analysis"
)

// Bands holds per-day percentiles across the paths of a simulation batch
type Bands struct {
	P5     []float64
	Median []float64
	P95    []float64
}

// SimulationBands computes the 5th, 50th and 95th percentile price of every day
func SimulationBands(batch analysis.SimulationBatch) Bands {
	sims, days := batch.Shape()
	bands := Bands{
		P5:     make([]float64, days),
		Median: make([]float64, days),
		P95:    make([]float64, days),
	}
	column := make([]float64, sims)
	for d := 0; d < days; d++ {
		for s := 0; s < sims; s++ {
			column[s] = batch[s][d]
		}
		sort.Float64s(column)
		bands.P5[d] = stat.Quantile(0.05, stat.LinInterp, column, nil)
		bands.Median[d] = stat.Quantile(0.5, stat.LinInterp, column, nil)
		bands.P95[d] = stat.Quantile(0.95, stat.LinInterp, column, nil)
	}
	return bands
}

// SimulationChart renders the percentile fan of a batch as a PNG line chart
func SimulationChart(title string, batch analysis.SimulationBatch) ([]byte, error) {
	sims, days := batch.Shape()
	if sims == 0 || days == 0 {
		return nil, fmt.Errorf("no simulated paths to chart")
	}
	bands := SimulationBands(batch)

	labels := make([]string, days)
	for d := range labels {
		labels[d] = strconv.Itoa(d + 1)
	}
	splitNum := 6
	if days <= 30 {
		splitNum = days / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{bands.P5, bands.Median, bands.P95},
		charts.TitleTextOptionFunc(title, fmt.Sprintf("%d paths • %d days", sims, days)),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"P5", "Median", "P95"},
			Left: charts.PositionRight,
		}),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(500),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// WriteSimulationChart renders a batch chart into outputPath
func WriteSimulationChart(outputPath, title string, batch analysis.SimulationBatch) error {
	buf, err := SimulationChart(title, batch)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, buf, 0o644)
}
