package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/report"
)

var (
	tickers     string
	startDate   string
	endDate     string
	simulations int
	days        int
	seed        uint64
	format      string
	outputPath  string
	chartDir    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&tickers, "tickers", "t", "", "Comma-separated ticker symbols, e.g. AAPL,MSFT,GOOG")
	analyzeCmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD), defaults to analysis.default_start_date")
	analyzeCmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, exclusive), defaults to analysis.default_end_date")
	analyzeCmd.Flags().IntVarP(&simulations, "simulations", "n", 0, "Simulations per asset (100-1000)")
	analyzeCmd.Flags().IntVarP(&days, "days", "d", 0, "Trading days to simulate (30-365)")
	analyzeCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for reproducible simulations (0 uses the clock)")
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "console", "Output format: console, json, yaml, csv, html")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&chartDir, "chart-dir", "", "Write PNG simulation charts into this directory")
	_ = analyzeCmd.MarkFlagRequired("tickers")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a portfolio of tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reportFormat, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		start, err := parseDateFlag("start", startDate)
		if err != nil {
			return err
		}
		end, err := parseDateFlag("end", endDate)
		if err != nil {
			return err
		}

		engine, err := analysis.FromConfig(&cfg.Analysis)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			engine.Seed = seed
		}

		svc, factory, err := buildService(ctx, engine)
		if err != nil {
			return err
		}
		defer factory.Close()

		result, err := svc.Analyze(ctx, svc.NewRequest(tickers, start, end, simulations, days))
		if err != nil {
			return err
		}

		rep := report.Build(result)
		if outputPath != "" {
			if err := report.WriteFile(outputPath, rep, reportFormat); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			logger.WithField("path", outputPath).Info("Report written")
		} else if err := report.Write(cmd.OutOrStdout(), rep, reportFormat); err != nil {
			return err
		}

		if chartDir != "" {
			return writeCharts(chartDir, result.Symbols, result.Aggregate, result.Individual)
		}
		return nil
	},
}

func writeCharts(dir string, symbols []string, aggregate analysis.SimulationBatch, individual map[string]analysis.SimulationBatch) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := report.WriteSimulationChart(filepath.Join(dir, "basket.png"), "Equal-weight basket", aggregate); err != nil {
		return fmt.Errorf("failed to write basket chart: %w", err)
	}
	for _, symbol := range symbols {
		path := filepath.Join(dir, symbol+".png")
		if err := report.WriteSimulationChart(path, symbol, individual[symbol]); err != nil {
			return fmt.Errorf("failed to write %s chart: %w", symbol, err)
		}
	}
	logger.WithField("dir", dir).Info("Simulation charts written")
	return nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}
