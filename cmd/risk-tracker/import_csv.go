package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/risk-tracker/internal/database"
	"github.com/yourusername/risk-tracker/internal/datasource"
	applogger "github.com/yourusername/risk-tracker/internal/logger"
)

var importDir string

func init() {
	importCSVCmd.Flags().StringVar(&importDir, "dir", "", "Directory of <SYMBOL>.csv files (defaults to data_source.csv_dir)")
}

var importCSVCmd = &cobra.Command{
	Use:   "import-csv [SYMBOL...]",
	Short: "Load CSV price exports into the daily_prices table",
	Long: `Reads <SYMBOL>.csv files with Date and Adj Close columns and upserts them into
PostgreSQL so the postgres provider can serve them. Without arguments every CSV
file in the directory is imported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dir := importDir
		if dir == "" {
			dir = cfg.DataSource.CSVDir
		}
		if dir == "" {
			return fmt.Errorf("no CSV directory: pass --dir or set data_source.csv_dir")
		}

		symbols := datasource.NormalizeSymbols(args)
		if len(symbols) == 0 {
			found, err := csvSymbols(dir)
			if err != nil {
				return err
			}
			symbols = found
		}

		factory := datasource.NewFactory(cfg, logger)
		defer factory.Close()
		db, err := factory.Database(ctx)
		if err != nil {
			return err
		}
		store := database.NewPriceStore(db)

		for _, symbol := range symbols {
			rows, skipped, err := readPriceRows(filepath.Join(dir, symbol+".csv"), symbol)
			if err != nil {
				return err
			}
			if err := store.UpsertPrices(ctx, rows); err != nil {
				return fmt.Errorf("failed to import %s: %w", symbol, err)
			}
			dataLog := applogger.NewDataLogger(logger, "csv")
			dataLog.LogRowsDropped(skipped, len(rows))
			dataLog.WithFields(logrus.Fields{
				"symbol": symbol,
				"rows":   len(rows),
			}).Info("Imported daily prices")
		}
		return nil
	},
}

func csvSymbols(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return datasource.NormalizeSymbols(symbols), nil
}

// readPriceRows parses one export, skipping missing or non-positive prices
func readPriceRows(path, symbol string) ([]database.PriceRow, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	series, err := datasource.ParseCSVSeries(symbol, f)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]database.PriceRow, 0, len(series.Prices))
	skipped := 0
	for i, p := range series.Prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			skipped++
			continue
		}
		rows = append(rows, database.PriceRow{Symbol: symbol, TradeDate: series.Dates[i], AdjClose: p})
	}
	return rows, skipped, nil
}
