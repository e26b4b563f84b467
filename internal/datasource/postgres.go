package datasource

import (
	"context"
	"time"

	"github.com/yourusername/risk-tracker/internal/database"
	"github.com/yourusername/risk-tracker/internal/models"
)

const postgresSourceName = "postgres"

// PriceQuerier reads stored daily prices
type PriceQuerier interface {
	QueryPrices(ctx context.Context, symbols []string, start, end time.Time) ([]database.PriceRow, error)
}

// PostgresSource implements PriceSource over the daily_prices table
type PostgresSource struct {
	store PriceQuerier
}

// NewPostgresSource creates a database-backed price source
func NewPostgresSource(store PriceQuerier) *PostgresSource {
	return &PostgresSource{store: store}
}

// Name returns the provider name
func (s *PostgresSource) Name() string {
	return postgresSourceName
}

// FetchPrices loads stored prices and pivots them into an aligned table
func (s *PostgresSource) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	if len(symbols) == 0 {
		return nil, models.ErrEmptySymbols
	}
	rows, err := s.store.QueryPrices(ctx, symbols, start, end)
	if err != nil {
		return nil, NewDataSourceError(postgresSourceName, ErrCodeServerError, "failed to load prices", err)
	}
	return AlignSeries(postgresSourceName, symbols, pivotRows(rows))
}

func pivotRows(rows []database.PriceRow) []Series {
	index := make(map[string]int)
	var series []Series
	for _, r := range rows {
		i, ok := index[r.Symbol]
		if !ok {
			i = len(series)
			index[r.Symbol] = i
			series = append(series, Series{Symbol: r.Symbol})
		}
		series[i].Dates = append(series[i].Dates, r.TradeDate)
		series[i].Prices = append(series[i].Prices, r.AdjClose)
	}
	return series
}
