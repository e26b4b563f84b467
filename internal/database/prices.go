package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// PriceRow is one stored adjusted close
type PriceRow struct {
	Symbol    string
	TradeDate time.Time
	AdjClose  float64
}

const selectPricesSQL = `
SELECT symbol, trade_date, adj_close
FROM daily_prices
WHERE symbol = ANY($1) AND trade_date >= $2 AND trade_date < $3
ORDER BY trade_date, symbol`

const upsertPriceSQL = `
INSERT INTO daily_prices (symbol, trade_date, adj_close)
VALUES ($1, $2, $3)
ON CONFLICT (symbol, trade_date) DO UPDATE SET adj_close = EXCLUDED.adj_close`

// PriceStore reads and writes the daily_prices table
type PriceStore struct {
	db *DB
}

// NewPriceStore creates a price store
func NewPriceStore(db *DB) *PriceStore {
	return &PriceStore{db: db}
}

// QueryPrices returns stored prices of symbols with start <= trade_date < end
func (s *PriceStore) QueryPrices(ctx context.Context, symbols []string, start, end time.Time) ([]PriceRow, error) {
	rows, err := s.db.Query(ctx, selectPricesSQL, symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PriceRow, error) {
		var r PriceRow
		err := row.Scan(&r.Symbol, &r.TradeDate, &r.AdjClose)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily prices: %w", err)
	}
	return out, nil
}

// UpsertPrices stores rows in a single transaction using a batch
func (s *PriceStore) UpsertPrices(ctx context.Context, rows []PriceRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(upsertPriceSQL, r.Symbol, r.TradeDate, r.AdjClose)
		}
		results := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert daily price: %w", err)
			}
		}
		return results.Close()
	})
}

// Ping verifies database connectivity
func (s *PriceStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
