package database

import (
	"context"
	"fmt"

	"github.com/yourusername/risk-tracker/internal/config"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS daily_prices (
    symbol     TEXT             NOT NULL,
    trade_date DATE             NOT NULL,
    adj_close  DOUBLE PRECISION NOT NULL CHECK (adj_close > 0),
    PRIMARY KEY (symbol, trade_date)
)`

// Initialize creates a database connection pool and makes sure the price table exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the daily_prices table when missing
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}
