package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/risk-tracker/internal/config"
)

// TestDSNEnv holds the integration database host; tests skip when it is unset
const TestDSNEnv = "RISK_TRACKER_TEST_DB_HOST"

// SetupTestDB connects to the integration database described by
// RISK_TRACKER_TEST_DB_* variables, skipping the test when they are unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	host := os.Getenv(TestDSNEnv)
	if host == "" {
		t.Skipf("%s not set, skipping database integration test", TestDSNEnv)
	}
	port, _ := strconv.Atoi(os.Getenv("RISK_TRACKER_TEST_DB_PORT"))
	if port == 0 {
		port = 5432
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &config.DatabaseConfig{
		Host:           host,
		Port:           port,
		Name:           os.Getenv("RISK_TRACKER_TEST_DB_NAME"),
		User:           os.Getenv("RISK_TRACKER_TEST_DB_USER"),
		Password:       os.Getenv("RISK_TRACKER_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	})
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
