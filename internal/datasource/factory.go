package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/risk-tracker/internal/config"
	"github.com/yourusername/risk-tracker/internal/database"
	"github.com/yourusername/risk-tracker/internal/logger"
)

// SourceType represents the type of data source
type SourceType string

const (
	// YahooSourceType fetches from the Yahoo Finance chart API
	YahooSourceType SourceType = yahooSourceName
	// CSVSourceType reads per-symbol CSV exports
	CSVSourceType SourceType = csvSourceName
	// PostgresSourceType reads the daily_prices table
	PostgresSourceType SourceType = postgresSourceName
)

// Factory creates PriceSource implementations based on configuration and
// owns the connections they hold.
type Factory struct {
	config *config.Config
	logger *logrus.Logger

	closers []func() error
	pingers map[string]Pinger
	db      *database.DB
}

// Pinger checks connectivity of a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		config:  cfg,
		logger:  logger,
		pingers: map[string]Pinger{},
	}
}

// Create builds the configured provider, wrapped with instrumentation and,
// when a cache TTL is set, a price cache.
func (f *Factory) Create(ctx context.Context) (PriceSource, error) {
	dsCfg := f.config.DataSource
	source, err := f.createProvider(ctx, SourceType(dsCfg.Provider))
	if err != nil {
		return nil, err
	}

	dataLogger := logger.NewDataLogger(f.logger, source.Name())
	var wrapped PriceSource = NewInstrumentedSource(source, dataLogger)

	if dsCfg.CacheTTLSeconds > 0 {
		priceCache, err := f.createCache(ctx)
		if err != nil {
			return nil, err
		}
		wrapped = NewCachedSource(wrapped, priceCache, dataLogger)
	}

	f.logger.WithFields(logrus.Fields{
		"provider":      source.Name(),
		"cache_backend": dsCfg.CacheBackend,
		"cache_ttl":     dsCfg.CacheTTL().String(),
	}).Info("Created price source")
	return wrapped, nil
}

func (f *Factory) createProvider(ctx context.Context, sourceType SourceType) (PriceSource, error) {
	dsCfg := f.config.DataSource
	switch sourceType {
	case YahooSourceType:
		httpCfg := DefaultHTTPClientConfig()
		if dsCfg.TimeoutSeconds > 0 {
			httpCfg.Timeout = dsCfg.Timeout()
		}
		httpCfg.MaxRetries = dsCfg.RetryAttempts
		if dsCfg.RequestsPerSecond > 0 {
			httpCfg.RateLimit = dsCfg.RequestsPerSecond
		}
		if dsCfg.Burst > 0 {
			httpCfg.Burst = dsCfg.Burst
		}
		httpCfg.CircuitBreakerMax = dsCfg.CircuitBreakerErrors
		client := NewRateLimitedHTTPClient(httpCfg, f.logger)
		f.closers = append(f.closers, client.Close)
		return NewYahooClient(client, dsCfg.BaseURL, f.logger), nil

	case CSVSourceType:
		if dsCfg.CSVDir == "" {
			return nil, fmt.Errorf("csv provider requires data_source.csv_dir")
		}
		return NewCSVSource(dsCfg.CSVDir), nil

	case PostgresSourceType:
		db, err := f.Database(ctx)
		if err != nil {
			return nil, err
		}
		return NewPostgresSource(database.NewPriceStore(db)), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

func (f *Factory) createCache(ctx context.Context) (PriceCache, error) {
	dsCfg := f.config.DataSource
	switch dsCfg.CacheBackend {
	case "", "memory":
		return NewMemoryCache(dsCfg.CacheTTL(), dsCfg.CacheMaxSize), nil
	case "redis":
		rc := NewRedisCache(redis.NewClient(&redis.Options{
			Addr: dsCfg.RedisAddr,
			DB:   dsCfg.RedisDB,
		}), dsCfg.CacheTTL())
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			rc.Close()
			return nil, err
		}
		f.closers = append(f.closers, rc.Close)
		f.pingers["redis"] = rc
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", dsCfg.CacheBackend)
	}
}

// Database returns the shared connection pool, opening it on first use
func (f *Factory) Database(ctx context.Context) (*database.DB, error) {
	if f.db != nil {
		return f.db, nil
	}
	db, err := database.Initialize(ctx, f.config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	f.db = db
	f.pingers["database"] = db
	f.closers = append(f.closers, func() error {
		db.Close()
		return nil
	})
	return db, nil
}

// Pingers returns the backing services opened so far, keyed by name
func (f *Factory) Pingers() map[string]Pinger {
	out := make(map[string]Pinger, len(f.pingers))
	for name, p := range f.pingers {
		out[name] = p
	}
	return out
}

// Close releases every connection opened by the factory
func (f *Factory) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	f.pingers = map[string]Pinger{}
	f.db = nil
	return errors.Join(errs...)
}
