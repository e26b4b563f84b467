package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/yourusername/risk-tracker/internal/logger"
	"github.com/yourusername/risk-tracker/internal/metrics"
	"github.com/yourusername/risk-tracker/internal/models"
)

// CachedSource decorates a PriceSource with a PriceCache
type CachedSource struct {
	source PriceSource
	cache  PriceCache
	logger *logger.DataLogger
}

// NewCachedSource wraps source with cache
func NewCachedSource(source PriceSource, cache PriceCache, log *logger.DataLogger) *CachedSource {
	return &CachedSource{source: source, cache: cache, logger: log}
}

// Name returns the wrapped provider name
func (c *CachedSource) Name() string {
	return c.source.Name()
}

// FetchPrices serves from cache when possible and stores fresh results
func (c *CachedSource) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	key := CacheKey(c.source.Name(), symbols, start, end)
	if table, ok := c.cache.Get(ctx, key); ok {
		metrics.RecordCacheLookup(true)
		if c.logger != nil {
			c.logger.LogCache(key, true)
		}
		return table, nil
	}
	metrics.RecordCacheLookup(false)
	if c.logger != nil {
		c.logger.LogCache(key, false)
	}

	table, err := c.source.FetchPrices(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, key, table)
	return table, nil
}

// InstrumentedSource records latency and errors of a PriceSource
type InstrumentedSource struct {
	source PriceSource
	logger *logger.DataLogger
}

// NewInstrumentedSource wraps source with metrics and logging
func NewInstrumentedSource(source PriceSource, log *logger.DataLogger) *InstrumentedSource {
	return &InstrumentedSource{source: source, logger: log}
}

// Name returns the wrapped provider name
func (s *InstrumentedSource) Name() string {
	return s.source.Name()
}

// FetchPrices delegates and records the outcome
func (s *InstrumentedSource) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	began := time.Now()
	table, err := s.source.FetchPrices(ctx, symbols, start, end)
	elapsed := time.Since(began)
	metrics.RecordDataFetch(s.source.Name(), elapsed.Seconds(), err)

	if s.logger != nil {
		if err != nil {
			s.logger.LogFetchFailed(strings.Join(symbols, ","), err)
		} else {
			s.logger.LogFetch(symbols, table.Rows(), elapsed)
		}
	}
	return table, err
}
