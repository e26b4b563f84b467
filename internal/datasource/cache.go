package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/risk-tracker/internal/models"
)

// PriceCache stores fetched price tables by request key
type PriceCache interface {
	Get(ctx context.Context, key string) (*models.PriceTable, bool)
	Set(ctx context.Context, key string, table *models.PriceTable)
}

// CacheKey identifies a price request
func CacheKey(provider string, symbols []string, start, end time.Time) string {
	return fmt.Sprintf("prices:%s:%s:%s:%s", provider, strings.Join(symbols, ","),
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// MemoryCache keeps price tables in process memory
type MemoryCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
	mu      sync.Mutex
}

// NewMemoryCache creates an in-memory price cache
func NewMemoryCache(ttl time.Duration, maxSize int) *MemoryCache {
	return &MemoryCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached table
func (mc *MemoryCache) Get(_ context.Context, key string) (*models.PriceTable, bool) {
	if v, found := mc.cache.Get(key); found {
		if table, ok := v.(*models.PriceTable); ok {
			return table, true
		}
	}
	return nil, false
}

// Set stores a table, skipping the write when the cache is full of live entries
func (mc *MemoryCache) Set(_ context.Context, key string, table *models.PriceTable) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.maxSize > 0 && mc.cache.ItemCount() >= mc.maxSize {
		mc.cache.DeleteExpired()
		if mc.cache.ItemCount() >= mc.maxSize {
			return
		}
	}
	mc.cache.Set(key, table, mc.ttl)
}

// ItemCount returns the number of cached tables
func (mc *MemoryCache) ItemCount() int {
	return mc.cache.ItemCount()
}

// RedisCache shares price tables between processes through Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed price cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get retrieves and decodes a cached table. Redis errors count as misses.
func (rc *RedisCache) Get(ctx context.Context, key string) (*models.PriceTable, bool) {
	raw, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var table models.PriceTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false
	}
	return &table, true
}

// Set encodes and stores a table
func (rc *RedisCache) Set(ctx context.Context, key string, table *models.PriceTable) {
	raw, err := json.Marshal(table)
	if err != nil {
		return
	}
	rc.client.Set(ctx, key, raw, rc.ttl)
}

// Ping verifies Redis connectivity
func (rc *RedisCache) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
