package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/risk-tracker/internal/models"
)

type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	args := m.Called(ctx, symbols, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceTable), args.Error(1)
}

func (m *MockPriceSource) Name() string {
	return "mock"
}

func sampleTable() *models.PriceTable {
	return &models.PriceTable{
		Symbols: []string{"AAA", "BBB"},
		Dates:   []time.Time{day(2), day(3)},
		Prices:  [][]float64{{10, 20}, {11, 21}},
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("yahoo", []string{"AAPL", "MSFT"}, day(1), day(31))
	assert.Equal(t, "prices:yahoo:AAPL,MSFT:2024-01-01:2024-01-31", key)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, 2)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Set(ctx, "a", sampleTable())
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, sampleTable(), got)

	c.Set(ctx, "b", sampleTable())
	c.Set(ctx, "c", sampleTable())
	assert.Equal(t, 2, c.ItemCount())
	_, ok = c.Get(ctx, "c")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, time.Minute)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	_, ok := c.Get(ctx, "prices:test")
	assert.False(t, ok)

	c.Set(ctx, "prices:test", sampleTable())
	got, ok := c.Get(ctx, "prices:test")
	require.True(t, ok)
	assert.Equal(t, []string{"AAA", "BBB"}, got.Symbols)
	assert.Equal(t, [][]float64{{10, 20}, {11, 21}}, got.Prices)
	assert.True(t, got.Dates[0].Equal(day(2)))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "prices:test")
	assert.False(t, ok)
}

func TestRedisCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("prices:bad", "not json"))

	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer c.Close()

	_, ok := c.Get(ctx, "prices:bad")
	assert.False(t, ok)
}

func TestCachedSourceServesRepeatRequestsFromCache(t *testing.T) {
	ctx := context.Background()
	symbols := []string{"AAA", "BBB"}

	source := new(MockPriceSource)
	source.On("FetchPrices", mock.Anything, symbols, day(1), day(10)).Return(sampleTable(), nil).Once()

	cached := NewCachedSource(source, NewMemoryCache(time.Minute, 0), nil)
	assert.Equal(t, "mock", cached.Name())

	first, err := cached.FetchPrices(ctx, symbols, day(1), day(10))
	require.NoError(t, err)
	second, err := cached.FetchPrices(ctx, symbols, day(1), day(10))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	source.AssertNumberOfCalls(t, "FetchPrices", 1)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	symbols := []string{"AAA"}
	fetchErr := NewDataSourceError("mock", ErrCodeNetworkError, "down", errors.New("timeout"))

	source := new(MockPriceSource)
	source.On("FetchPrices", mock.Anything, symbols, day(1), day(10)).Return(nil, fetchErr).Twice()

	cached := NewCachedSource(source, NewMemoryCache(time.Minute, 0), nil)
	_, err := cached.FetchPrices(ctx, symbols, day(1), day(10))
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	_, err = cached.FetchPrices(ctx, symbols, day(1), day(10))
	assert.Error(t, err)

	source.AssertExpectations(t)
}

func TestInstrumentedSourcePassesThrough(t *testing.T) {
	symbols := []string{"AAA", "BBB"}
	source := new(MockPriceSource)
	source.On("FetchPrices", mock.Anything, symbols, day(1), day(10)).Return(sampleTable(), nil)

	table, err := NewInstrumentedSource(source, nil).FetchPrices(context.Background(), symbols, day(1), day(10))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())
}
