package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/risk-tracker/internal/config"
)

func factoryConfig(dir string) *config.Config {
	return &config.Config{
		DataSource: config.DataSourceConfig{
			Provider:     "csv",
			CSVDir:       dir,
			CacheBackend: "memory",
			CacheMaxSize: 10,
		},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestFactoryCreateCSVWithoutCache(t *testing.T) {
	f := NewFactory(factoryConfig(t.TempDir()), quietLogger())
	defer f.Close()

	source, err := f.Create(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &InstrumentedSource{}, source)
	assert.Equal(t, "csv", source.Name())
}

func TestFactoryCreateWithMemoryCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SPY.csv"), []byte(spyCSV), 0o644))

	cfg := factoryConfig(dir)
	cfg.DataSource.CacheTTLSeconds = 60
	f := NewFactory(cfg, quietLogger())
	defer f.Close()

	source, err := f.Create(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, source)

	table, err := source.FetchPrices(context.Background(), []string{"SPY"}, day(1), day(10))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Rows())
}

func TestFactoryCreateWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := factoryConfig(t.TempDir())
	cfg.DataSource.CacheTTLSeconds = 60
	cfg.DataSource.CacheBackend = "redis"
	cfg.DataSource.RedisAddr = mr.Addr()

	f := NewFactory(cfg, quietLogger())
	source, err := f.Create(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, source)
	assert.Contains(t, f.Pingers(), "redis")

	require.NoError(t, f.Close())
	assert.Empty(t, f.Pingers())
}

func TestFactoryRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := factoryConfig(t.TempDir())
	cfg.DataSource.CacheTTLSeconds = 60
	cfg.DataSource.CacheBackend = "redis"
	cfg.DataSource.RedisAddr = addr

	_, err := NewFactory(cfg, quietLogger()).Create(context.Background())
	assert.Error(t, err)
}

func TestFactoryUnknownProvider(t *testing.T) {
	cfg := factoryConfig(t.TempDir())
	cfg.DataSource.Provider = "bloomberg"

	_, err := NewFactory(cfg, quietLogger()).Create(context.Background())
	assert.ErrorContains(t, err, "unknown data source type")
}

func TestFactoryCSVRequiresDir(t *testing.T) {
	cfg := factoryConfig("")
	_, err := NewFactory(cfg, quietLogger()).Create(context.Background())
	assert.ErrorContains(t, err, "csv_dir")
}
