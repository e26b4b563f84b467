// Package config provides configuration management for the risk tracker.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// DataSourceConfig selects and tunes the price data provider
type DataSourceConfig struct {
	Provider             string  `mapstructure:"provider" validate:"required,provider"`
	BaseURL              string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey               string  `mapstructure:"api_key"`
	CSVDir               string  `mapstructure:"csv_dir"`
	TimeoutSeconds       int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts        int     `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
	RequestsPerSecond    float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst                int     `mapstructure:"burst" validate:"required,gt=0"`
	CacheBackend         string  `mapstructure:"cache_backend" validate:"omitempty,oneof=memory redis"`
	CacheTTLSeconds      int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize         int     `mapstructure:"cache_max_size" validate:"gte=0"`
	RedisAddr            string  `mapstructure:"redis_addr"`
	RedisDB              int     `mapstructure:"redis_db" validate:"gte=0"`
	CircuitBreakerErrors int     `mapstructure:"circuit_breaker_errors" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration.
// It is only required when the postgres provider is selected.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// AnalysisConfig holds defaults for the quantitative engine
type AnalysisConfig struct {
	RiskFreeRate             float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	ConfidenceLevel          float64 `mapstructure:"confidence_level" validate:"required,gt=0,lt=1"`
	Simulations              int     `mapstructure:"simulations" validate:"required,gte=100,lte=1000"`
	AggregateSimulations     int     `mapstructure:"aggregate_simulations" validate:"omitempty,gt=0"`
	Days                     int     `mapstructure:"days" validate:"required,gte=30,lte=365"`
	Seed                     uint64  `mapstructure:"seed"`
	OptimizerMaxIterations   int     `mapstructure:"optimizer_max_iterations" validate:"gte=0"`
	OptimizerWeightTolerance float64 `mapstructure:"optimizer_weight_tolerance" validate:"gte=0,lt=1"`
	DefaultStartDate         string  `mapstructure:"default_start_date" validate:"required,datetime=2006-01-02"`
	DefaultEndDate           string  `mapstructure:"default_end_date" validate:"required,datetime=2006-01-02"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// TracingConfig represents AWS X-Ray tracing configuration
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	DaemonAddr   string  `mapstructure:"daemon_addr"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns the connection URL for the database
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// DefaultDateRange returns the configured default analysis window
func (c *AnalysisConfig) DefaultDateRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.DefaultStartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid default_start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.DefaultEndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid default_end_date: %w", err)
	}
	return start, end, nil
}

// Timeout returns the provider request timeout
func (d *DataSourceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// CacheTTL returns the price cache expiry
func (d *DataSourceConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSeconds) * time.Second
}
