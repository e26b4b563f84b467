package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("provider", validateProvider)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateProvider(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "yahoo", "csv", "postgres":
		return true
	default:
		return false
	}
}

func validateCrossField(cfg *Config) error {
	start, end, err := cfg.Analysis.DefaultDateRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("analysis default_start_date must be before default_end_date")
	}

	switch cfg.DataSource.Provider {
	case "yahoo":
		if cfg.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the yahoo provider")
		}
	case "csv":
		if cfg.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required for the postgres provider")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	if cfg.DataSource.CacheBackend == "redis" && cfg.DataSource.RedisAddr == "" {
		return fmt.Errorf("data_source.redis_addr is required for the redis cache backend")
	}

	if cfg.DataSource.CacheTTLSeconds > 0 && cfg.DataSource.CacheMaxSize == 0 {
		return fmt.Errorf("cache_max_size must be set when cache_ttl_seconds is enabled")
	}

	if cfg.IsProduction() && cfg.DataSource.Provider == "postgres" && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/'")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.DaemonAddr == "" {
		return fmt.Errorf("tracing.daemon_addr is required when tracing is enabled")
	}

	return nil
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "provider":
			fmt.Fprintf(&b, "- Field '%s' must be one of: yahoo, csv, postgres\n", field)
		case "datetime":
			fmt.Fprintf(&b, "- Field '%s' must be a YYYY-MM-DD date, got '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if isTestCredential(cfg.DataSource.APIKey) {
			return fmt.Errorf("production environment should not use a placeholder data source api key")
		}
		if cfg.DataSource.Provider == "postgres" && isTestCredential(cfg.Database.Password) {
			return fmt.Errorf("production environment should not use a placeholder database password")
		}
	}

	return nil
}

func isTestCredential(credential string) bool {
	if credential == "" {
		return false
	}
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
