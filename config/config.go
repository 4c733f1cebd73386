package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pichpich13/user-dashboard/internal/usecase"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Input         InputConfig
	OpenFoodFacts OpenFoodFactsConfig
	Fetch         FetchConfig
	Aggregation   AggregationConfig
	Cache         CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// InputConfig points at the barcode list
type InputConfig struct {
	Path string `mapstructure:"path"`
}

// OpenFoodFactsConfig holds product API configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"` // 0 keeps the transport default
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// FetchConfig holds lookup dispatch configuration
type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"` // 1 = sequential
}

// AggregationConfig holds the summary cleaning policies
type AggregationConfig struct {
	MissingScore         string `mapstructure:"missing_score"` // "zero" or "exclude"
	ExcludeFailedLookups bool   `mapstructure:"exclude_failed_lookups"`
}

// CacheConfig holds report cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ecolens/")

	v.SetEnvPrefix("ECOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports KEY=VALUE lines from ./.env without overriding the environment
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Input defaults
	v.SetDefault("input.path", "barcodes.json")

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "UserDashboard/1.0")
	v.SetDefault("openfoodfacts.request_timeout", "0s")
	v.SetDefault("openfoodfacts.requests_per_second", 0)
	v.SetDefault("openfoodfacts.burst", 1)

	// Fetch defaults
	v.SetDefault("fetch.concurrency", 1)

	// Aggregation defaults
	v.SetDefault("aggregation.missing_score", "zero")
	v.SetDefault("aggregation.exclude_failed_lookups", true)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Input.Path == "" {
		return fmt.Errorf("barcode input path is required (set ECOLENS_INPUT_PATH)")
	}
	if config.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got: %d", config.Fetch.Concurrency)
	}
	if _, err := usecase.ParseMissingScorePolicy(config.Aggregation.MissingScore); err != nil {
		return err
	}
	if config.OpenFoodFacts.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got: %s", config.OpenFoodFacts.RequestTimeout)
	}
	if config.OpenFoodFacts.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got: %v", config.OpenFoodFacts.RequestsPerSecond)
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}
	return nil
}
