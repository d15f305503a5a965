package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Reference ReferenceConfig
	Analysis  AnalysisConfig
	Matching  MatchingConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ReferenceConfig points at the prepared nutrition reference table
type ReferenceConfig struct {
	Path string `mapstructure:"path"`
}

// AnalysisConfig holds analysis defaults
type AnalysisConfig struct {
	DefaultWindow string        `mapstructure:"default_window"` // "day", "week" or "month"
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// MatchingConfig selects and tunes the dish matcher
type MatchingConfig struct {
	Strategy               string  `mapstructure:"strategy"` // "substring" or "token"
	MinConfidenceThreshold float64 `mapstructure:"min_confidence_threshold"`
	EnableFuzzyMatching    bool    `mapstructure:"enable_fuzzy_matching"`
	EnableDebugLogging     bool    `mapstructure:"enable_debug_logging"`
}

// StorageConfig holds run history storage configuration
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite"
	Path   string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/messlens/")

	v.SetEnvPrefix("MESSLENS")
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

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment take precedence.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("reference.path", "data/nutrition_reference_clean.csv")

	v.SetDefault("analysis.default_window", "week")
	v.SetDefault("analysis.cache_ttl", "1h")

	v.SetDefault("matching.strategy", "substring")
	v.SetDefault("matching.min_confidence_threshold", 40.0)
	v.SetDefault("matching.enable_fuzzy_matching", true)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "messlens.db")

	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Reference.Path == "" {
		return fmt.Errorf("reference table path is required (set MESSLENS_REFERENCE_PATH)")
	}

	switch config.Analysis.DefaultWindow {
	case "day", "week", "month":
	default:
		return fmt.Errorf("default window must be 'day', 'week' or 'month', got: %s", config.Analysis.DefaultWindow)
	}

	if config.Analysis.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got: %s", config.Analysis.CacheTTL)
	}

	if config.Matching.Strategy != "substring" && config.Matching.Strategy != "token" {
		return fmt.Errorf("matching strategy must be 'substring' or 'token', got: %s", config.Matching.Strategy)
	}

	if config.Storage.Driver != "sqlite" {
		return fmt.Errorf("storage driver must be 'sqlite', got: %s", config.Storage.Driver)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage driver is 'sqlite'")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
