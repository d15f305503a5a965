package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cleanupEnv := func() {
		os.Unsetenv("MESSLENS_SERVER_PORT")
		os.Unsetenv("MESSLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("MESSLENS_REFERENCE_PATH")
		os.Unsetenv("MESSLENS_ANALYSIS_DEFAULT_WINDOW")
		os.Unsetenv("MESSLENS_ANALYSIS_CACHE_TTL")
		os.Unsetenv("MESSLENS_MATCHING_STRATEGY")
		os.Unsetenv("MESSLENS_STORAGE_PATH")
		os.Unsetenv("MESSLENS_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Reference.Path != "data/nutrition_reference_clean.csv" {
			t.Errorf("Reference.Path = %s, want data/nutrition_reference_clean.csv", cfg.Reference.Path)
		}
		if cfg.Analysis.DefaultWindow != "week" {
			t.Errorf("Analysis.DefaultWindow = %s, want week", cfg.Analysis.DefaultWindow)
		}
		if cfg.Analysis.CacheTTL != time.Hour {
			t.Errorf("Analysis.CacheTTL = %v, want 1h", cfg.Analysis.CacheTTL)
		}
		if cfg.Matching.Strategy != "substring" {
			t.Errorf("Matching.Strategy = %s, want substring", cfg.Matching.Strategy)
		}
		if cfg.Storage.Driver != "sqlite" {
			t.Errorf("Storage.Driver = %s, want sqlite", cfg.Storage.Driver)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MESSLENS_SERVER_PORT", "9090")
		os.Setenv("MESSLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("MESSLENS_REFERENCE_PATH", "/srv/reference.csv")
		os.Setenv("MESSLENS_ANALYSIS_DEFAULT_WINDOW", "month")
		os.Setenv("MESSLENS_ANALYSIS_CACHE_TTL", "15m")
		os.Setenv("MESSLENS_MATCHING_STRATEGY", "token")
		os.Setenv("MESSLENS_STORAGE_PATH", "/tmp/runs.db")
		os.Setenv("MESSLENS_RATELIMIT_PER_IP", "20")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Reference.Path != "/srv/reference.csv" {
			t.Errorf("Reference.Path = %s, want /srv/reference.csv", cfg.Reference.Path)
		}
		if cfg.Analysis.DefaultWindow != "month" {
			t.Errorf("Analysis.DefaultWindow = %s, want month", cfg.Analysis.DefaultWindow)
		}
		if cfg.Analysis.CacheTTL != 15*time.Minute {
			t.Errorf("Analysis.CacheTTL = %v, want 15m", cfg.Analysis.CacheTTL)
		}
		if cfg.Matching.Strategy != "token" {
			t.Errorf("Matching.Strategy = %s, want token", cfg.Matching.Strategy)
		}
		if cfg.Storage.Path != "/tmp/runs.db" {
			t.Errorf("Storage.Path = %s, want /tmp/runs.db", cfg.Storage.Path)
		}
		if cfg.RateLimit.PerIP != 20 {
			t.Errorf("RateLimit.PerIP = %d, want 20", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation for unknown default window", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MESSLENS_ANALYSIS_DEFAULT_WINDOW", "fortnight")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for unknown window")
		}
	})

	t.Run("fails validation for unknown matching strategy", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MESSLENS_MATCHING_STRATEGY", "phonetic")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for unknown strategy")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env is missing", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		envContent := `
# reference table for local runs
MESSLENS_TEST_ONE=value1

MESSLENS_TEST_TWO=value2
# MESSLENS_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("MESSLENS_TEST_ONE")
		os.Unsetenv("MESSLENS_TEST_TWO")
		os.Unsetenv("MESSLENS_TEST_COMMENTED")
		defer func() {
			os.Unsetenv("MESSLENS_TEST_ONE")
			os.Unsetenv("MESSLENS_TEST_TWO")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("MESSLENS_TEST_ONE") != "value1" {
			t.Errorf("MESSLENS_TEST_ONE not loaded correctly")
		}
		if os.Getenv("MESSLENS_TEST_TWO") != "value2" {
			t.Errorf("MESSLENS_TEST_TWO not loaded correctly")
		}
		if os.Getenv("MESSLENS_TEST_COMMENTED") != "" {
			t.Errorf("MESSLENS_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		os.Setenv("MESSLENS_TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("MESSLENS_TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("MESSLENS_TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("MESSLENS_TEST_OVERRIDE") != "existing-value" {
			t.Errorf("MESSLENS_TEST_OVERRIDE = %s, want existing-value", os.Getenv("MESSLENS_TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Reference: ReferenceConfig{Path: "data/nutrition_reference_clean.csv"},
		Analysis:  AnalysisConfig{DefaultWindow: "week", CacheTTL: time.Hour},
		Matching:  MatchingConfig{Strategy: "substring"},
		Storage:   StorageConfig{Driver: "sqlite", Path: "messlens.db"},
		RateLimit: RateLimitConfig{PerIP: 100},
	}
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fails when reference path is empty", func(c *Config) { c.Reference.Path = "" }},
		{"fails for unknown window", func(c *Config) { c.Analysis.DefaultWindow = "Week" }},
		{"fails for negative cache TTL", func(c *Config) { c.Analysis.CacheTTL = -time.Second }},
		{"fails for unknown strategy", func(c *Config) { c.Matching.Strategy = "" }},
		{"fails for unsupported storage driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"fails for sqlite without path", func(c *Config) { c.Storage.Path = "" }},
		{"fails for negative rate limit", func(c *Config) { c.RateLimit.PerIP = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate() error = nil, want error")
			}
		})
	}
}
