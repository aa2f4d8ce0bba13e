package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Database configuration
	DatabaseURL string

	// Application settings
	RequestTimeout time.Duration

	// Pagination defaults
	DefaultPageSize int
	MaxPageSize     int

	// Migration RPC configuration — the endpoint accepting a graduated
	// curve's MigrationIntent (internal/collaborators.PoolMigrationClient).
	MigrationRPCURL     string
	MigrationRPCTimeout time.Duration

	// Default fee-schedule values loaded from the environment. The
	// create_curve handler does not read them; a request's fee_schedule
	// is used as sent.
	DefaultBaseFeeBps uint64
	DefaultCreatorBps uint64
	DefaultL1Bps      uint64
	DefaultL2Bps      uint64
	DefaultL3Bps      uint64

	// RateLimitPerMinute bounds create_curve and swap requests per source
	// IP; preview and read routes are not rate-limited.
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RequestTimeout:      time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		DefaultPageSize:     getEnvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:         getEnvInt("MAX_PAGE_SIZE", 100),
		MigrationRPCURL:     getEnv("MIGRATION_RPC_URL", "http://localhost:8082/migrate"),
		MigrationRPCTimeout: time.Duration(getEnvInt("MIGRATION_RPC_TIMEOUT_SECONDS", 30)) * time.Second,
		DefaultBaseFeeBps:   uint64(getEnvInt("DEFAULT_BASE_FEE_BPS", 150)),
		DefaultCreatorBps:   uint64(getEnvInt("DEFAULT_CREATOR_BPS", 50)),
		DefaultL1Bps:        uint64(getEnvInt("DEFAULT_L1_BPS", 30)),
		DefaultL2Bps:        uint64(getEnvInt("DEFAULT_L2_BPS", 3)),
		DefaultL3Bps:        uint64(getEnvInt("DEFAULT_L3_BPS", 2)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MigrationRPCURL == "" {
		return fmt.Errorf("MIGRATION_RPC_URL is required")
	}
	if c.DefaultBaseFeeBps == 0 {
		return fmt.Errorf("DEFAULT_BASE_FEE_BPS must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
