package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config carries process-level settings for the payora service.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseDSN string

	// SeedDemoData loads a small demo portfolio on startup outside production.
	SeedDemoData bool

	// DefaultHorizonDays is used when a request does not specify a horizon.
	DefaultHorizonDays int

	// AnalyticsCacheTTL bounds how long a vendor scorecard may be reused
	// before it is recomputed.
	AnalyticsCacheTTL time.Duration
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment. A local .env file is applied
// first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment:        getEnv("PAYORA_ENV", "development"),
		HTTPAddr:           getEnv("PAYORA_HTTP_ADDR", ":8080"),
		DatabaseDSN:        getEnv("PAYORA_DATABASE_DSN", ""),
		SeedDemoData:       getEnvBool("PAYORA_SEED_DEMO_DATA", false),
		DefaultHorizonDays: getEnvInt("PAYORA_DEFAULT_HORIZON_DAYS", 30),
		AnalyticsCacheTTL:  getEnvDuration("PAYORA_ANALYTICS_CACHE_TTL", time.Minute),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
