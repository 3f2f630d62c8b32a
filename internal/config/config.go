package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	AnalyticsTimezone    string
	AnalyticsFlushEvery  time.Duration
	AnalyticsSaveTimeout time.Duration

	RateLimitGlobal time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AnalyticsTimezone: getEnv("ANALYTICS_TIMEZONE", "UTC"),
	}

	// Parsing durations
	var err error
	cfg.AnalyticsFlushEvery, err = parseDuration(getEnv("ANALYTICS_FLUSH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_FLUSH_INTERVAL: %w", err)
	}
	cfg.AnalyticsSaveTimeout, err = parseDuration(getEnv("ANALYTICS_PERSIST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_PERSIST_TIMEOUT: %w", err)
	}
	cfg.RateLimitGlobal, err = parseDuration(getEnv("RATE_LIMIT_GLOBAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}

	return cfg, nil
}

// Location resolves the analytics timezone, falling back to UTC when the
// configured name cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AnalyticsTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
