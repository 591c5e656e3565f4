// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// QueueConfig provides settings for the durable queue orchestrator.
type QueueConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetQueueAttempts() int
	GetQueueBackoffBase() time.Duration
	GetQueueRetention() time.Duration
	GetStageConcurrency() int
	GetDiscoverConcurrency() int
	IsQueueEnabled() bool
}

// ProviderConfig provides settings for the places provider client.
type ProviderConfig interface {
	GetPlacesAPIKey() string
	GetPlacesBaseURL() string
	GetPlacesTimeout() time.Duration
	GetPlacesRequestsPerSecond() float64
}

// QuotaConfig provides per-tier quota settings.
type QuotaConfig interface {
	GetTierDailyLimits() map[string]int
	GetTierMaxResults() map[string]int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env          string
	HTTPAddr     string
	DatabaseURL  string
	CORSAllowAll bool
	CORSOrigins  []string

	RedisURL            string
	RedisTLSInsecure    bool
	QueueAttempts       int
	QueueBackoffBase    time.Duration
	QueueRetention      time.Duration
	StageConcurrency    int
	DiscoverConcurrency int

	PlacesAPIKey            string
	PlacesBaseURL           string
	PlacesTimeout           time.Duration
	PlacesRequestsPerSecond float64

	TierDailyLimits map[string]int
	TierMaxResults  map[string]int
}

// Load reads configuration from the environment, with .env as a convenience
// overlay for local development. Missing optional values fall back to defaults.
func Load() (*Config, error) {
	// Ignore error: .env is optional, real deployments use the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		CORSAllowAll: getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:  getEnvList("CORS_ORIGINS"),

		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    getEnvBool("REDIS_TLS_INSECURE", false),
		QueueAttempts:       getEnvInt("QUEUE_ATTEMPTS", 3),
		QueueBackoffBase:    getEnvDuration("QUEUE_BACKOFF_BASE", 2000*time.Millisecond),
		QueueRetention:      getEnvDuration("QUEUE_RETENTION", 24*time.Hour),
		StageConcurrency:    getEnvInt("QUEUE_STAGE_CONCURRENCY", 5),
		DiscoverConcurrency: getEnvInt("QUEUE_DISCOVER_CONCURRENCY", 3),

		PlacesAPIKey:            getEnv("PLACES_API_KEY", ""),
		PlacesBaseURL:           getEnv("PLACES_BASE_URL", "https://places.googleapis.com/v1"),
		PlacesTimeout:           getEnvDuration("PLACES_TIMEOUT", 10*time.Second),
		PlacesRequestsPerSecond: getEnvFloat("PLACES_REQUESTS_PER_SECOND", 5),

		TierDailyLimits: map[string]int{
			"free_trial": getEnvInt("QUOTA_DAILY_FREE_TRIAL", 3),
			"starter":    getEnvInt("QUOTA_DAILY_STARTER", 10),
			"growth":     getEnvInt("QUOTA_DAILY_GROWTH", 50),
			"scale":      getEnvInt("QUOTA_DAILY_SCALE", 200),
		},
		TierMaxResults: map[string]int{
			"free_trial": getEnvInt("QUOTA_MAX_RESULTS_FREE_TRIAL", 20),
			"starter":    getEnvInt("QUOTA_MAX_RESULTS_STARTER", 60),
			"growth":     getEnvInt("QUOTA_MAX_RESULTS_GROWTH", 120),
			"scale":      getEnvInt("QUOTA_MAX_RESULTS_SCALE", 200),
		},
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool          { return c.RedisTLSInsecure }
func (c *Config) GetQueueAttempts() int              { return c.QueueAttempts }
func (c *Config) GetQueueBackoffBase() time.Duration { return c.QueueBackoffBase }
func (c *Config) GetQueueRetention() time.Duration   { return c.QueueRetention }
func (c *Config) GetStageConcurrency() int           { return c.StageConcurrency }
func (c *Config) GetDiscoverConcurrency() int        { return c.DiscoverConcurrency }

// IsQueueEnabled reports whether a durable queue backend is configured.
// Without one, discovery falls back to synchronous in-process execution.
func (c *Config) IsQueueEnabled() bool { return strings.TrimSpace(c.RedisURL) != "" }

func (c *Config) GetPlacesAPIKey() string               { return c.PlacesAPIKey }
func (c *Config) GetPlacesBaseURL() string              { return c.PlacesBaseURL }
func (c *Config) GetPlacesTimeout() time.Duration       { return c.PlacesTimeout }
func (c *Config) GetPlacesRequestsPerSecond() float64   { return c.PlacesRequestsPerSecond }

func (c *Config) GetTierDailyLimits() map[string]int { return c.TierDailyLimits }
func (c *Config) GetTierMaxResults() map[string]int  { return c.TierMaxResults }

// =============================================================================
// Env Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
