// Package config handles loading application configuration from environment variables.
// All settings have sensible defaults for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings loaded from environment variables.
type Config struct {
	Port          string
	DatabasePath  string
	JWTSecret     string
	TokenDuration time.Duration

	// Recommendation backend (OpenAI-compatible chat completions API).
	RecommendBaseURL string
	RecommendAPIKey  string
	PrimaryModel     string
	FallbackModel    string
	RecommendTimeout time.Duration

	// Catalog search backend.
	CatalogBaseURL      string
	CatalogTokenURL     string
	CatalogClientID     string
	CatalogClientSecret string
	CatalogTimeout      time.Duration

	// Resolver tuning.
	ResolveRatePerSec  float64
	ResolveMaxInFlight int

	// Pipeline defaults.
	DefaultLength int
	CacheTTL      time.Duration

	RateLimitPerMinute int
	CORSAllowedOrigins []string
	TrustedProxies     []string
}

// Load reads configuration from environment variables, using defaults where not set.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "./moodcraft.db"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"), // #nosec G101 -- intentional dev default
		TokenDuration: getDurationEnv("TOKEN_DURATION", 24*time.Hour),

		RecommendBaseURL: getEnv("RECOMMEND_BASE_URL", "https://api.openai.com/v1"),
		RecommendAPIKey:  getEnv("RECOMMEND_API_KEY", ""),
		PrimaryModel:     getEnv("RECOMMEND_PRIMARY_MODEL", "gpt-4o"),
		FallbackModel:    getEnv("RECOMMEND_FALLBACK_MODEL", "gpt-4o-mini"),
		RecommendTimeout: getDurationEnv("RECOMMEND_TIMEOUT", 30*time.Second),

		CatalogBaseURL:      getEnv("CATALOG_BASE_URL", "https://api.spotify.com/v1"),
		CatalogTokenURL:     getEnv("CATALOG_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		CatalogClientID:     getEnv("CATALOG_CLIENT_ID", ""),
		CatalogClientSecret: getEnv("CATALOG_CLIENT_SECRET", ""),
		CatalogTimeout:      getDurationEnv("CATALOG_TIMEOUT", 10*time.Second),

		ResolveRatePerSec:  getFloatEnv("RESOLVE_RATE_PER_SEC", 5),
		ResolveMaxInFlight: getIntEnv("RESOLVE_MAX_IN_FLIGHT", 3),

		DefaultLength: getIntEnv("DEFAULT_PLAYLIST_LENGTH", 10),
		CacheTTL:      getDurationEnv("CACHE_TTL", 30*time.Minute),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 10),
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		TrustedProxies:     getStringSliceEnv("TRUSTED_PROXIES"),
	}
}

func getStringSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
