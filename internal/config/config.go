package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBDatabase string

	RedisURL string

	// GuestCookieMaxAge controls how long the guest_id cookie persists.
	GuestCookieMaxAge time.Duration
	// TokenLifetime controls personal access token expiry.
	TokenLifetime time.Duration
	// RecomputeInterval controls the counter reconciliation job cadence.
	RecomputeInterval time.Duration

	CookieSecure bool
}

func Load() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8000"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvInt("DB_PORT", 3306),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBDatabase:        getEnv("DB_DATABASE", "journalclub_db"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		GuestCookieMaxAge: getEnvDuration("GUEST_COOKIE_MAX_AGE", 365*24*time.Hour),
		TokenLifetime:     getEnvDuration("TOKEN_LIFETIME", 30*24*time.Hour),
		RecomputeInterval: getEnvDuration("COUNTER_RECOMPUTE_INTERVAL", time.Hour),
		CookieSecure:      getEnv("COOKIE_SECURE", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
