package config

import (
	"os"
	"time"
)

// Paging rules shared by every list/page endpoint.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// SweepInterval is how often the expiry job removes tryout chats whose
// soft TTL has passed.
const SweepInterval = 1 * time.Hour

// Config carries the process-level settings, sourced from the environment.
type Config struct {
	Port        string
	DatabaseDSN string
	RedisAddr   string
	RedisDB     int

	JWTSecret   string
	FrontendURL string
}

// Load reads the environment (godotenv is expected to have been applied by
// the caller) with local-development defaults.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseDSN: getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=aegischat port=5432 sslmode=disable"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     0,
		JWTSecret:   getenv("JWT_SECRET", "dev-only-secret"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5173"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
