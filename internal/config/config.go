// Package config loads server settings from the environment, with an
// optional .env file for local development. Database and cache settings are
// read by their own packages.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the HTTP server and auth settings
type Config struct {
	Host        string
	Port        string
	JWTSecret   string
	TokenTTL    time.Duration
	RateLimit   int
	RateWindow  time.Duration
	Environment string
}

// Load reads config from the environment. A missing .env file is not an
// error outside local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-only-secret"),
		TokenTTL:    getDuration("JWT_TTL", 24*time.Hour),
		RateLimit:   getInt("RATE_LIMIT", 120),
		RateWindow:  getDuration("RATE_WINDOW", time.Minute),
		Environment: getEnv("APP_ENV", "development"),
	}
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
