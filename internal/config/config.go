// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"os"
	"time"
)

// Config captures runtime configuration values for the service.
type Config struct {
	HTTPAddress     string
	MongoURI        string
	MongoDatabase   string
	StoreDriver     string // "mongo" or "memory"
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads environment variables into Config, applying sensible defaults
// for local dev.
func Load() Config {
	return Config{
		HTTPAddress:     getEnv("HTTP_ADDRESS", ":3000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "exercise_tracker"),
		StoreDriver:     getEnv("STORE_DRIVER", "mongo"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
