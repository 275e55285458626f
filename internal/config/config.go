// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Optimizer tuning
	OptimizerStartPoints int
	OptimizerMaxIters    int
	OptimizerSeed        int64
	OptimizerWorkers     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		OptimizerStartPoints: getEnvAsInt("OPTIMIZER_START_POINTS", 0),
		OptimizerMaxIters:    getEnvAsInt("OPTIMIZER_MAX_ITERATIONS", 0),
		OptimizerSeed:        int64(getEnvAsInt("OPTIMIZER_SEED", 0)),
		OptimizerWorkers:     getEnvAsInt("OPTIMIZER_WORKERS", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.OptimizerStartPoints < 0 || c.OptimizerMaxIters < 0 || c.OptimizerWorkers < 0 {
		return fmt.Errorf("optimizer tuning values must be non-negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
