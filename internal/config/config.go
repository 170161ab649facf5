// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the runs database (always absolute)
	ParametersFile   string // Optional JSON file overriding the built-in parameter table
	LogLevel         string
	Port             int
	DevMode          bool
	MCIterations     int    // Default Monte Carlo iteration count
	MCSeed           uint64 // Default Monte Carlo seed
	MCWorkers        int    // Worker goroutines for Monte Carlo (0 = NumCPU)
	SnapshotSchedule string // Cron spec for deterministic snapshots ("" disables)
	RunHistoryKeep   int    // Persisted run records to retain
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PREVENTSIM_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// An explicitly set empty schedule disables the snapshot job, so this
	// one distinguishes unset from empty
	schedule := "0 3 * * *"
	if v, ok := os.LookupEnv("SNAPSHOT_SCHEDULE"); ok {
		schedule = v
	}

	cfg := &Config{
		DataDir:          absDataDir,
		ParametersFile:   getEnv("PREVENTSIM_PARAMETERS_FILE", ""),
		Port:             getEnvAsInt("PREVENTSIM_PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MCIterations:     getEnvAsInt("MC_ITERATIONS", 10000),
		MCSeed:           uint64(getEnvAsInt("MC_SEED", 42)),
		MCWorkers:        getEnvAsInt("MC_WORKERS", 0),
		SnapshotSchedule: schedule,
		RunHistoryKeep:   getEnvAsInt("RUN_HISTORY_KEEP", 200),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.MCIterations <= 0 {
		return fmt.Errorf("MC_ITERATIONS must be positive, got %d", c.MCIterations)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PREVENTSIM_PORT out of range: %d", c.Port)
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
