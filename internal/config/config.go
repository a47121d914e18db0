// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// Logging
	LogLevel string

	// Balances
	BalanceCacheTTL time.Duration

	// Alert thresholds
	AlertHighBalance float64
	AlertOwedToYou   float64
	AlertYouOwe      float64
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "./data/splitledger.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BalanceCacheTTL:  getEnvDuration("BALANCE_CACHE_TTL", time.Minute),
		AlertHighBalance: getEnvFloat("ALERT_HIGH_BALANCE", 100),
		AlertOwedToYou:   getEnvFloat("ALERT_OWED_TO_YOU", 50),
		AlertYouOwe:      getEnvFloat("ALERT_YOU_OWE", 50),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else if filepath.Ext(c.DBPath) == "" {
		errors = append(errors, fmt.Sprintf("database path '%s' must name a file", c.DBPath))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.BalanceCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid balance cache TTL %v: must be at least 1 second", c.BalanceCacheTTL))
	} else if c.BalanceCacheTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid balance cache TTL %v: must be at most 1 hour", c.BalanceCacheTTL))
	}

	for _, th := range []struct {
		name  string
		value float64
	}{
		{"high balance", c.AlertHighBalance},
		{"owed to you", c.AlertOwedToYou},
		{"you owe", c.AlertYouOwe},
	} {
		if th.value <= 0 {
			errors = append(errors, fmt.Sprintf("invalid %s alert threshold %.2f: must be positive", th.name, th.value))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
