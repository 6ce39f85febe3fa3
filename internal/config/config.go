// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/veylab/relaymeter/internal/models"
)

// Default values
const (
	defaultRefreshInterval = 60 * time.Second
)

// Config holds the application configuration.
type Config struct {
	ProvidersPath   string
	BaseURLOverride string
	RefreshInterval time.Duration
	DefaultPeriod   models.Period
	Debug           bool
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		ProvidersPath:   getEnvString("RELAYMETER_PROVIDERS_PATH", getDefaultProvidersPath()),
		BaseURLOverride: getEnvString("RELAYMETER_BASE_URL", ""),
		RefreshInterval: getEnvDuration("RELAYMETER_REFRESH_INTERVAL", defaultRefreshInterval),
		DefaultPeriod:   getEnvPeriod("RELAYMETER_PERIOD", models.PeriodDaily),
		Debug:           getEnvBool("RELAYMETER_DEBUG", false),
	}

	if err := ensureDir(filepath.Dir(cfg.ProvidersPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "relaymeter", ".env"),
			filepath.Join(home, ".relaymeter", ".env"),
		)
	}

	return paths
}

// getDefaultProvidersPath returns the default path of the provider
// switcher's configuration file.
func getDefaultProvidersPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "providers.json"
	}
	return filepath.Join(home, ".config", "relaymeter", "providers.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the
// default. Accepts values like "30s", "1m", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvPeriod retrieves a usage period, falling back to the default for
// anything that is not a known period name.
func getEnvPeriod(key string, defaultValue models.Period) models.Period {
	switch models.Period(os.Getenv(key)) {
	case models.PeriodDaily:
		return models.PeriodDaily
	case models.PeriodMonthly:
		return models.PeriodMonthly
	default:
		return defaultValue
	}
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
