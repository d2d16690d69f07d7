// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Watcher WatcherConfig
	Staging StagingConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds the paths to the player's persistent state.
type StorageConfig struct {
	// DatabasePath is the SQLite library snapshot.
	DatabasePath string
	// AudioRoot is the scoped-storage root the media catalog files under.
	AudioRoot string
	// LegacyRoot is the pre-scoped-storage fallback root. Optional.
	LegacyRoot string
	// CatalogPath is the on-disk media catalog index. Empty means in-memory.
	CatalogPath string
}

// WatcherConfig holds audio root watching configuration.
type WatcherConfig struct {
	// Enabled turns the audio root watcher on (default: true).
	Enabled bool
	// SettleDelay is how long a file must stay unchanged before it is
	// reported (default: 500ms).
	SettleDelay time.Duration
	// SweepInterval is how often stale pending catalog entries are
	// swept (default: 15m).
	SweepInterval time.Duration
	// PendingMaxAge is how long a reserved entry may stay pending
	// before the sweep removes it (default: 1h).
	PendingMaxAge time.Duration
}

// StagingConfig holds import staging configuration for the seeder.
type StagingConfig struct {
	// Path is the directory holding book-title_author-name staging
	// directories to import. Optional.
	Path string
	// Workers is the number of books imported concurrently (default: 4).
	Workers int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	databasePath := flag.String("database-path", "", "Path to the SQLite library snapshot")
	audioRoot := flag.String("audio-root", "", "Scoped-storage audio root")
	legacyRoot := flag.String("legacy-root", "", "Legacy direct-path audio root")
	catalogPath := flag.String("catalog-path", "", "Path to the media catalog index (empty: in-memory)")

	watcherEnabled := flag.String("watcher-enabled", "", "Watch the audio root for changes (default: true)")
	settleDelay := flag.String("settle-delay", "", "File settle delay before reporting (default: 500ms)")
	sweepInterval := flag.String("sweep-interval", "", "Stale pending entry sweep cadence (default: 15m)")
	pendingMaxAge := flag.String("pending-max-age", "", "Age before a pending entry is swept (default: 1h)")

	stagingPath := flag.String("staging-path", "", "Directory of staged books to import")
	stagingWorkers := flag.String("staging-workers", "", "Concurrent book imports (default: 4)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DatabasePath: getConfigValue(*databasePath, "DATABASE_PATH", ""),
			AudioRoot:    getConfigValue(*audioRoot, "AUDIO_ROOT", ""),
			LegacyRoot:   getConfigValue(*legacyRoot, "LEGACY_ROOT", ""),
			CatalogPath:  getConfigValue(*catalogPath, "CATALOG_PATH", ""),
		},
		Watcher: WatcherConfig{
			Enabled: getBoolConfigValue(*watcherEnabled, "WATCHER_ENABLED", true),
		},
		Staging: StagingConfig{
			Path:    getConfigValue(*stagingPath, "STAGING_PATH", ""),
			Workers: getIntConfigValue(*stagingWorkers, "STAGING_WORKERS", 4),
		},
	}

	var err error
	cfg.Watcher.SettleDelay, err = getDurationConfigValue(*settleDelay, "WATCHER_SETTLE_DELAY", "500ms")
	if err != nil {
		return nil, fmt.Errorf("invalid settle delay: %w", err)
	}
	cfg.Watcher.SweepInterval, err = getDurationConfigValue(*sweepInterval, "SWEEP_INTERVAL", "15m")
	if err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	cfg.Watcher.PendingMaxAge, err = getDurationConfigValue(*pendingMaxAge, "PENDING_MAX_AGE", "1h")
	if err != nil {
		return nil, fmt.Errorf("invalid pending max age: %w", err)
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DatabasePath == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if c.Storage.AudioRoot == "" {
		return errors.New("audio root cannot be empty after expansion")
	}

	if c.Staging.Workers < 1 {
		return fmt.Errorf("staging workers must be at least 1, got %d", c.Staging.Workers)
	}

	// LegacyRoot and CatalogPath can be empty: no legacy fallback, in-memory catalog.

	return nil
}

// expandStoragePaths expands ~ and makes every storage path absolute.
// DatabasePath and AudioRoot default under the user's home directory.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Storage.DatabasePath, err = expandPath(c.Storage.DatabasePath,
		filepath.Join(homeDir, "BookReader", "bookReaderDB.db"))
	if err != nil {
		return err
	}

	c.Storage.AudioRoot, err = expandPath(c.Storage.AudioRoot,
		filepath.Join(homeDir, "BookReader", "storage"))
	if err != nil {
		return err
	}

	if c.Storage.LegacyRoot != "" {
		c.Storage.LegacyRoot, err = expandPath(c.Storage.LegacyRoot, "")
		if err != nil {
			return err
		}
	}

	if c.Storage.CatalogPath != "" {
		c.Storage.CatalogPath, err = expandPath(c.Storage.CatalogPath, "")
		if err != nil {
			return err
		}
	}

	if c.Staging.Path != "" {
		c.Staging.Path, err = expandPath(c.Staging.Path, "")
		if err != nil {
			return err
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
