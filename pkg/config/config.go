// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Configuration is read once at
// startup and passed explicitly into store and service construction.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides
const (
	EnvDatabaseURI = "LINEAGE_DB_URI"
	EnvLogLevel    = "LINEAGE_LOG_LEVEL"
	EnvOplogPath   = "LINEAGE_OPLOG_PATH"
)

// Config holds all service configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	OperationLog OperationLogConfig `yaml:"operation_log"`
}

// DatabaseConfig configures the backing store.
type DatabaseConfig struct {
	// URI is the SQLite database path, or ":memory:" for an in-memory
	// database. A "file://" prefix is accepted and stripped.
	URI string `yaml:"uri"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// OperationLogConfig configures the operation record exporter.
type OperationLogConfig struct {
	// Path is the JSONL record file. Empty disables export.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() Config {
	return Config{
		Database: DatabaseConfig{URI: "lineage.db"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads configuration from path (skipped when empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURI); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvOplogPath); v != "" {
		c.OperationLog.Path = v
	}
}

// Validate checks the configuration for malformed values.
func (c *Config) Validate() error {
	uri := c.Database.URI
	if uri == "" {
		return fmt.Errorf("invalid config: database uri must not be empty")
	}
	if idx := strings.Index(uri, "://"); idx >= 0 && uri[:idx] != "file" {
		return fmt.Errorf("invalid config: unsupported database uri scheme %q", uri[:idx])
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// DatabasePath returns the database URI with any "file://" prefix removed,
// suitable for the SQLite driver.
func (c *Config) DatabasePath() string {
	return strings.TrimPrefix(c.Database.URI, "file://")
}

// SlogLevel maps the configured log level to its slog value. Validate
// guarantees the level is one of the known names.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
