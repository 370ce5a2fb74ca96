// Package config loads the service configuration from a YAML file with
// environment overrides for deployment-specific values.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir holds the local JSON collections.
	DataDir string `yaml:"data_dir"`

	// RedisURL enables cross-instance change feeds and event delivery. When
	// empty, messaging runs over an in-process channel and changes are only
	// visible locally.
	RedisURL string `yaml:"redis_url"`

	// PostgresURL enables the cloud backend: the audit log, the cloud
	// repositories and the /migrate endpoint. When empty the service runs
	// purely on the local store.
	PostgresURL string `yaml:"postgres_url"`

	// StatusSyncCron schedules the derived-status reconciliation.
	StatusSyncCron string `yaml:"status_sync_cron"`

	// OverdueCheckCron schedules the overdue-invoice sweep.
	OverdueCheckCron string `yaml:"overdue_check_cron"`

	// UrgentLimit caps the default urgent-events list size.
	UrgentLimit int `yaml:"urgent_limit"`

	// OverdueAfterDays is how long an invoice may stay unpaid before the
	// overdue sweep flags it.
	OverdueAfterDays int `yaml:"overdue_after_days"`

	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           ":8080",
		DataDir:          "data",
		StatusSyncCron:   "* * * * *",
		OverdueCheckCron: "0 * * * *",
		UrgentLimit:      3,
		OverdueAfterDays: 30,
		LogLevel:         "info",
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.StatusSyncCron == "" {
		c.StatusSyncCron = "* * * * *"
	}
	if c.OverdueCheckCron == "" {
		c.OverdueCheckCron = "0 * * * *"
	}
	if c.UrgentLimit <= 0 {
		c.UrgentLimit = 3
	}
	if c.OverdueAfterDays <= 0 {
		c.OverdueAfterDays = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// applyEnv layers environment variables over the file values. Connection
// strings in particular usually arrive through the environment rather than
// the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.PostgresURL = v
	}
	if v := os.Getenv("STATUS_SYNC_CRON"); v != "" {
		c.StatusSyncCron = v
	}
	if v := os.Getenv("OVERDUE_CHECK_CRON"); v != "" {
		c.OverdueCheckCron = v
	}
	if v := os.Getenv("URGENT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UrgentLimit = n
		}
	}
	if v := os.Getenv("OVERDUE_AFTER_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OverdueAfterDays = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults are written there for the next run. Environment variables win
// over file values either way.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.applyEnv()

	return &cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory when
// needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".atelier-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
