// Package config loads the dashboard configuration from a YAML file and
// applies environment variable overrides.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the dashboard client.
type Config struct {
	Backend Backend `yaml:"backend"`
	Storage Storage `yaml:"storage"`
	Refresh Refresh `yaml:"refresh"`
	Logging Logging `yaml:"logging"`
	Alpaca  Alpaca  `yaml:"alpaca"`
}

// Backend holds the trading backend's HTTP endpoint configuration.
type Backend struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP request timeout as a duration.
func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Storage holds paths for local persistence.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Refresh controls the polling loop.
type Refresh struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Interval returns the refresh cadence as a duration.
func (r Refresh) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// Logging configures the application logger. The TUI owns the terminal, so
// logs always go to a rotating file.
type Logging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Alpaca holds optional credentials for mirroring manual symbols to an
// Alpaca watchlist. Empty keys disable the mirror.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Watchlist string `yaml:"watchlist"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Backend: Backend{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 15,
		},
		Storage: Storage{
			SQLitePath: "dashboard.db",
		},
		Refresh: Refresh{
			IntervalSeconds: 30,
		},
		Logging: Logging{
			Level:      "info",
			File:       "logs/dashboard.log",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Alpaca: Alpaca{
			Watchlist: "dashboard",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config, and applies environment variable overrides. A missing file is not
// an error: defaults are returned with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if uerr := yaml.Unmarshal(data, cfg); uerr != nil {
			return nil, uerr
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 30
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
