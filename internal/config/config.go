package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Duration wraps time.Duration so intervals can be written as "5s" or
// "1m" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level configuration for the tradesim client.
type Config struct {
	Server  Server  `yaml:"server"`
	User    User    `yaml:"user"`
	Sync    Sync    `yaml:"sync"`
	Market  Market  `yaml:"market"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Server holds the remote trading service endpoint and the local
// metrics listener.
type Server struct {
	BaseURL     string `yaml:"base_url"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// User identifies the account all portfolio and trade calls act on.
type User struct {
	ID string `yaml:"id"`
}

// Sync controls the refresh cadence and history window.
type Sync struct {
	TickInterval    Duration `yaml:"tick_interval"`
	RefreshInterval Duration `yaml:"refresh_interval"`
	HistoryDays     int      `yaml:"history_days"`
}

// Market holds display grouping: symbols flagged as competitors are
// rendered in their own section of the dashboard.
type Market struct {
	Competitors []string `yaml:"competitors"`
}

// Storage holds the path of the local snapshot cache. Empty disables
// caching.
type Storage struct {
	CachePath string `yaml:"cache_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a configuration with workable defaults for a locally
// running service.
func Default() *Config {
	return &Config{
		Server: Server{
			BaseURL:     "http://localhost:8081",
			MetricsAddr: "localhost:9102",
		},
		User: User{ID: "demo"},
		Sync: Sync{
			TickInterval:    Duration(5 * time.Second),
			RefreshInterval: Duration(30 * time.Second),
			HistoryDays:     30,
		},
		Market: Market{
			Competitors: []string{"SPLK", "DT", "NEWR", "ESTC"},
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it
// over the defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADESIM_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TRADESIM_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("TRADESIM_USER_ID"); v != "" {
		cfg.User.ID = v
	}
	if v := os.Getenv("TRADESIM_CACHE_PATH"); v != "" {
		cfg.Storage.CachePath = v
	}
	if v := os.Getenv("TRADESIM_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sync.TickInterval = Duration(d)
		}
	}
	if v := os.Getenv("TRADESIM_HISTORY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sync.HistoryDays = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
