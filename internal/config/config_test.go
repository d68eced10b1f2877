package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "tradesim-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
server:
  base_url: "http://localhost:5000"
  metrics_addr: "localhost:9200"
user:
  id: "trader-1"
sync:
  tick_interval: 10s
  refresh_interval: 1m
  history_days: 90
market:
  competitors: ["SPLK", "NEWR"]
storage:
  cache_path: "/tmp/tradesim-cache.db"
logging:
  level: "debug"
  format: "text"
`)

	// Clear any environment overrides that might interfere.
	for _, k := range []string{"TRADESIM_BASE_URL", "TRADESIM_USER_ID", "TRADESIM_TICK_INTERVAL", "LOG_LEVEL"} {
		os.Unsetenv(k)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q, want http://localhost:5000", cfg.Server.BaseURL)
	}
	if cfg.User.ID != "trader-1" {
		t.Errorf("User.ID = %q, want trader-1", cfg.User.ID)
	}
	if cfg.Sync.TickInterval.Std() != 10*time.Second {
		t.Errorf("TickInterval = %v, want 10s", cfg.Sync.TickInterval)
	}
	if cfg.Sync.HistoryDays != 90 {
		t.Errorf("HistoryDays = %d, want 90", cfg.Sync.HistoryDays)
	}
	if len(cfg.Market.Competitors) != 2 || cfg.Market.Competitors[0] != "SPLK" {
		t.Errorf("Competitors = %v, want [SPLK NEWR]", cfg.Market.Competitors)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
}

func TestLoadDefaultsFill(t *testing.T) {
	path := writeTempConfig(t, `
user:
  id: "trader-2"
`)

	os.Unsetenv("TRADESIM_BASE_URL")
	os.Unsetenv("TRADESIM_TICK_INTERVAL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// Unspecified sections keep their defaults.
	if cfg.Server.BaseURL == "" {
		t.Error("BaseURL default was not applied")
	}
	if cfg.Sync.TickInterval.Std() != 5*time.Second {
		t.Errorf("TickInterval = %v, want default 5s", cfg.Sync.TickInterval)
	}
	if cfg.User.ID != "trader-2" {
		t.Errorf("User.ID = %q, want trader-2", cfg.User.ID)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
server:
  base_url: "http://localhost:5000"
`)

	t.Setenv("TRADESIM_BASE_URL", "http://example.com:9999")
	t.Setenv("TRADESIM_USER_ID", "override-user")
	t.Setenv("TRADESIM_TICK_INTERVAL", "42s")
	t.Setenv("TRADESIM_HISTORY_DAYS", "90")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://example.com:9999" {
		t.Errorf("BaseURL = %q, want env override", cfg.Server.BaseURL)
	}
	if cfg.User.ID != "override-user" {
		t.Errorf("User.ID = %q, want override-user", cfg.User.ID)
	}
	if cfg.Sync.TickInterval.Std() != 42*time.Second {
		t.Errorf("TickInterval = %v, want 42s", cfg.Sync.TickInterval)
	}
	if cfg.Sync.HistoryDays != 90 {
		t.Errorf("HistoryDays = %d, want 90", cfg.Sync.HistoryDays)
	}
}
