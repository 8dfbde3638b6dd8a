package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SURGEOPS_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dashboard.RefreshInterval != 5*time.Second {
		t.Fatalf("expected 5s refresh, got %v", cfg.Dashboard.RefreshInterval)
	}
	if cfg.Dashboard.SurgeDecay != 15*time.Second {
		t.Fatalf("expected 15s surge decay, got %v", cfg.Dashboard.SurgeDecay)
	}
	th := cfg.Dashboard.Thresholds
	if th.RaiseWaiting != 8 || th.RaiseCritical != 2 || th.ClearWaiting != 5 || th.ClearCritical != 1 {
		t.Fatalf("unexpected thresholds %+v", th)
	}
	if !cfg.Dashboard.AutoOpenPlan {
		t.Fatalf("expected auto-open plan by default")
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("expected memory storage, got %s", cfg.Storage.Driver)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "surgeops.yaml")
	body := []byte(`
generator:
  seed: 42
  baseline: 70
dashboard:
  refreshInterval: 2s
  thresholds:
    raiseWaiting: 4
    raiseCritical: 2
    clearWaiting: 2
    clearCritical: 1
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SURGEOPS_REFRESH_INTERVAL", "1s")
	t.Setenv("SURGEOPS_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SURGEOPS_CACHE_ENABLED", "TRUE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Generator.Seed != 42 || cfg.Generator.Baseline != 70 {
		t.Fatalf("generator section not applied: %+v", cfg.Generator)
	}
	if cfg.Dashboard.RefreshInterval != time.Second {
		t.Fatalf("expected env override of refresh interval, got %v", cfg.Dashboard.RefreshInterval)
	}
	if cfg.Dashboard.Thresholds.RaiseWaiting != 4 {
		t.Fatalf("expected thresholds from file, got %+v", cfg.Dashboard.Thresholds)
	}
	if cfg.Dashboard.SurgeDecay != 15*time.Second {
		t.Fatalf("expected default surge decay to survive partial file")
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Events.Brokers)
	}
	if !cfg.Cache.Enabled {
		t.Fatalf("expected cache enabled from env")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero refresh":       func(c *Config) { c.Dashboard.RefreshInterval = 0 },
		"inverted threshold": func(c *Config) { c.Dashboard.Thresholds.ClearWaiting = 9 },
		"postgres no dsn":    func(c *Config) { c.Storage.Driver = "postgres" },
		"unknown driver":     func(c *Config) { c.Storage.Driver = "sqlite" },
		"unknown weather":    func(c *Config) { c.Weather.Provider = "metoffice" },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
