package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range []string{"ATLAS_DSN", "REDIS_URL", "REST_PORT", "WS_PORT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.RESTPort != "8080" || cfg.Server.WSPort != "8081" {
		t.Errorf("ports = %s/%s", cfg.Server.RESTPort, cfg.Server.WSPort)
	}
	if cfg.Redis.URL != "redis://localhost:6379" || cfg.Redis.CacheTTL != 24*time.Hour {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Ingest.AliasesPath != "data/aliases.yaml" || cfg.Ingest.BrowserTimeout != time.Minute {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.PollInterval != time.Minute || cfg.Scheduler.MaxAttempts != 180 {
		t.Errorf("scheduler = %+v", cfg.Scheduler)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "courtside.yaml")
	body := `
server:
  rest_port: "9000"
redis:
  url: "redis://cache:6379/2"
  cache_ttl: 90s
ingest:
  all_players: true
  browser_timeout: 2m
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.RESTPort != "9000" || cfg.Server.WSPort != "8081" {
		t.Errorf("ports = %s/%s", cfg.Server.RESTPort, cfg.Server.WSPort)
	}
	if cfg.Redis.URL != "redis://cache:6379/2" || cfg.Redis.CacheTTL != 90*time.Second {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if !cfg.Ingest.AllPlayers || cfg.Ingest.BrowserTimeout != 2*time.Minute {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COURTSIDE_REDIS_URL", "redis://prefixed:6379")
	t.Setenv("COURTSIDE_LOG_FORMAT", "json")
	t.Setenv("REST_PORT", "7070")
	t.Setenv("ATLAS_DSN", "postgres://legacy")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Redis.URL != "redis://prefixed:6379" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
	if cfg.Server.RESTPort != "7070" || cfg.Database.DSN != "postgres://legacy" {
		t.Errorf("legacy overrides = %s %s", cfg.Server.RESTPort, cfg.Database.DSN)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil for a missing explicit file")
	}
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, key := range []string{"server.rest_port", "database.dsn", "redis.url", "ingest.aliases_path"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}
