package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  listen_addr: ":9090"
  cors_origins:
    - "https://dashboard.example.com"
storage:
  timescaledb:
    connection_string: "host=localhost dbname=solarvoyage"
cloudcover:
  cache_path: "/var/lib/solarvoyage/clouds.db"
  requests_per_minute: 10
`)

	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTP.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, expected :9090", cfg.HTTP.ListenAddr)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "https://dashboard.example.com" {
		t.Errorf("cors_origins = %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Storage.TimescaleDB == nil || cfg.Storage.TimescaleDB.ConnectionString != "host=localhost dbname=solarvoyage" {
		t.Errorf("timescaledb config = %+v", cfg.Storage.TimescaleDB)
	}
	if cfg.CloudCover.CachePath != "/var/lib/solarvoyage/clouds.db" {
		t.Errorf("cache_path = %q", cfg.CloudCover.CachePath)
	}
	if cfg.CloudCover.RequestsPerMinute != 10 {
		t.Errorf("requests_per_minute = %d, expected 10", cfg.CloudCover.RequestsPerMinute)
	}

	// Unset fields pick up defaults
	if cfg.HTTP.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read_timeout = %d, expected default %d", cfg.HTTP.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.CloudCover.APIEndpoint != DefaultCloudAPIEndpoint {
		t.Errorf("api_endpoint = %q, expected default", cfg.CloudCover.APIEndpoint)
	}
}

func TestLoadConfigDefaultsOnly(t *testing.T) {
	cfg, err := NewYAMLProvider(writeConfig(t, "{}")).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.ListenAddr != DefaultListenAddr {
		t.Errorf("listen_addr = %q, expected default %q", cfg.HTTP.ListenAddr, DefaultListenAddr)
	}
	if cfg.Storage.TimescaleDB != nil {
		t.Error("storage should be absent by default")
	}
	if cfg.CloudCover.RequestsPerMinute != DefaultRequestsPerMinute {
		t.Errorf("requests_per_minute = %d, expected default", cfg.CloudCover.RequestsPerMinute)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := NewYAMLProvider("/nonexistent/config.yaml").LoadConfig(); err == nil {
		t.Error("missing file should fail")
	}

	if _, err := NewYAMLProvider(writeConfig(t, "http: [not, a, map]")).LoadConfig(); err == nil {
		t.Error("malformed YAML should fail")
	}

	empty := `
storage:
  timescaledb:
    connection_string: ""
`
	if _, err := NewYAMLProvider(writeConfig(t, empty)).LoadConfig(); err == nil {
		t.Error("configured storage with empty connection string should fail")
	}
}
