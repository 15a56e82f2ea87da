package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8000
log:
  log_level: "debug"
  log_dir: "/tmp/logs"
  log_file: "test.log"
web:
  enabled: true
  port: 8081
analysis:
  models:
    - "model-a"
    - "model-b"
cache:
  driver: "memory"
  ttl: 5m
`

	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected server port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if len(cfg.Analysis.Models) != 2 || cfg.Analysis.Models[0] != "model-a" {
		t.Errorf("unexpected candidate models: %v", cfg.Analysis.Models)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected cache ttl 5m, got %v", cfg.Cache.TTL)
	}
	// Values the file omits fall back to defaults.
	if cfg.Storage.DSN == "" {
		t.Error("expected default storage DSN")
	}
	if cfg.Security.MaxFileSize == 0 {
		t.Error("expected default security max file size")
	}
}

func TestLoader_Defaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Fatal("expected error for missing pinned config file")
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid web port",
			mutate:  func(cfg *Config) { cfg.Web.Port = -1 },
			wantErr: true,
		},
		{
			name:    "empty candidate list",
			mutate:  func(cfg *Config) { cfg.Analysis.Models = nil },
			wantErr: true,
		},
		{
			name:    "unknown cache driver",
			mutate:  func(cfg *Config) { cfg.Cache.Driver = "memcached" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("AIDPAL_API_KEY", "sk-test")
	t.Setenv("AIDPAL_SERVER_TOKEN", "secret")

	cfg := Default()
	NewLoader().applyEnvOverrides(cfg)

	if cfg.Analysis.Provider.APIKey != "sk-test" {
		t.Errorf("expected api key override, got %q", cfg.Analysis.Provider.APIKey)
	}
	if cfg.Server.Token != "secret" {
		t.Errorf("expected server token override, got %q", cfg.Server.Token)
	}
}
