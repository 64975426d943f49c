package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Create temp config file
	content := `
server:
  listen_addr: ":9080"
  read_timeout: 15s
  write_timeout: 2m
  max_upload_bytes: 5242880
  allowed_origins:
    - "http://localhost:5173"

backend:
  base_url: "http://backend.test:5000"
  timeout: 3m

sessions:
  max_age: 1h
  cleanup_interval: 5m

history:
  path: "/tmp/test-history.db"

logging:
  level: "debug"
  format: "text"

metrics:
  enabled: true
  listen_addr: ":9191"
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check values
	if cfg.Server.ListenAddr != ":9080" {
		t.Errorf("Server.ListenAddr = %v, want :9080", cfg.Server.ListenAddr)
	}
	if cfg.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("Server.WriteTimeout = %v, want 2m", cfg.Server.WriteTimeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Backend.BaseURL != "http://backend.test:5000" {
		t.Errorf("Backend.BaseURL = %v", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Minute {
		t.Errorf("Backend.Timeout = %v, want 3m", cfg.Backend.Timeout)
	}
	if cfg.Sessions.MaxAge != time.Hour {
		t.Errorf("Sessions.MaxAge = %v, want 1h", cfg.Sessions.MaxAge)
	}
	if cfg.History.Path != "/tmp/test-history.db" {
		t.Errorf("History.Path = %v", cfg.History.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddr != ":9191" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `
backend:
  base_url: "http://localhost:5000"
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check defaults
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %v, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Server.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("Server.MaxUploadBytes = %v, want 10MB", cfg.Server.MaxUploadBytes)
	}
	if cfg.Backend.Timeout != 5*time.Minute {
		t.Errorf("Backend.Timeout = %v, want 5m", cfg.Backend.Timeout)
	}
	if cfg.Sessions.MaxAge != 2*time.Hour {
		t.Errorf("Sessions.MaxAge = %v, want 2h", cfg.Sessions.MaxAge)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %v, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %v, want json", cfg.Logging.Format)
	}
	if cfg.Metrics.ListenAddr != ":9090" || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics defaults = %+v", cfg.Metrics)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Backend: BackendConfig{BaseURL: "http://localhost:5000"},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: false,
		},
		{
			name: "missing backend url",
			cfg: Config{
				Backend: BackendConfig{BaseURL: ""},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "relative backend url",
			cfg: Config{
				Backend: BackendConfig{BaseURL: "localhost:5000"},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				Backend: BackendConfig{BaseURL: "http://localhost:5000"},
				Logging: LoggingConfig{Level: "invalid", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			cfg: Config{
				Backend: BackendConfig{BaseURL: "http://localhost:5000"},
				Logging: LoggingConfig{Level: "info", Format: "invalid"},
			},
			wantErr: true,
		},
		{
			name: "negative upload limit",
			cfg: Config{
				Server:  ServerConfig{MaxUploadBytes: -1},
				Backend: BackendConfig{BaseURL: "http://localhost:5000"},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}
