package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Expected default server port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug != false {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}

	if cfg.Docker.Socket != "" {
		t.Errorf("Expected default docker socket '', got '%s'", cfg.Docker.Socket)
	}
	if cfg.Docker.APITimeout != 30*time.Second {
		t.Errorf("Expected default api timeout 30s, got %v", cfg.Docker.APITimeout)
	}
	if cfg.Docker.StopTimeout != 10 {
		t.Errorf("Expected default stop timeout 10, got %d", cfg.Docker.StopTimeout)
	}

	if cfg.Actions.Workers != 5 {
		t.Errorf("Expected default workers 5, got %d", cfg.Actions.Workers)
	}
	if cfg.Actions.Protected != "quayside,quayside-api" {
		t.Errorf("Expected default protected 'quayside,quayside-api', got '%s'", cfg.Actions.Protected)
	}

	if cfg.Catalog.Path != "./services.yaml" {
		t.Errorf("Expected default catalog path './services.yaml', got '%s'", cfg.Catalog.Path)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging format 'json', got '%s'", cfg.Logging.Format)
	}
}

// TestLoadFromFile tests loading configuration from a YAML file.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
server:
  port: 9000
  debug: true
docker:
  socket: unix:///run/user/1000/docker.sock
  stop_timeout: 30
actions:
  protected: "Web-Proxy, db ,"
  workers: 3
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if !cfg.Server.Debug {
		t.Errorf("Expected debug true")
	}
	if cfg.Docker.Socket != "unix:///run/user/1000/docker.sock" {
		t.Errorf("Unexpected docker socket: %s", cfg.Docker.Socket)
	}
	if cfg.Docker.StopTimeout != 30 {
		t.Errorf("Expected stop timeout 30, got %d", cfg.Docker.StopTimeout)
	}
	if cfg.Actions.Workers != 3 {
		t.Errorf("Expected workers 3, got %d", cfg.Actions.Workers)
	}
}

// TestEnvironmentOverride tests that QS_ environment variables override defaults.
func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("QS_SERVER_PORT", "7777")
	t.Setenv("QS_ACTIONS_PROTECTED", "alpha,beta")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Expected port 7777 from env, got %d", cfg.Server.Port)
	}
	if cfg.Actions.Protected != "alpha,beta" {
		t.Errorf("Expected protected 'alpha,beta' from env, got '%s'", cfg.Actions.Protected)
	}
}

// TestProtectedNames tests protected-name list parsing.
func TestProtectedNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"default style", "quayside,quayside-api", []string{"quayside", "quayside-api"}},
		{"case folded and trimmed", " Web-Proxy, DB ", []string{"web-proxy", "db"}},
		{"empty entries dropped", "a,,b,", []string{"a", "b"}},
		{"empty string", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := &ActionsConfig{Protected: tt.input}
			got := ac.ProtectedNames()
			if len(got) != len(tt.want) {
				t.Fatalf("ProtectedNames(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ProtectedNames(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestValidation tests that invalid configurations are rejected.
func TestValidation(t *testing.T) {
	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("QS_SERVER_PORT", "0")
		if _, err := Load("nonexistent.yaml"); err == nil {
			t.Error("Expected error for port 0")
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		t.Setenv("QS_ACTIONS_WORKERS", "0")
		if _, err := Load("nonexistent.yaml"); err == nil {
			t.Error("Expected error for workers 0")
		}
	})
}
