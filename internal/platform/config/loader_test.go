package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoaderDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "does-not-exist.yaml")).
		WithDotEnv(false)

	result, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected empty path for missing file, got %q", result.Path)
	}
	if result.Config.Server.Port != 8070 {
		t.Errorf("expected default port, got %d", result.Config.Server.Port)
	}
	if result.Config.Backend.Timeout != 10*time.Second {
		t.Errorf("expected default timeout, got %v", result.Config.Backend.Timeout)
	}
}

func TestLoaderReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  ip: 127.0.0.1
  port: 9090
backend:
  auth_url: http://auth.internal/api
  products_url: http://products.internal/api
  timeout: 5s
storage:
  driver: memory
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	result, err := NewLoader().WithPath(path).WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg := result.Config
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Backend.AuthURL != "http://auth.internal/api" {
		t.Errorf("unexpected auth url: %q", cfg.Backend.AuthURL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("unexpected storage driver: %q", cfg.Storage.Driver)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("COMICSTORE_PORT", "7001")
	t.Setenv("COMICSTORE_STORAGE_DRIVER", "redis")

	result, err := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithDotEnv(false).
		Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Config.Server.Port != 7001 {
		t.Errorf("env port override not applied: %d", result.Config.Server.Port)
	}
	if result.Config.Storage.Driver != "redis" {
		t.Errorf("env driver override not applied: %q", result.Config.Storage.Driver)
	}
}

func TestLoaderRejectsInvalidPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewLoader().WithPath(path).WithDotEnv(false).Load(); err == nil {
		t.Fatal("expected validation error for invalid port")
	}
}
