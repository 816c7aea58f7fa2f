package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDefaults(t *testing.T) {
	t.Setenv("PIXELFORGE_JWT_SECRET", "test-secret")

	cfg, err := NewLoader("").WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected default port: %d", cfg.Server.Port)
	}
	if cfg.Redis.Prefix != "pixelforge:" {
		t.Errorf("unexpected redis prefix: %s", cfg.Redis.Prefix)
	}
}

func TestLoaderMissingSecret(t *testing.T) {
	t.Setenv("PIXELFORGE_JWT_SECRET", "")

	if _, err := NewLoader("").WithDotEnv(false).Load(); err == nil {
		t.Fatal("expected error when jwt secret is missing")
	}
}

func TestLoaderFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9090\n  jwt_secret: from-file\nredis:\n  addr: 10.0.0.1:6379\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PIXELFORGE_JWT_SECRET", "")
	t.Setenv("PIXELFORGE_REDIS_ADDR", "10.0.0.2:6379")

	cfg, err := NewLoader(path).WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("file value not applied, port = %d", cfg.Server.Port)
	}
	if cfg.Server.JWTSecret != "from-file" {
		t.Errorf("unexpected jwt secret: %s", cfg.Server.JWTSecret)
	}
	if cfg.Redis.Addr != "10.0.0.2:6379" {
		t.Errorf("env override not applied, addr = %s", cfg.Redis.Addr)
	}
}
