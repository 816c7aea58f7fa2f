package testing

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"pixelforge-server-go/internal/platform/config"
	"pixelforge-server-go/internal/platform/logging"
	"pixelforge-server-go/internal/platform/storage"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.JWTSecret = "test-secret"
	cfg.Log.Dir = ""
	cfg.Log.File = ""
	cfg.Dashboard.Enabled = false
	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{Level: "debug"})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

// SetupTestDB opens a throwaway sqlite database migrated with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close(db)
	})
	return db
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}
