package services

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"digitwin/internal/log"
	"digitwin/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLogger() *log.Logger {
	return log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
}
