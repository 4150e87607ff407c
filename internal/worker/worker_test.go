package worker

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"digitwin/internal/amqp"
	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/plaid"
	"digitwin/internal/services"
	"digitwin/internal/storage"
)

type fakeProvider struct {
	transactions []plaid.Transaction
}

func (f *fakeProvider) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	return "link-token", nil
}

func (f *fakeProvider) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	return "item-1", "tok", nil
}

func (f *fakeProvider) FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]plaid.Transaction, error) {
	return f.transactions, nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSyncAllUsersImportsLinkedAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	provider := &fakeProvider{
		transactions: []plaid.Transaction{
			{ID: "txn-1", Date: "2025-03-10", Amount: 5.00, Name: "Lunch"},
		},
	}
	imports := services.NewImportService(repo, provider, 30, testLogger())
	tasks := services.NewTaskService(repo, testLogger())
	w := NewSyncWorker(repo, imports, tasks, testLogger())

	if _, err := imports.ExchangePublicToken(ctx, "u1", "public-tok"); err != nil {
		t.Fatalf("ExchangePublicToken() error = %v", err)
	}

	if err := w.SyncAllUsers(ctx); err != nil {
		t.Fatalf("SyncAllUsers() error = %v", err)
	}

	txns, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("ListTransactions() = %d rows, want 1", len(txns))
	}
}

func TestHandleProfileUpdatedRegeneratesTasks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tasks := services.NewTaskService(repo, testLogger())
	w := NewRebuildWorker(tasks, testLogger())

	err := repo.UpsertProfile(ctx, core.Profile{UserID: "u1", PaysRent: true})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	if err := w.HandleProfileUpdated(ctx, amqp.NewProfileUpdatedMessage("u1")); err != nil {
		t.Fatalf("HandleProfileUpdated() error = %v", err)
	}

	now := time.Now()
	list, err := tasks.List(ctx, "u1", int(now.Month()), now.Year())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() = %d tasks, want 1 rent task", len(list))
	}
}

func TestRebuildMonthlyTasksSweepsProfiles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	imports := services.NewImportService(repo, &fakeProvider{}, 30, testLogger())
	tasks := services.NewTaskService(repo, testLogger())
	w := NewSyncWorker(repo, imports, tasks, testLogger())

	for _, userID := range []string{"u1", "u2"} {
		err := repo.UpsertProfile(ctx, core.Profile{UserID: userID, SavingsReminder: true})
		if err != nil {
			t.Fatalf("UpsertProfile(%s) error = %v", userID, err)
		}
	}

	if err := w.RebuildMonthlyTasks(ctx); err != nil {
		t.Fatalf("RebuildMonthlyTasks() error = %v", err)
	}

	now := time.Now()
	for _, userID := range []string{"u1", "u2"} {
		list, err := tasks.List(ctx, userID, int(now.Month()), now.Year())
		if err != nil {
			t.Fatalf("List(%s) error = %v", userID, err)
		}
		if len(list) != 1 {
			t.Errorf("List(%s) = %d tasks, want 1", userID, len(list))
		}
	}
}
