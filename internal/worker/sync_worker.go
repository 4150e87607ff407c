package worker

import (
	"context"
	"time"

	"digitwin/internal/log"
	"digitwin/internal/services"
	"digitwin/internal/storage"
)

// SyncWorker runs the scheduled sweeps: importing provider transactions
// for every linked user and regenerating tasks at the start of a month.
type SyncWorker struct {
	repo    *storage.Repository
	imports *services.ImportService
	tasks   *services.TaskService
	logger  *log.Logger
}

func NewSyncWorker(repo *storage.Repository, imports *services.ImportService, tasks *services.TaskService, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		repo:    repo,
		imports: imports,
		tasks:   tasks,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// SyncAllUsers imports the trailing transaction window for every user
// with an active bank link. One user's failure doesn't stop the sweep.
func (w *SyncWorker) SyncAllUsers(ctx context.Context) error {
	userIDs, err := w.repo.ListLinkedUserIDs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, userID := range userIDs {
		count, err := w.imports.Sync(ctx, userID)
		if err != nil {
			w.logger.ErrorContext(ctx, "provider sync failed",
				log.FieldUserID, userID,
				log.FieldError, err)
			continue
		}
		total += count
	}

	w.logger.InfoContext(ctx, "provider sync sweep finished",
		log.FieldCount, total,
		"users", len(userIDs))

	return nil
}

// RebuildMonthlyTasks regenerates the current month's tasks for every
// user with a profile. Scheduled for the first of the month so the new
// partition starts populated.
func (w *SyncWorker) RebuildMonthlyTasks(ctx context.Context) error {
	userIDs, err := w.repo.ListProfileUserIDs(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	for _, userID := range userIDs {
		if err := w.tasks.Regenerate(ctx, userID, month, year); err != nil {
			w.logger.ErrorContext(ctx, "monthly task rebuild failed",
				log.FieldUserID, userID,
				log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "monthly task rebuild finished",
		log.FieldMonth, month,
		log.FieldYear, year,
		"users", len(userIDs))

	return nil
}
