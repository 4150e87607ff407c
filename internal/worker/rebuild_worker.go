// Package worker runs the background side of the service: the AMQP
// consumer that reacts to profile changes and the cron jobs that sync
// bank transactions and roll financial tasks into a new month.
package worker

import (
	"context"
	"fmt"
	"time"

	"digitwin/internal/amqp"
	"digitwin/internal/log"
	"digitwin/internal/services"
)

// RebuildWorker consumes profile-updated messages and regenerates the
// user's financial tasks for the current month.
type RebuildWorker struct {
	tasks  *services.TaskService
	logger *log.Logger
}

func NewRebuildWorker(tasks *services.TaskService, logger *log.Logger) *RebuildWorker {
	return &RebuildWorker{
		tasks:  tasks,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleProfileUpdated rebuilds the current month's generated tasks.
// Returning an error requeues the message.
func (w *RebuildWorker) HandleProfileUpdated(ctx context.Context, msg *amqp.ProfileUpdatedMessage) error {
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	if err := w.tasks.Regenerate(ctx, msg.UserID, month, year); err != nil {
		return fmt.Errorf("regenerate tasks for %s: %w", msg.UserID, err)
	}

	w.logger.InfoContext(ctx, "rebuilt tasks after profile update",
		log.FieldUserID, msg.UserID,
		log.FieldMonth, month,
		log.FieldYear, year)

	return nil
}
