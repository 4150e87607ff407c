package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"digitwin/internal/amqp"
	"digitwin/internal/config"
	"digitwin/internal/log"
	"digitwin/internal/plaid"
	"digitwin/internal/services"
	"digitwin/internal/storage"
	"digitwin/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting digitwin-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var provider plaid.Provider
	if cfg.PlaidClientID != "" {
		provider, err = plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnvironment, cfg.PlaidClientName)
		if err != nil {
			logger.Error("Failed to initialize Plaid client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Plaid disabled - provider sync will be skipped")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	tasks := services.NewTaskService(repo, logger)
	imports := services.NewImportService(repo, provider, cfg.ImportWindowDays, logger)
	rebuildWorker := worker.NewRebuildWorker(tasks, logger)
	syncWorker := worker.NewSyncWorker(repo, imports, tasks, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Consume profile-updated events and rebuild the user's tasks.
	g.Go(func() error {
		err := amqpClient.ConsumeProfileUpdated(ctx, func(msg *amqp.ProfileUpdatedMessage) error {
			return rebuildWorker.HandleProfileUpdated(ctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Scheduled sweeps: provider sync and monthly task regeneration.
	g.Go(func() error {
		scheduler := cron.New()

		if provider != nil {
			if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
				if err := syncWorker.SyncAllUsers(ctx); err != nil {
					logger.Error("Provider sync sweep failed", log.FieldError, err)
				}
			}); err != nil {
				return err
			}
		}

		if _, err := scheduler.AddFunc(cfg.RebuildSchedule, func() {
			if err := syncWorker.RebuildMonthlyTasks(ctx); err != nil {
				logger.Error("Monthly task rebuild failed", log.FieldError, err)
			}
		}); err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
