package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"digitwin/internal/amqp"
	"digitwin/internal/config"
	apphttp "digitwin/internal/http"
	"digitwin/internal/log"
	"digitwin/internal/plaid"
	"digitwin/internal/services"
	"digitwin/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

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

	// AMQP is optional: without a broker the API still works, profile
	// changes just don't trigger background task rebuilds.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", log.FieldError, err)
		} else {
			defer amqpClient.Close()
		}
	}

	var provider plaid.Provider
	if cfg.PlaidClientID != "" {
		provider, err = plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnvironment, cfg.PlaidClientName)
		if err != nil {
			logger.Error("Failed to initialize Plaid client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Plaid disabled - no PLAID_CLIENT_ID provided")
	}

	budgets := services.NewBudgetService(repo, logger)
	svc := apphttp.Services{
		Expenses:  services.NewExpenseService(repo, budgets, logger),
		Budgets:   budgets,
		Summaries: services.NewSummaryService(repo, logger),
		Goals:     services.NewGoalService(repo, logger),
		Tasks:     services.NewTaskService(repo, logger),
		Profiles:  services.NewProfileService(repo, amqpClient, logger),
		Imports:   services.NewImportService(repo, provider, cfg.ImportWindowDays, logger),
	}

	srv := apphttp.NewServer(cfg, svc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting digitwin server", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
