package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vctrubio/summer-expense-tracker/internal/amqp"
	"github.com/vctrubio/summer-expense-tracker/internal/config"
	"github.com/vctrubio/summer-expense-tracker/internal/log"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
	"github.com/vctrubio/summer-expense-tracker/internal/worker"
)

// refreshInterval is the fallback full refresh, catching any account
// whose change events were missed while the worker was down.
const refreshInterval = 15 * time.Minute

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(store, cfg.ExportDir, time.Local, logger)

	// Bring every snapshot current before consuming events.
	logger.Info("Performing startup refresh")
	if err := exportWorker.RefreshAll(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
		// Keep going; the periodic refresh will retry.
	}

	go func() {
		handler := func(evt *amqp.TransactionEvent) error {
			return exportWorker.HandleEvent(ctx, evt)
		}
		if err := amqpClient.ConsumeTransactionEvents(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Event consumption failed", "error", err)
			}
			cancel()
		}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportWorker.RefreshAll(ctx); err != nil {
					logger.Error("Periodic refresh failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Export worker stopped gracefully")
}
