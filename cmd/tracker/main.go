package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vctrubio/summer-expense-tracker/internal/amqp"
	"github.com/vctrubio/summer-expense-tracker/internal/auth"
	"github.com/vctrubio/summer-expense-tracker/internal/cache"
	"github.com/vctrubio/summer-expense-tracker/internal/config"
	apphttp "github.com/vctrubio/summer-expense-tracker/internal/http"
	"github.com/vctrubio/summer-expense-tracker/internal/log"
	"github.com/vctrubio/summer-expense-tracker/internal/services"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.ComponentApp)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	policy, err := cfg.SplitPolicy()
	if err != nil {
		logger.Error("Invalid split policy", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// AMQP is optional: without a URL the ledger runs standalone and
	// skips event publishing.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(auth.NewPasswordAuthenticator(store), tokens)
	ledger := services.NewLedgerService(store, events, policy)

	cacheMgr := cache.NewManager()
	for _, c := range ledger.Caches() {
		cacheMgr.Register(c)
	}
	cacheMgr.StartCleanup(5 * time.Minute)
	defer cacheMgr.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, ledger, authSvc, tokens, store, logger)

	// Graceful shutdown handling
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
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting tracker server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
