package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgeting/internal/auth"
	"budgeting/internal/backend"
	"budgeting/internal/config"
	"budgeting/internal/events"
	apphttp "budgeting/internal/http"
	"budgeting/internal/ledger"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	registry := auth.NewRegistryFromEnv()
	if registry.Len() == 0 {
		logger.Error("No project passwords configured, nobody could log in")
		os.Exit(1)
	}
	logger.Info("Loaded project registry", "projects", registry.Len())

	ctx := context.Background()

	result, err := backend.NewFactory(logger).CreateStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()
	logger.Info("Initialized store", "backend", cfg.DataBackend)

	// Event publishing is optional. A broker outage must not block submissions.
	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, events disabled", "error", err)
			eventsClient = nil
		} else {
			defer eventsClient.Close()
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := ledger.NewService(result.Store, eventsClient, cfg.SubmissionDeadline, nil)
	svc.Flows().StartCleanup(time.Minute)
	defer svc.Flows().Stop()

	sessions := auth.NewSessionManager(cfg.SessionSecret)

	srv := apphttp.NewServer(":"+cfg.Port, registry, sessions, svc)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budgeting server", "port", cfg.Port, "backend", cfg.DataBackend, "deadline", cfg.SubmissionDeadline.Format("2006-01-02"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-runCtx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
