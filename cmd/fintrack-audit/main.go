package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
)

// fintrack-audit trails the write-event stream: it consumes every
// create/update/delete published by the API server and logs it as an
// audit record.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "fintrack-audit"})
	applog.SetDefault(logger)

	logger.Info("Starting fintrack-audit worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Keep consuming across broker restarts: redial with backoff until
	// the context is cancelled.
	attempt := 0
	for {
		if ctx.Err() != nil {
			break
		}

		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			delay := retryDelay(attempt)
			attempt++
			logger.Error("Failed to connect to broker", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		err = client.ConsumeTransactionEvents(ctx, func(event *events.TransactionEvent) error {
			logger.Info("Transaction audit record",
				"action", event.Action,
				"transaction_id", event.ID,
				"occurred_at", event.Timestamp)
			return nil
		})
		client.Close()

		if errors.Is(err, context.Canceled) {
			break
		}
		logger.Warn("Event consumption interrupted, reconnecting", "error", err)
	}

	logger.Info("Audit worker stopped gracefully")
}

func retryDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}
