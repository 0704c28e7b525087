package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tally/internal/cli"
	"tally/internal/services"
	"tally/internal/worker"
)

// evaluationDebounce bounds how often one month gets re-checked when
// materialization emits a burst of transactions.
const evaluationDebounce = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting alert-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert-worker")
		os.Exit(1)
	}

	store, cleanup := cli.InitStore(logger, cfg)
	defer cleanup()

	events := cli.InitAMQP(logger, cfg)
	defer events.Close()

	alerts := services.NewAlertService(store, events)
	alertWorker := worker.NewAlertWorker(alerts, evaluationDebounce)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming transaction events",
		"queue", cfg.AMQPTransactionsQueue,
		"backend", cfg.DataBackend)

	err := events.ConsumeTransactionCreated(ctx, alertWorker.HandleTransactionCreated)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert-worker shutdown complete")
}
