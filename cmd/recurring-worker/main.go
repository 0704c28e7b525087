package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"tally/internal/cli"
	"tally/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store, cleanup := cli.InitStore(logger, cfg)
	defer cleanup()

	events := cli.InitAMQP(logger, cfg)
	if events != nil {
		defer events.Close()
		logger.Info("AMQP client initialized, transaction events will be published")
	} else {
		logger.Info("AMQP disabled, generating without events")
	}

	materializer := services.NewMaterializer(store, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring materializer configured",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend)

	run := func(now time.Time) {
		summary, err := materializer.Run(ctx, now)
		if err != nil {
			logger.Error("Materialization failed", "error", err)
			return
		}
		logger.Info("Materialization pass complete",
			"generated", summary.Generated,
			"deactivated", summary.Deactivated,
			"skipped", summary.Skipped,
			"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
	}

	// Catch up on startup, then tick.
	run(time.Now())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
