// Package worker reacts to transaction events by re-evaluating the
// affected month's budgets.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/services"
)

// AlertWorker consumes transaction-created events and runs budget
// evaluation for the month each transaction landed in. Evaluations are
// debounced so a burst of materialized transactions checks each month
// once.
type AlertWorker struct {
	alerts *services.AlertService

	mu          sync.Mutex
	lastChecked map[core.MonthKey]time.Time
	debounce    time.Duration
}

// NewAlertWorker creates an alert worker. A zero debounce evaluates on
// every message.
func NewAlertWorker(alerts *services.AlertService, debounce time.Duration) *AlertWorker {
	return &AlertWorker{
		alerts:      alerts,
		lastChecked: make(map[core.MonthKey]time.Time),
		debounce:    debounce,
	}
}

// HandleTransactionCreated processes one transaction event.
func (w *AlertWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	month, err := core.ParseMonthKey("month", msg.Month)
	if err != nil {
		// Malformed month is a producer bug; retrying cannot fix it.
		slog.WarnContext(ctx, "Dropping event with bad month",
			"transaction_id", msg.ID,
			"month", msg.Month,
			"error", err)
		return nil
	}

	if !w.shouldEvaluate(month) {
		slog.DebugContext(ctx, "Skipping evaluation, month checked recently",
			"month", msg.Month)
		return nil
	}

	alerts, err := w.alerts.Evaluate(ctx, month)
	if err != nil {
		return fmt.Errorf("evaluate budgets for %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Budgets re-evaluated",
		"month", msg.Month,
		"trigger_transaction", msg.ID,
		"alerts", len(alerts))
	return nil
}

func (w *AlertWorker) shouldEvaluate(month core.MonthKey) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastChecked[month]; ok && now.Sub(last) < w.debounce {
		return false
	}
	w.lastChecked[month] = now
	return true
}
