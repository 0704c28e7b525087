// Package services orchestrates the engines against the persistence
// gateway: materializing recurring templates and evaluating budget
// alerts.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/recurrence"
	"tally/internal/storage"
)

// Materializer runs the recurrence engine against the store: it pulls
// the active templates, generates everything due, appends the results to
// the transaction collection and folds the checkpoint updates back in.
type Materializer struct {
	store  storage.Store
	events *amqp.Client
}

// NewMaterializer creates a materializer. The events client may be nil;
// generation then runs without publishing.
func NewMaterializer(store storage.Store, events *amqp.Client) *Materializer {
	return &Materializer{
		store:  store,
		events: events,
	}
}

// MaterializeSummary reports what one run did.
type MaterializeSummary struct {
	Generated   int
	Deactivated int
	Skipped     int
}

// Run materializes everything due at the given instant. The clock is
// sampled once by the caller and held constant for the whole run; the
// engine itself never consults it.
func (m *Materializer) Run(ctx context.Context, now time.Time) (MaterializeSummary, error) {
	today := core.DateOf(now)

	templates, err := m.store.RecurringTransactions(ctx)
	if err != nil {
		return MaterializeSummary{}, fmt.Errorf("load recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Materializing recurring transactions",
		"templates", len(templates),
		"evaluation_date", today.String())

	result := recurrence.MaterializeDue(templates, today)

	for _, skipped := range result.Skipped {
		slog.WarnContext(ctx, "Skipping recurring template",
			"template_id", skipped.ID,
			"error", skipped.Err)
	}

	if len(result.Generated) > 0 {
		transactions, err := m.store.Transactions(ctx)
		if err != nil {
			return MaterializeSummary{}, fmt.Errorf("load transactions: %w", err)
		}
		transactions = append(transactions, result.Generated...)
		if err := m.store.SaveTransactions(ctx, transactions); err != nil {
			return MaterializeSummary{}, fmt.Errorf("save transactions: %w", err)
		}
	}

	summary := MaterializeSummary{
		Generated: len(result.Generated),
		Skipped:   len(result.Skipped),
	}

	if len(result.Checkpoints) > 0 {
		updated := recurrence.ApplyCheckpoints(templates, result.Checkpoints)
		if err := m.store.SaveRecurringTransactions(ctx, updated); err != nil {
			return summary, fmt.Errorf("save checkpoint updates: %w", err)
		}
		for _, up := range result.Checkpoints {
			if up.Deactivate {
				summary.Deactivated++
			}
		}
	}

	m.publishGenerated(ctx, result.Generated)

	slog.InfoContext(ctx, "Materialization complete",
		"generated", summary.Generated,
		"deactivated", summary.Deactivated,
		"skipped", summary.Skipped)

	return summary, nil
}

// publishGenerated emits one event per generated transaction. Publishing
// is best-effort: the transactions are already persisted, so a dead
// broker only costs downstream notifications.
func (m *Materializer) publishGenerated(ctx context.Context, generated []core.Transaction) {
	if m.events == nil {
		return
	}
	for _, tx := range generated {
		if err := m.events.PublishTransactionCreated(ctx, amqp.NewTransactionCreatedMessage(tx)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"transaction_id", tx.ID,
				"error", err)
		}
	}
}
