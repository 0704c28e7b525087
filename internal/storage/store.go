// Package storage provides the persistence gateway the engines read and
// write through. Each entity collection is loaded and saved whole; loads
// are total and return an empty collection (or the default settings)
// when nothing has been stored yet, never a not-found error.
package storage

import (
	"context"

	"tally/internal/core"
)

// Store is the gateway contract. Implementations guarantee atomicity for
// a single save call only; a read-modify-write cycle across calls is
// last-write-wins.
type Store interface {
	Transactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, transactions []core.Transaction) error

	RecurringTransactions(ctx context.Context) ([]core.RecurringTransaction, error)
	SaveRecurringTransactions(ctx context.Context, templates []core.RecurringTransaction) error

	Budgets(ctx context.Context) ([]core.Budget, error)
	SaveBudgets(ctx context.Context, budgets []core.Budget) error

	Categories(ctx context.Context) ([]core.Category, error)
	SaveCategories(ctx context.Context, categories []core.Category) error

	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, settings core.Settings) error
}
