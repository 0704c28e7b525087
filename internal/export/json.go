package export

import (
	"context"
	"encoding/json"
	"fmt"

	"tally/internal/core"
	"tally/internal/storage"
)

// Snapshot is the whole dataset in one document, the backup format.
type Snapshot struct {
	Transactions          []core.Transaction          `json:"transactions"`
	RecurringTransactions []core.RecurringTransaction `json:"recurringTransactions"`
	Budgets               []core.Budget               `json:"budgets"`
	Categories            []core.Category             `json:"categories"`
	Settings              core.Settings               `json:"settings"`
}

// TakeSnapshot collects every collection from the store.
func TakeSnapshot(ctx context.Context, store storage.Store) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Transactions, err = store.Transactions(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if snap.RecurringTransactions, err = store.RecurringTransactions(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load recurring transactions: %w", err)
	}
	if snap.Budgets, err = store.Budgets(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load budgets: %w", err)
	}
	if snap.Categories, err = store.Categories(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	if snap.Settings, err = store.Settings(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	return snap, nil
}

// MarshalSnapshot renders the snapshot with stable two-space
// indentation, diff-friendly for backups kept under version control.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// partialSnapshot mirrors Snapshot with pointer fields so an import can
// tell "absent" from "present but empty". Absent collections are left
// alone.
type partialSnapshot struct {
	Transactions          *[]core.Transaction          `json:"transactions"`
	RecurringTransactions *[]core.RecurringTransaction `json:"recurringTransactions"`
	Budgets               *[]core.Budget               `json:"budgets"`
	Categories            *[]core.Category             `json:"categories"`
	Settings              *core.Settings               `json:"settings"`
}

// Import restores collections from a snapshot document. Only the keys
// present in the document are written; each present collection replaces
// the stored one wholesale. Every record is validated before anything is
// saved, so a bad document changes nothing.
func Import(ctx context.Context, store storage.Store, data []byte) error {
	var snap partialSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	if err := validateSnapshot(snap); err != nil {
		return err
	}

	if snap.Transactions != nil {
		if err := store.SaveTransactions(ctx, *snap.Transactions); err != nil {
			return fmt.Errorf("save transactions: %w", err)
		}
	}
	if snap.RecurringTransactions != nil {
		if err := store.SaveRecurringTransactions(ctx, *snap.RecurringTransactions); err != nil {
			return fmt.Errorf("save recurring transactions: %w", err)
		}
	}
	if snap.Budgets != nil {
		if err := store.SaveBudgets(ctx, *snap.Budgets); err != nil {
			return fmt.Errorf("save budgets: %w", err)
		}
	}
	if snap.Categories != nil {
		if err := store.SaveCategories(ctx, *snap.Categories); err != nil {
			return fmt.Errorf("save categories: %w", err)
		}
	}
	if snap.Settings != nil {
		if err := store.SaveSettings(ctx, *snap.Settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	return nil
}

func validateSnapshot(snap partialSnapshot) error {
	if snap.Transactions != nil {
		for _, tx := range *snap.Transactions {
			if err := tx.Validate(); err != nil {
				return fmt.Errorf("transaction %s: %w", tx.ID, err)
			}
		}
	}
	if snap.RecurringTransactions != nil {
		for _, rt := range *snap.RecurringTransactions {
			if err := rt.Validate(); err != nil {
				return fmt.Errorf("recurring transaction %s: %w", rt.ID, err)
			}
		}
	}
	if snap.Budgets != nil {
		for _, b := range *snap.Budgets {
			if err := b.Validate(); err != nil {
				return fmt.Errorf("budget %s: %w", b.ID, err)
			}
		}
	}
	if snap.Categories != nil {
		for _, c := range *snap.Categories {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("category %s: %w", c.ID, err)
			}
		}
	}
	return nil
}
