package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func TestMemoryStoreEmptyLoads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	txs, err := store.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("fresh store has %d transactions, want 0", len(txs))
	}

	recurring, err := store.RecurringTransactions(ctx)
	if err != nil {
		t.Fatalf("RecurringTransactions: %v", err)
	}
	if len(recurring) != 0 {
		t.Errorf("fresh store has %d templates, want 0", len(recurring))
	}

	settings, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if settings != core.DefaultSettings() {
		t.Errorf("fresh settings = %+v, want defaults", settings)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := []core.Transaction{{
		ID:          "t1",
		Amount:      decimal.NewFromFloat(12.34),
		Type:        core.Expense,
		Category:    "4",
		Description: "Lunch",
		Date:        core.NewDate(2024, 4, 15),
	}}
	if err := store.SaveTransactions(ctx, in); err != nil {
		t.Fatalf("SaveTransactions: %v", err)
	}

	out, err := store.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(out) != 1 || out[0].ID != "t1" || !out[0].Amount.Equal(in[0].Amount) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	// Mutating the returned slice must not leak into the store.
	out[0].Description = "changed"
	again, _ := store.Transactions(ctx)
	if again[0].Description != "Lunch" {
		t.Error("store state was mutated through a returned slice")
	}
}

func TestMemoryStoreSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	want := core.Settings{Currency: "EUR", Theme: "dark", DateFormat: core.FormatISO, DefaultView: "budgets"}
	if err := store.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != want {
		t.Errorf("Settings = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreSaveReplacesCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.SaveBudgets(ctx, []core.Budget{
		{ID: "b1", Category: "4", Amount: decimal.NewFromInt(100), Month: "2024-04", AlertThreshold: 80},
		{ID: "b2", Category: "5", Amount: decimal.NewFromInt(50), Month: "2024-04", AlertThreshold: 90},
	})
	_ = store.SaveBudgets(ctx, []core.Budget{
		{ID: "b2", Category: "5", Amount: decimal.NewFromInt(75), Month: "2024-04", AlertThreshold: 90},
	})

	budgets, err := store.Budgets(ctx)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].ID != "b2" {
		t.Errorf("save-all should replace the collection, got %+v", budgets)
	}
	if !budgets[0].Amount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("budget amount = %v, want 75", budgets[0].Amount)
	}
}
