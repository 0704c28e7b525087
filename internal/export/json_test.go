package export

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/storage"
)

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	transactions := []core.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(50), Type: core.Expense, Category: "4", Description: "Dinner", Date: core.NewDate(2024, 4, 5)},
	}
	budgets := []core.Budget{
		{ID: "b1", Category: "4", Amount: decimal.NewFromInt(400), Month: core.MonthKey("2024-04"), AlertThreshold: 80},
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}
	if err := store.SaveBudgets(ctx, budgets); err != nil {
		t.Fatalf("seed budgets: %v", err)
	}
	if err := store.SaveCategories(ctx, category.Defaults()); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	snap, err := TakeSnapshot(ctx, store)
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	restored := storage.NewMemoryStore()
	if err := Import(ctx, restored, data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	transactions, err := restored.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(transactions) != 1 || transactions[0].ID != "t1" {
		t.Fatalf("restored transactions = %+v", transactions)
	}
	budgets, err := restored.Budgets(ctx)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 || !budgets[0].Amount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("restored budgets = %+v", budgets)
	}
	categories, err := restored.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) != 10 {
		t.Fatalf("restored %d categories, want 10", len(categories))
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	snap, err := TakeSnapshot(context.Background(), seededStore(t))
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	for _, key := range []string{"transactions", "recurringTransactions", "budgets", "categories", "settings"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("snapshot missing key %q", key)
		}
	}
}

func TestImportPartial(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	doc := `{"budgets": [{"id": "b2", "category": "5", "amount": 120, "month": "2024-05", "alertThreshold": 90}]}`
	if err := Import(ctx, store, []byte(doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	budgets, err := store.Budgets(ctx)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].ID != "b2" {
		t.Fatalf("budgets = %+v, want the imported collection only", budgets)
	}

	transactions, err := store.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatal("absent key overwrote the transaction collection")
	}
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	doc := `{
		"transactions": [{"id": "bad", "amount": -5, "type": "expense", "category": "4", "description": "x", "date": "2024-04-01"}],
		"budgets": []
	}`
	if err := Import(ctx, store, []byte(doc)); err == nil {
		t.Fatal("expected validation error")
	} else if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("error does not name the record: %v", err)
	}

	budgets, err := store.Budgets(ctx)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatal("failed import still modified the store")
	}
}

func TestImportMalformedJSON(t *testing.T) {
	if err := Import(context.Background(), storage.NewMemoryStore(), []byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
