package amqp

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func TestNewTransactionCreatedMessage(t *testing.T) {
	tx := core.Transaction{
		ID:          "tx-1",
		RecurringID: "rec-1",
		Category:    "1",
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(1200),
		Description: "Rent",
		Date:        core.NewDate(2024, 4, 1),
	}

	msg := NewTransactionCreatedMessage(tx)

	if msg.ID != "tx-1" {
		t.Errorf("ID = %v, want tx-1", msg.ID)
	}
	if msg.RecurringID != "rec-1" {
		t.Errorf("RecurringID = %v, want rec-1", msg.RecurringID)
	}
	if msg.Category != "1" {
		t.Errorf("Category = %v, want 1", msg.Category)
	}
	if msg.Month != "2024-04" {
		t.Errorf("Month = %v, want 2024-04", msg.Month)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestNewBudgetAlertMessage(t *testing.T) {
	budget := core.Budget{
		ID:             "b-1",
		Category:       "2",
		Month:          core.MonthKey("2024-04"),
		Amount:         decimal.NewFromInt(400),
		AlertThreshold: 80,
	}

	msg := NewBudgetAlertMessage(budget, 87.5, false)

	if msg.BudgetID != "b-1" {
		t.Errorf("BudgetID = %v, want b-1", msg.BudgetID)
	}
	if msg.Category != "2" {
		t.Errorf("Category = %v, want 2", msg.Category)
	}
	if msg.Month != "2024-04" {
		t.Errorf("Month = %v, want 2024-04", msg.Month)
	}
	if msg.Percentage != 87.5 {
		t.Errorf("Percentage = %v, want 87.5", msg.Percentage)
	}
	if msg.OverBudget {
		t.Error("OverBudget should be false")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestTransactionCreatedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	msg := &TransactionCreatedMessage{
		ID:          "tx-1",
		RecurringID: "rec-1",
		Category:    "1",
		Month:       "2024-04",
		Timestamp:   timestamp,
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionCreatedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionCreatedMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if parsed.Month != msg.Month {
		t.Errorf("Parsed Month = %v, want %v", parsed.Month, msg.Month)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestBudgetAlertMessageFromJSON_Invalid(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte(`{"percentage": "high"}`)); err == nil {
		t.Error("BudgetAlertMessageFromJSON() should fail on malformed payload")
	}
}
