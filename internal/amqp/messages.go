package amqp

import (
	"encoding/json"
	"time"

	"tally/internal/core"
)

// TransactionCreatedMessage announces one materialized transaction. It
// carries just enough for consumers to decide what to re-evaluate; the
// full record lives in the store.
type TransactionCreatedMessage struct {
	ID          string    `json:"id"`
	RecurringID string    `json:"recurringId,omitempty"`
	Category    string    `json:"category"`
	Month       string    `json:"month"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(tx core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:          tx.ID,
		RecurringID: tx.RecurringID,
		Category:    tx.Category,
		Month:       tx.Date.MonthKey().String(),
		Timestamp:   time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlertMessage announces a budget crossing its alert threshold or
// going over. External automations (notifiers, dashboards) consume these.
type BudgetAlertMessage struct {
	BudgetID   string    `json:"budgetId"`
	Category   string    `json:"category"`
	Month      string    `json:"month"`
	Percentage float64   `json:"percentage"`
	OverBudget bool      `json:"overBudget"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(budget core.Budget, percentage float64, overBudget bool) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		BudgetID:   budget.ID,
		Category:   budget.Category,
		Month:      budget.Month.String(),
		Percentage: percentage,
		OverBudget: overBudget,
		Timestamp:  time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
