package report

import (
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// zeroBudgetOverPercent is reported when spending exists against a
// zero-amount budget. The exact figure is a sentinel; anything above 100
// reads as fully over budget, and it keeps the percentage finite for
// JSON payloads.
const zeroBudgetOverPercent = 200

// BudgetStatus is the alert state of one budget against actual spending.
// Near-limit and over-budget are mutually exclusive: near-limit covers
// threshold..100 inclusive, over-budget strictly above 100.
type BudgetStatus struct {
	Percentage   float64 `json:"percentage"`
	IsNearLimit  bool    `json:"isNearLimit"`
	IsOverBudget bool    `json:"isOverBudget"`
}

// CheckBudget sizes spent against the budget amount. A zero-amount
// budget never divides: zero spending reports 0%, any spending reports
// the over-budget sentinel.
func CheckBudget(budget core.Budget, spent decimal.Decimal) BudgetStatus {
	if budget.Amount.IsZero() {
		if spent.IsZero() {
			return BudgetStatus{}
		}
		return BudgetStatus{Percentage: zeroBudgetOverPercent, IsOverBudget: true}
	}

	percentage, _ := spent.Mul(hundred).Div(budget.Amount).Float64()
	return BudgetStatus{
		Percentage:   percentage,
		IsOverBudget: percentage > 100,
		IsNearLimit:  percentage >= float64(budget.AlertThreshold) && percentage <= 100,
	}
}
