// Package report computes the monthly aggregates behind the dashboard:
// income/expense totals, category breakdowns and budget alert status.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

var hundred = decimal.NewFromInt(100)

type (
	// Totals are the income/expense sums for one month.
	Totals struct {
		Income  decimal.Decimal `json:"totalIncome"`
		Expense decimal.Decimal `json:"totalExpense"`
		Balance decimal.Decimal `json:"balance"`
	}

	// CategoryAmount is one category's share of a month's total for a
	// transaction type. Category holds the raw id; display name
	// resolution is the registry's job.
	CategoryAmount struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage float64         `json:"percentage"`
	}

	// MonthlyReport is the dashboard payload for one month.
	MonthlyReport struct {
		Month             core.MonthKey    `json:"month"`
		TotalIncome       decimal.Decimal  `json:"totalIncome"`
		TotalExpense      decimal.Decimal  `json:"totalExpense"`
		Balance           decimal.Decimal  `json:"balance"`
		CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
	}
)

// MonthlyTotals sums the month's transactions by type. An empty month
// yields all zeros.
func MonthlyTotals(transactions []core.Transaction, month core.MonthKey) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		if !month.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// CategoryBreakdown groups the month's transactions of one type by
// category id and sizes each group against the type's total. The result
// is sorted by amount descending, ties broken by category id ascending,
// so equal inputs always render identically. Percentages are 0 when the
// total is 0; there is no division in that case.
func CategoryBreakdown(transactions []core.Transaction, month core.MonthKey, typ core.TransactionType) []CategoryAmount {
	sums := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Type != typ || !month.Contains(tx.Date) {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for id, amount := range sums {
		ca := CategoryAmount{Category: id, Amount: amount}
		if total.IsPositive() {
			ca.Percentage, _ = amount.Mul(hundred).Div(total).Float64()
		}
		out = append(out, ca)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Spent sums the month's expenses for one category, feeding budget
// checks. Grouping is by raw id; dangling references still count.
func Spent(transactions []core.Transaction, month core.MonthKey, categoryID string) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == core.Expense && tx.Category == categoryID && month.Contains(tx.Date) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// Monthly assembles the full dashboard report for a month. The breakdown
// covers expenses, matching what the charts plot.
func Monthly(transactions []core.Transaction, month core.MonthKey) MonthlyReport {
	totals := MonthlyTotals(transactions, month)
	return MonthlyReport{
		Month:             month,
		TotalIncome:       totals.Income,
		TotalExpense:      totals.Expense,
		Balance:           totals.Balance,
		CategoryBreakdown: CategoryBreakdown(transactions, month, core.Expense),
	}
}
