package category

import "tally/internal/core"

// Defaults returns the categories seeded on first run, before the user
// has customized any.
func Defaults() []core.Category {
	return []core.Category{
		{ID: "1", Name: "Salary", Type: core.Income, Color: "#10b981"},
		{ID: "2", Name: "Freelance", Type: core.Income, Color: "#3b82f6"},
		{ID: "3", Name: "Investments", Type: core.Income, Color: "#8b5cf6"},
		{ID: "4", Name: "Food & Dining", Type: core.Expense, Color: "#ef4444"},
		{ID: "5", Name: "Transportation", Type: core.Expense, Color: "#f59e0b"},
		{ID: "6", Name: "Shopping", Type: core.Expense, Color: "#ec4899"},
		{ID: "7", Name: "Entertainment", Type: core.Expense, Color: "#06b6d4"},
		{ID: "8", Name: "Bills & Utilities", Type: core.Expense, Color: "#6366f1"},
		{ID: "9", Name: "Healthcare", Type: core.Expense, Color: "#14b8a6"},
		{ID: "10", Name: "Other", Type: core.Expense, Color: "#64748b"},
	}
}
