package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/report"
	"tally/internal/storage"
)

// BudgetAlert pairs a budget with its computed status for one month.
type BudgetAlert struct {
	Budget core.Budget
	Spent  float64
	Status report.BudgetStatus
}

// AlertService evaluates budgets against actual spending and publishes
// near-limit and over-budget notifications.
type AlertService struct {
	store  storage.Store
	events *amqp.Client
}

// NewAlertService creates an alert service. The events client may be
// nil; evaluation then runs without publishing.
func NewAlertService(store storage.Store, events *amqp.Client) *AlertService {
	return &AlertService{
		store:  store,
		events: events,
	}
}

// Evaluate checks every budget for the given month and returns the ones
// that are near their limit or over it. Budgets under the alert
// threshold produce nothing.
func (s *AlertService) Evaluate(ctx context.Context, month core.MonthKey) ([]BudgetAlert, error) {
	budgets, err := s.store.Budgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	var alerts []BudgetAlert
	for _, budget := range budgets {
		if budget.Month != month {
			continue
		}
		spent := report.Spent(transactions, month, budget.Category)
		status := report.CheckBudget(budget, spent)
		if !status.IsNearLimit && !status.IsOverBudget {
			continue
		}
		spentValue, _ := spent.Float64()
		alerts = append(alerts, BudgetAlert{
			Budget: budget,
			Spent:  spentValue,
			Status: status,
		})
	}

	s.publishAlerts(ctx, month, alerts)

	slog.InfoContext(ctx, "Budget evaluation complete",
		"month", string(month),
		"alerts", len(alerts))

	return alerts, nil
}

func (s *AlertService) publishAlerts(ctx context.Context, month core.MonthKey, alerts []BudgetAlert) {
	if s.events == nil {
		return
	}
	for _, alert := range alerts {
		msg := amqp.NewBudgetAlertMessage(alert.Budget, alert.Status.Percentage, alert.Status.IsOverBudget)
		if err := s.events.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"budget_id", alert.Budget.ID,
				"month", string(month),
				"error", err)
		}
	}
}
