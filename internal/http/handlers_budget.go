package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/report"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.Budgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load budgets", "error", err)
		InternalServerError("failed to load budgets").Write(w)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	NewResponse().JSON(budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var budget core.Budget
	if err := DecodeBody(r, &budget); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	if err := budget.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	budgets, err := s.store.Budgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load budgets", "error", err)
		InternalServerError("failed to load budgets").Write(w)
		return
	}
	for _, existing := range budgets {
		if existing.Category == budget.Category && existing.Month == budget.Month {
			ErrorResponse(http.StatusConflict, "budget already exists for this category and month").Write(w)
			return
		}
	}
	budgets = append(budgets, budget)
	if err := s.store.SaveBudgets(r.Context(), budgets); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save budgets", "error", err)
		InternalServerError("failed to save budgets").Write(w)
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(budget).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var budget core.Budget
	if err := DecodeBody(r, &budget); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	budget.ID = id
	if err := budget.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	budgets, err := s.store.Budgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load budgets", "error", err)
		InternalServerError("failed to load budgets").Write(w)
		return
	}

	found := false
	for i := range budgets {
		if budgets[i].ID == id {
			budgets[i] = budget
			found = true
			break
		}
	}
	if !found {
		NotFoundError("budget not found").Write(w)
		return
	}

	if err := s.store.SaveBudgets(r.Context(), budgets); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save budgets", "error", err)
		InternalServerError("failed to save budgets").Write(w)
		return
	}

	NewResponse().JSON(budget).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	budgets, err := s.store.Budgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load budgets", "error", err)
		InternalServerError("failed to load budgets").Write(w)
		return
	}

	kept := budgets[:0]
	found := false
	for _, b := range budgets {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		NotFoundError("budget not found").Write(w)
		return
	}

	if err := s.store.SaveBudgets(r.Context(), kept); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save budgets", "error", err)
		InternalServerError("failed to save budgets").Write(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// budgetStatusEntry pairs a budget with its computed status.
type budgetStatusEntry struct {
	Budget core.Budget         `json:"budget"`
	Spent  float64             `json:"spent"`
	Status report.BudgetStatus `json:"status"`
}

// handleBudgetStatus reports every budget of the month with its spending
// status, alerting or not.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	budgets, err := s.store.Budgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load budgets", "error", err)
		InternalServerError("failed to load budgets").Write(w)
		return
	}
	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}

	entries := []budgetStatusEntry{}
	for _, budget := range budgets {
		if budget.Month != month {
			continue
		}
		spent := report.Spent(transactions, month, budget.Category)
		spentValue, _ := spent.Float64()
		entries = append(entries, budgetStatusEntry{
			Budget: budget,
			Spent:  spentValue,
			Status: report.CheckBudget(budget, spent),
		})
	}

	NewResponse().JSON(entries).Write(w)
}
