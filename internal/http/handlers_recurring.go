package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.RecurringTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load recurring transactions", "error", err)
		InternalServerError("failed to load recurring transactions").Write(w)
		return
	}
	if templates == nil {
		templates = []core.RecurringTransaction{}
	}
	NewResponse().JSON(templates).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var tpl core.RecurringTransaction
	if err := DecodeBody(r, &tpl); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if err := tpl.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	templates, err := s.store.RecurringTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load recurring transactions", "error", err)
		InternalServerError("failed to load recurring transactions").Write(w)
		return
	}
	templates = append(templates, tpl)
	if err := s.store.SaveRecurringTransactions(r.Context(), templates); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save recurring transactions", "error", err)
		InternalServerError("failed to save recurring transactions").Write(w)
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(tpl).Write(w)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var tpl core.RecurringTransaction
	if err := DecodeBody(r, &tpl); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tpl.ID = id
	if err := tpl.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	templates, err := s.store.RecurringTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load recurring transactions", "error", err)
		InternalServerError("failed to load recurring transactions").Write(w)
		return
	}

	found := false
	for i := range templates {
		if templates[i].ID == id {
			templates[i] = tpl
			found = true
			break
		}
	}
	if !found {
		NotFoundError("recurring transaction not found").Write(w)
		return
	}

	if err := s.store.SaveRecurringTransactions(r.Context(), templates); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save recurring transactions", "error", err)
		InternalServerError("failed to save recurring transactions").Write(w)
		return
	}

	NewResponse().JSON(tpl).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	templates, err := s.store.RecurringTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load recurring transactions", "error", err)
		InternalServerError("failed to load recurring transactions").Write(w)
		return
	}

	kept := templates[:0]
	found := false
	for _, tpl := range templates {
		if tpl.ID == id {
			found = true
			continue
		}
		kept = append(kept, tpl)
	}
	if !found {
		NotFoundError("recurring transaction not found").Write(w)
		return
	}

	if err := s.store.SaveRecurringTransactions(r.Context(), kept); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save recurring transactions", "error", err)
		InternalServerError("failed to save recurring transactions").Write(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMaterialize runs one materialization pass on demand.
func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	summary, err := s.materializer.Run(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Materialization failed", "error", err)
		InternalServerError("materialization failed").Write(w)
		return
	}
	s.invalidateReports()

	NewResponse().JSON(map[string]int{
		"generated":   summary.Generated,
		"deactivated": summary.Deactivated,
		"skipped":     summary.Skipped,
	}).Write(w)
}
