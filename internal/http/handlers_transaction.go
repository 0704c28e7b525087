package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"tally/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	NewResponse().JSON(transactions).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := DecodeBody(r, &tx); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}
	transactions = append(transactions, tx)
	if err := s.store.SaveTransactions(r.Context(), transactions); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transactions", "error", err)
		InternalServerError("failed to save transactions").Write(w)
		return
	}
	s.invalidateReports()

	NewResponse().Status(http.StatusCreated).JSON(tx).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var tx core.Transaction
	if err := DecodeBody(r, &tx); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}

	found := false
	for i := range transactions {
		if transactions[i].ID == id {
			transactions[i] = tx
			found = true
			break
		}
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}

	if err := s.store.SaveTransactions(r.Context(), transactions); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transactions", "error", err)
		InternalServerError("failed to save transactions").Write(w)
		return
	}
	s.invalidateReports()

	NewResponse().JSON(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}

	kept := transactions[:0]
	found := false
	for _, tx := range transactions {
		if tx.ID == id {
			found = true
			continue
		}
		kept = append(kept, tx)
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}

	if err := s.store.SaveTransactions(r.Context(), kept); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transactions", "error", err)
		InternalServerError("failed to save transactions").Write(w)
		return
	}
	s.invalidateReports()

	w.WriteHeader(http.StatusNoContent)
}
