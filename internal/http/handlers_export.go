package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/export"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load categories", "error", err)
		InternalServerError("failed to load categories").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, transactions, category.NewRegistry(categories)); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		InternalServerError("csv export failed").Write(w)
		return
	}

	NewResponse().
		Header("Content-Disposition", `attachment; filename="transactions.csv"`).
		Body("text/csv; charset=utf-8", buf.Bytes()).
		Write(w)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := export.TakeSnapshot(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot failed", "error", err)
		InternalServerError("snapshot failed").Write(w)
		return
	}
	data, err := export.MarshalSnapshot(snap)
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot encoding failed", "error", err)
		InternalServerError("snapshot encoding failed").Write(w)
		return
	}

	NewResponse().
		Header("Content-Disposition", `attachment; filename="tally-backup.json"`).
		Body("application/json; charset=utf-8", data).
		Write(w)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := ReadBody(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	drafts, err := export.ParseCSV(bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(r.Context(), "CSV import rejected", "error", err)
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	categories, err := s.store.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load categories", "error", err)
		InternalServerError("failed to load categories").Write(w)
		return
	}
	registry := category.NewRegistry(categories)

	imported := make([]core.Transaction, 0, len(drafts))
	for i, draft := range drafts {
		categoryID, ok := registry.IDByName(draft.CategoryName)
		if !ok {
			UnprocessableEntityError(fmt.Sprintf("row %d: unknown category %q", i+1, draft.CategoryName)).Write(w)
			return
		}
		tx := core.Transaction{
			ID:          uuid.NewString(),
			Amount:      draft.Amount,
			Type:        draft.Type,
			Category:    categoryID,
			Description: draft.Description,
			Date:        draft.Date,
		}
		if err := tx.Validate(); err != nil {
			UnprocessableEntityError(fmt.Sprintf("row %d: %v", i+1, err)).Write(w)
			return
		}
		imported = append(imported, tx)
	}

	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}
	if err := s.store.SaveTransactions(r.Context(), append(transactions, imported...)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transactions", "error", err)
		InternalServerError("failed to save transactions").Write(w)
		return
	}
	s.invalidateReports()

	NewResponse().Status(http.StatusCreated).JSON(map[string]int{"imported": len(imported)}).Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := ReadBody(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := export.Import(r.Context(), s.store, body); err != nil {
		slog.WarnContext(r.Context(), "Import rejected", "error", err)
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	s.invalidateReports()

	w.WriteHeader(http.StatusNoContent)
}
