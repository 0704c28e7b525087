package http

import (
	"log/slog"
	"net/http"

	"tally/internal/category"
	"tally/internal/core"
)

// handleListCategories returns the stored categories, or the defaults
// when none have been saved yet.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load categories", "error", err)
		InternalServerError("failed to load categories").Write(w)
		return
	}
	if len(categories) == 0 {
		categories = category.Defaults()
	}
	NewResponse().JSON(categories).Write(w)
}

// handleReplaceCategories replaces the whole category collection.
func (s *Server) handleReplaceCategories(w http.ResponseWriter, r *http.Request) {
	var categories []core.Category
	if err := DecodeBody(r, &categories); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
	}

	if err := s.store.SaveCategories(r.Context(), categories); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save categories", "error", err)
		InternalServerError("failed to save categories").Write(w)
		return
	}
	s.invalidateReports()

	NewResponse().JSON(categories).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		InternalServerError("failed to load settings").Write(w)
		return
	}
	NewResponse().JSON(settings).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := DecodeBody(r, &settings); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save settings", "error", err)
		InternalServerError("failed to save settings").Write(w)
		return
	}

	NewResponse().JSON(settings).Write(w)
}
