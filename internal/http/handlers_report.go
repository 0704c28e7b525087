package http

import (
	"log/slog"
	"net/http"

	"tally/internal/report"
)

// handleMonthlyReport serves the month's totals and category breakdown.
// Reports are cached per month until the next write.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if cached, ok := s.reportCache.Get(month.String()); ok {
		NewResponse().JSON(cached).Write(w)
		return
	}

	transactions, err := s.store.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		InternalServerError("failed to load transactions").Write(w)
		return
	}

	monthly := report.Monthly(transactions, month)
	s.reportCache.Set(month.String(), monthly)

	NewResponse().JSON(monthly).Write(w)
}
