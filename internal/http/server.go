package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tally/internal/cache"
	"tally/internal/middleware/trace"
	"tally/internal/report"
	"tally/internal/services"
	"tally/internal/storage"
)

// Options tunes the server beyond its address.
type Options struct {
	ReportCacheSize int
	ReportCacheTTL  time.Duration
}

func (o *Options) withDefaults() Options {
	opts := Options{
		ReportCacheSize: 64,
		ReportCacheTTL:  5 * time.Minute,
	}
	if o == nil {
		return opts
	}
	if o.ReportCacheSize > 0 {
		opts.ReportCacheSize = o.ReportCacheSize
	}
	if o.ReportCacheTTL > 0 {
		opts.ReportCacheTTL = o.ReportCacheTTL
	}
	return opts
}

type Server struct {
	http.Server
	store        storage.Store
	materializer *services.Materializer
	alerts       *services.AlertService

	// Monthly reports are cached until the next write; any mutation
	// purges the whole cache.
	reportCache  *cache.LRUCache[report.MonthlyReport]
	cacheManager *cache.Manager

	tracer    *trace.Middleware
	startedAt time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store storage.Store, materializer *services.Materializer, alerts *services.AlertService, opts *Options) *Server {
	o := opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		store:        store,
		materializer: materializer,
		alerts:       alerts,
		reportCache:  cache.NewLRUCache[report.MonthlyReport](o.ReportCacheSize, o.ReportCacheTTL),
		cacheManager: cache.NewManager(),
		tracer:       trace.NewMiddleware(),
		startedAt:    time.Now(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /recurring", s.handleListRecurring)
	mux.HandleFunc("POST /recurring", s.handleCreateRecurring)
	mux.HandleFunc("PUT /recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /recurring/materialize", s.handleMaterialize)

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("GET /budgets/status", s.handleBudgetStatus)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories", s.handleReplaceCategories)

	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)

	mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /export/json", s.handleExportJSON)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("POST /import/csv", s.handleImportCSV)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(securityHeaders(mux)),
	}

	return s
}

// securityHeaders sets conservative defaults on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateReports drops cached reports after any write.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleMetrics exposes counters in a Prometheus-compatible text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", s.tracer.TotalRequests())

	fmt.Fprintf(w, "# HELP report_cache_entries Currently cached monthly reports\n")
	fmt.Fprintf(w, "# TYPE report_cache_entries gauge\n")
	fmt.Fprintf(w, "report_cache_entries %d\n\n", s.reportCache.Size())

	fmt.Fprintf(w, "# HELP uptime_seconds Server uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Settings(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
