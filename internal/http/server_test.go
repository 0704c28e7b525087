package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	materializer := services.NewMaterializer(store, nil)
	alerts := services.NewAlertService(store, nil)
	s := NewServer(":0", store, materializer, alerts, nil)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s, store
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, r)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	if rec := doRequest(s, "GET", "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := doRequest(s, "GET", "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
}

func TestTransactionCRUD(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "POST", "/transactions",
		`{"amount": 42.5, "type": "expense", "category": "4", "description": "Groceries", "date": "2024-04-03"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}

	rec = doRequest(s, "GET", "/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d transactions, want 1", len(listed))
	}

	rec = doRequest(s, "PUT", "/transactions/"+created.ID,
		`{"amount": 45, "type": "expense", "category": "4", "description": "Groceries and more", "date": "2024-04-03"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, "DELETE", "/transactions/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(s, "DELETE", "/transactions/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"amount":`, http.StatusBadRequest},
		{"negative amount", `{"amount": -5, "type": "expense", "category": "4", "description": "x", "date": "2024-04-01"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"amount": 5, "type": "transfer", "category": "4", "description": "x", "date": "2024-04-01"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"amount": 5, "type": "expense", "category": "4", "description": "x", "date": "01/04/2024"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, "POST", "/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestMaterializeEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	tpl := core.RecurringTransaction{
		ID:          "rec-1",
		Amount:      decimal.NewFromInt(10),
		Type:        core.Expense,
		Category:    "8",
		Description: "Subscription",
		Frequency:   core.Daily,
		StartDate:   core.DateOf(timeNowMinusDays(3)),
		IsActive:    true,
	}
	if err := store.SaveRecurringTransactions(ctx, []core.RecurringTransaction{tpl}); err != nil {
		t.Fatalf("seed templates: %v", err)
	}

	rec := doRequest(s, "POST", "/recurring/materialize", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("materialize status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summary map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary["generated"] != 3 {
		t.Fatalf("generated = %d, want 3", summary["generated"])
	}
}

func TestBudgetStatusEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	budgets := []core.Budget{
		{ID: "b1", Category: "4", Amount: decimal.NewFromInt(100), Month: core.MonthKey("2024-04"), AlertThreshold: 80},
	}
	transactions := []core.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(90), Type: core.Expense, Category: "4", Description: "Food", Date: core.NewDate(2024, 4, 10)},
	}
	if err := store.SaveBudgets(ctx, budgets); err != nil {
		t.Fatalf("seed budgets: %v", err)
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}

	rec := doRequest(s, "GET", "/budgets/status?month=2024-04", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, body = %s", rec.Code, rec.Body.String())
	}
	var entries []budgetStatusEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !entries[0].Status.IsNearLimit || entries[0].Status.IsOverBudget {
		t.Errorf("90%% spend should be near limit: %+v", entries[0].Status)
	}
}

func TestMonthlyReportCaching(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	transactions := []core.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(100), Type: core.Expense, Category: "4", Description: "Food", Date: core.NewDate(2024, 4, 10)},
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}

	rec := doRequest(s, "GET", "/reports/monthly?month=2024-04", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	first := rec.Body.String()

	// Mutating the store directly does not purge the cache, so the
	// report stays stale.
	if err := store.SaveTransactions(ctx, nil); err != nil {
		t.Fatalf("clear transactions: %v", err)
	}
	rec = doRequest(s, "GET", "/reports/monthly?month=2024-04", "")
	if rec.Body.String() != first {
		t.Fatal("cache miss on unchanged server state")
	}

	// A write through the API purges the cache.
	rec = doRequest(s, "POST", "/transactions",
		`{"amount": 1, "type": "expense", "category": "4", "description": "Snack", "date": "2024-04-11"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	rec = doRequest(s, "GET", "/reports/monthly?month=2024-04", "")
	if rec.Body.String() == first {
		t.Fatal("report not recomputed after write")
	}
}

func TestCategoriesDefaultWhenEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "GET", "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	var categories []core.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(categories) != 10 {
		t.Fatalf("got %d categories, want 10 defaults", len(categories))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "POST", "/transactions",
		`{"amount": 12, "type": "expense", "category": "4", "description": "Lunch", "date": "2024-04-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doRequest(s, "GET", "/export/json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	backup := rec.Body.String()

	other, _ := newTestServer(t)
	if rec := doRequest(other, "POST", "/import", backup); rec.Code != http.StatusNoContent {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(other, "GET", "/transactions", "")
	var listed []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Description != "Lunch" {
		t.Fatalf("imported transactions = %+v", listed)
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "POST", "/transactions",
		`{"amount": 12, "type": "expense", "category": "4", "description": "Lunch", "date": "2024-04-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doRequest(s, "GET", "/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Lunch") {
		t.Errorf("csv body missing row: %s", rec.Body.String())
	}
}

func TestImportCSVEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	csv := "Date,Type,Category,Description,Amount\n" +
		"2024-04-02,expense,Food & Dining,Groceries,42.50\n" +
		"2024-04-05,expense,food & dining,Lunch,12.00\n"

	rec := doRequest(s, "POST", "/import/csv", csv)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result["imported"] != 2 {
		t.Errorf("imported = %d, want 2", result["imported"])
	}

	transactions, err := store.Transactions(context.Background())
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("stored transactions = %d, want 2", len(transactions))
	}
	for _, tx := range transactions {
		if tx.Category != "4" {
			t.Errorf("category = %q, want resolved id 4", tx.Category)
		}
		if tx.ID == "" {
			t.Error("imported transaction missing id")
		}
	}
}

func TestImportCSVRejectsUnknownCategory(t *testing.T) {
	s, store := newTestServer(t)

	csv := "Date,Type,Category,Description,Amount\n" +
		"2024-04-02,expense,Food & Dining,Groceries,42.50\n" +
		"2024-04-05,expense,Gambling,Casino,500.00\n"

	rec := doRequest(s, "POST", "/import/csv", csv)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown category") {
		t.Errorf("body = %s", rec.Body.String())
	}

	transactions, err := store.Transactions(context.Background())
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("rejected import should store nothing, got %d transactions", len(transactions))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(s, "GET", "/healthz", "")
	rec := doRequest(s, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, metric := range []string{"http_requests_total", "report_cache_entries", "uptime_seconds"} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s:\n%s", metric, body)
		}
	}
	// The healthz request above must already be counted.
	if strings.Contains(body, "http_requests_total 0") {
		t.Errorf("request counter should not be zero:\n%s", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "GET", "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func timeNowMinusDays(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}
