package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/export"
	"github.com/romaric67/bdget-app/internal/kv"
	"github.com/romaric67/bdget-app/internal/ledger"
	"github.com/romaric67/bdget-app/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemoryStore()

	ledgerSvc := services.NewLedgerService(ledger.Open(ctx, store, nil, nil), nil, nil)
	sink := export.NewFileSink(t.TempDir(), nil, nil)
	budgetSvc := services.NewBudgetService(budget.Open(ctx, store, nil, nil), sink, nil, nil)

	srv := NewServer(":0", ledgerSvc, budgetSvc, nil)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/ledger/transactions",
		`{"amount":"1500","category":"Transport","type":"expense","description":"bus"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var txn core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txn); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if txn.ID == "" || txn.Amount != 1500 || txn.Type != core.Expense {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/ledger/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != txn.ID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{not json`, http.StatusBadRequest},
		{"non-numeric amount", `{"amount":"abc","category":"Transport","type":"expense"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"amount":"-5","category":"Transport","type":"expense"}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"amount":"0","category":"Transport","type":"expense"}`, http.StatusUnprocessableEntity},
		{"empty category", `{"amount":"10","category":"  ","type":"expense"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"amount":"10","category":"Transport","type":"transfer"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/ledger/transactions", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}

	// A free-form category outside the default list is accepted.
	rr := doJSON(t, srv, http.MethodPost, "/api/ledger/transactions",
		`{"amount":"10","category":"Cadeaux","type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("free-form category rejected: %d", rr.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/ledger/transactions",
		`{"amount":"100","category":"Autre","type":"income"}`)
	var txn core.Transaction
	json.Unmarshal(rr.Body.Bytes(), &txn)

	rr = doJSON(t, srv, http.MethodDelete, "/api/ledger/transactions/"+txn.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	// Deleting an unknown id is still a 204.
	rr = doJSON(t, srv, http.MethodDelete, "/api/ledger/transactions/nope", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete unknown id status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/ledger/summary", "")
	var sum core.LedgerSummary
	json.Unmarshal(rr.Body.Bytes(), &sum)
	if sum.Count != 0 {
		t.Fatalf("summary count = %d after delete", sum.Count)
	}
}

func TestLedgerSummary(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/ledger/transactions",
		`{"amount":"200","category":"Autre","type":"income"}`)
	doJSON(t, srv, http.MethodPost, "/api/ledger/transactions",
		`{"amount":"80","category":"Transport","type":"expense"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/ledger/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	var sum core.LedgerSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Balance != 120 || sum.TotalIncome != 200 || sum.TotalExpenses != 80 || sum.Count != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/ledger/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rr.Code)
	}
	var resp map[string][]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	cats := resp["categories"]
	if len(cats) != 6 || cats[0] != "Alimentation" || cats[5] != "Autre" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestBudgetFieldLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPut, "/api/budget/fields/salary", `{"value":"200000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set field status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Values map[string]string `json:"values"`
		Totals core.BudgetTotals `json:"totals"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Values["salary"] != "200000" || resp.Totals.TotalIncome != 200000 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Unknown field is rejected with the key named in the error.
	rr = doJSON(t, srv, http.MethodPut, "/api/budget/fields/yacht", `{"value":"1"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown field status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "yacht") {
		t.Fatalf("error should name the field: %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budget/reset", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/budget", "")
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Values["salary"] != "" || resp.Totals.TotalIncome != 0 {
		t.Fatalf("reset did not clear the form: %+v", resp)
	}
}

func TestBudgetReportDownload(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPut, "/api/budget/fields/salary", `{"value":"200000"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/budget/report.csv", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "budget_") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rr.Body.String(), "BUDGET MANAGER - FCFA") {
		t.Fatalf("report body:\n%s", rr.Body.String())
	}
}

func TestBudgetShareText(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPut, "/api/budget/fields/salary", `{"value":"150000"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/budget/share-text", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("share text status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "MON BUDGET PERSONNEL") {
		t.Fatalf("share text body:\n%s", rr.Body.String())
	}
}

func TestBudgetExport(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPut, "/api/budget/fields/salary", `{"value":"200000"}`)

	rr := doJSON(t, srv, http.MethodPost, "/api/budget/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["path"] == "" {
		t.Fatal("export response missing path")
	}
	data, err := os.ReadFile(resp["path"])
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "BUDGET MANAGER - FCFA") {
		t.Fatalf("exported file content:\n%s", data)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/ledger/transactions"},
		{http.MethodPost, "/api/ledger/summary"},
		{http.MethodDelete, "/api/budget"},
		{http.MethodGet, "/api/budget/export"},
	}
	for _, tt := range tests {
		rr := doJSON(t, srv, tt.method, tt.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d, want 405", tt.method, tt.path, rr.Code)
		}
		if rr.Header().Get("Allow") == "" {
			t.Fatalf("%s %s missing Allow header", tt.method, tt.path)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/budget", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing X-Content-Type-Options header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing X-Frame-Options header")
	}
}
