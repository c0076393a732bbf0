package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zenwallet/internal/core"
	"zenwallet/internal/services"
	"zenwallet/internal/storage"
)

func newTestServer(t *testing.T, state core.AppState) *Server {
	t.Helper()
	svc := services.NewStateService(storage.NewMemoryStoreWith(state), nil, nil)
	s := NewServer(":0", svc, nil)
	t.Cleanup(func() {
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
	})
	return s
}

func seedState() core.AppState {
	return core.AppState{
		Wallets: []core.Wallet{
			{ID: "w-1", Name: "Main Savings", Balance: core.Money{Cents: 100000}, Type: "Bank Account", Color: "#3b82f6"},
		},
		Transactions: []core.Transaction{
			{ID: "t-1", WalletID: "w-1", Amount: core.Money{Cents: 2500}, Type: core.Expense, CategoryID: "cat-1",
				Date: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
		},
		Schedules: []core.Schedule{},
	}
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.RemoteAddr = "203.0.113.10:55555"
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetStateDerivesBalances(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/state status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view struct {
		Wallets []struct {
			ID             string `json:"id"`
			Balance        int64  `json:"balance"`
			CurrentBalance int64  `json:"currentBalance"`
		} `json:"wallets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(view.Wallets) != 1 {
		t.Fatalf("got %d wallets, want 1", len(view.Wallets))
	}
	if view.Wallets[0].Balance != 100000 {
		t.Fatalf("baseline = %d, want 100000", view.Wallets[0].Balance)
	}
	if view.Wallets[0].CurrentBalance != 97500 {
		t.Fatalf("currentBalance = %d, want 97500", view.Wallets[0].CurrentBalance)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t, seedState())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid expense",
			body:       `{"walletId":"w-1","amount":500,"type":"EXPENSE","categoryId":"cat-1","date":"2024-03-06T10:00:00Z","note":"coffee"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero amount",
			body:       `{"walletId":"w-1","amount":0,"type":"EXPENSE","categoryId":"cat-1","date":"2024-03-06T10:00:00Z","note":""}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "transfer with category",
			body:       `{"walletId":"w-1","toWalletId":"w-2","amount":500,"type":"TRANSFER","categoryId":"cat-1","date":"2024-03-06T10:00:00Z","note":""}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed json",
			body:       `{"walletId":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"walletId":"w-1","amount":500,"type":"EXPENSE","categoryId":"cat-1","date":"2024-03-06T10:00:00Z","note":"","walet":"typo"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestScheduleEndpoints(t *testing.T) {
	state := seedState()
	state.Schedules = []core.Schedule{{
		ID: "sch-1", Name: "Rent", Amount: core.Money{Cents: 120000},
		Type: core.Expense, CategoryID: "cat-4", WalletID: "w-1",
		Frequency: core.Monthly, DayOfMonth: 1,
		NextRun:  time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
		IsActive: true,
	}}
	s := newTestServer(t, state)

	// Toggle pauses it.
	rec := doRequest(s, http.MethodPost, "/api/schedules/sch-1/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var toggled core.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("toggle did not pause the schedule")
	}

	// Manual run on a paused schedule conflicts.
	rec = doRequest(s, http.MethodPost, "/api/schedules/sch-1/run", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("run on paused schedule status = %d, want 409", rec.Code)
	}

	// Reactivate, then run fires one transaction.
	doRequest(s, http.MethodPost, "/api/schedules/sch-1/toggle", "")
	rec = doRequest(s, http.MethodPost, "/api/schedules/sch-1/run", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("run status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var tx core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if tx.Amount.Cents != 120000 || tx.Type != core.Expense {
		t.Fatalf("fired transaction = %+v", tx)
	}

	// Unknown schedule is a 404.
	rec = doRequest(s, http.MethodPost, "/api/schedules/missing/run", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("run on missing schedule status = %d, want 404", rec.Code)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	state := seedState()
	state.Schedules = []core.Schedule{{
		ID: "sch-1", Name: "Rent", Amount: core.Money{Cents: 120000},
		Type: core.Expense, CategoryID: "cat-4", WalletID: "w-1",
		Frequency: core.Monthly, DayOfMonth: 1,
		NextRun:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		IsActive: true,
	}}
	s := newTestServer(t, state)

	rec := doRequest(s, http.MethodPost, "/api/schedules/reconcile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reconcile status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Fired  int `json:"fired"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode reconcile response: %v", err)
	}
	if result.Fired < 1 {
		t.Fatalf("reconcile fired %d occurrences, want at least 1", result.Fired)
	}
	if result.Failed != 0 {
		t.Fatalf("reconcile failed on %d schedules", result.Failed)
	}
}

func TestImportRejectsJunk(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodPost, "/api/import", `{"categories": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("import junk status = %d, want 400", rec.Code)
	}

	// The state survives the rejected import.
	rec = doRequest(s, http.MethodGet, "/api/state", "")
	var view stateView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(view.Wallets) != 1 {
		t.Fatal("rejected import mutated the state")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "zenwallet-backup.json") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	fresh := newTestServer(t, core.AppState{Wallets: []core.Wallet{}, Transactions: []core.Transaction{}})
	rec = doRequest(fresh, http.MethodPost, "/api/import", rec.Body.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view stateView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if len(view.Wallets) != 1 || view.Wallets[0].ID != "w-1" {
		t.Fatal("import did not restore the exported wallet")
	}
}

func TestMonthOverviewEndpoint(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodGet, "/api/summary?year=2024&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ov core.MonthOverview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if ov.TotalExpense.Cents != 2500 {
		t.Fatalf("TotalExpense = %d, want 2500", ov.TotalExpense.Cents)
	}

	rec = doRequest(s, http.MethodGet, "/api/summary?year=2024&month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("summary with month=13 status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t, seedState())

	rec := doRequest(s, http.MethodGet, "/api/state", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'none'") {
		t.Fatalf("Content-Security-Policy = %q", got)
	}
}
