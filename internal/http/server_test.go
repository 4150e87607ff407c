package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"digitwin/internal/config"
	"digitwin/internal/log"
	"digitwin/internal/services"
	"digitwin/internal/storage"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	budgets := services.NewBudgetService(repo, logger)
	svc := Services{
		Expenses:  services.NewExpenseService(repo, budgets, logger),
		Budgets:   budgets,
		Summaries: services.NewSummaryService(repo, logger),
		Goals:     services.NewGoalService(repo, logger),
		Tasks:     services.NewTaskService(repo, logger),
		Profiles:  services.NewProfileService(repo, nil, logger),
		Imports:   services.NewImportService(repo, nil, 30, logger),
	}

	cfg := &config.Config{Port: "0", JWTSecret: testSecret}
	srv := NewServer(cfg, svc, logger)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthzIsPublic(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/expenses"},
		{http.MethodGet, "/api/budgets/2025/3"},
		{http.MethodGet, "/api/goals"},
		{http.MethodGet, "/api/profile"},
	}
	for _, p := range paths {
		rec := doRequest(t, srv, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/expenses", signed, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", rec.Code)
	}
}

func TestExpenseFlow(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"name":     "groceries",
		"amount":   "50.00",
		"category": "Food",
		"date":     "2025-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/expenses = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeJSON(t, rec)
	if created["amount"] != "50.00" {
		t.Errorf("amount = %v, want 50.00", created["amount"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/budgets/2025/3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/budgets = %d", rec.Code)
	}
	budget := decodeJSON(t, rec)
	if budget["spent"] != "50.00" {
		t.Errorf("spent = %v, want 50.00", budget["spent"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/summary/2025/3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/summary = %d", rec.Code)
	}
	summary := decodeJSON(t, rec)
	categories, ok := summary["categories"].([]any)
	if !ok || len(categories) != 1 {
		t.Fatalf("categories = %v, want one entry", summary["categories"])
	}

	// Another user must not see the expense.
	rec = doRequest(t, srv, http.MethodGet, "/api/expenses?month=3&year=2025", signToken(t, "u2"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/expenses as u2 = %d", rec.Code)
	}
	other := decodeJSON(t, rec)
	if list, ok := other["expenses"].([]any); !ok || len(list) != 0 {
		t.Errorf("u2 expenses = %v, want empty", other["expenses"])
	}
}

func TestExpenseValidationMapsTo400(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"name":   "bad",
		"amount": "-5.00",
		"date":   "2025-03-10",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative amount = %d, want 400", rec.Code)
	}
}

func TestMissingExpenseMapsTo404(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodDelete, "/api/expenses/nope", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing = %d, want 404", rec.Code)
	}
}

func TestGoalDeleteRequiresReason(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPost, "/api/goals", token, map[string]any{
		"name":   "Vacation",
		"saved":  "250.00",
		"target": "1000.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/goals = %d, body %s", rec.Code, rec.Body.String())
	}
	goal := decodeJSON(t, rec)
	if pct, ok := goal["percentComplete"].(float64); !ok || int(pct) != 25 {
		t.Errorf("percentComplete = %v, want 25", goal["percentComplete"])
	}
	id := goal["id"].(string)

	rec = doRequest(t, srv, http.MethodDelete, "/api/goals/"+id, token, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete without reason = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/goals/"+id, token, map[string]any{
		"reason": "completed",
	})
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete with reason = %d, want 204", rec.Code)
	}
}

func TestGoalPartialUpdateKeepsOmittedFields(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPost, "/api/goals", token, map[string]any{
		"name":   "Emergency fund",
		"saved":  "250.00",
		"target": "1000.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/goals = %d, body %s", rec.Code, rec.Body.String())
	}
	id := decodeJSON(t, rec)["id"].(string)

	// Only saved is sent; name and target must survive.
	rec = doRequest(t, srv, http.MethodPut, "/api/goals/"+id, token, map[string]any{
		"saved": "500.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/goals = %d, body %s", rec.Code, rec.Body.String())
	}
	goal := decodeJSON(t, rec)
	if goal["name"] != "Emergency fund" {
		t.Errorf("name = %v, want Emergency fund", goal["name"])
	}
	if goal["target"] != "1000.00" {
		t.Errorf("target = %v, want 1000.00", goal["target"])
	}
	if pct, ok := goal["percentComplete"].(float64); !ok || int(pct) != 50 {
		t.Errorf("percentComplete = %v, want 50", goal["percentComplete"])
	}
}

func TestProfileRoundTripSeedsBudget(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPut, "/api/profile", token, map[string]any{
		"monthlyIncome": "5000.00",
		"monthlyBudget": "3000.00",
		"paysRent":      true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/profile = %d, body %s", rec.Code, rec.Body.String())
	}

	now := time.Now()
	path := "/api/budgets/" + now.Format("2006") + "/" + now.Format("1")
	rec = doRequest(t, srv, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", path, rec.Code)
	}
	budget := decodeJSON(t, rec)
	if budget["budget"] != "3000.00" {
		t.Errorf("seeded budget = %v, want 3000.00", budget["budget"])
	}
}

func TestBankEndpointsWithoutProviderMapTo502(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	paths := []string{
		"/api/plaid/create-link-token",
		"/api/plaid/exchange-token",
		"/api/plaid/sync-transactions",
	}
	for _, path := range paths {
		rec := doRequest(t, srv, http.MethodPost, path, token, map[string]any{
			"publicToken": "public-tok",
		})
		if rec.Code != http.StatusBadGateway {
			t.Errorf("POST %s without provider = %d, want 502", path, rec.Code)
		}
	}
}

func TestManualTransactionSigning(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t, "u1")

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", token, map[string]any{
		"name":   "Dinner",
		"amount": "42.50",
		"type":   "expense",
		"date":   "2025-03-12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/transactions = %d, body %s", rec.Code, rec.Body.String())
	}
	txn := decodeJSON(t, rec)
	if txn["amount"] != "-42.50" {
		t.Errorf("expense amount = %v, want -42.50", txn["amount"])
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/transactions", token, map[string]any{
		"name":   "Salary",
		"amount": "1000.00",
		"type":   "income",
		"date":   "2025-03-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("income POST = %d", rec.Code)
	}
	txn = decodeJSON(t, rec)
	if txn["amount"] != "1000.00" {
		t.Errorf("income amount = %v, want 1000.00", txn["amount"])
	}
}
