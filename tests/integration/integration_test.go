package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/config"
	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/handler"
	"github.com/mymoney-app/mymoney-go/internal/infra/cache"
	"github.com/mymoney-app/mymoney-go/internal/infra/observability"
	"github.com/mymoney-app/mymoney-go/internal/infra/resilience"
	"github.com/mymoney-app/mymoney-go/internal/infra/supabase"
	"github.com/mymoney-app/mymoney-go/internal/service"
)

// fakePostgREST serves a handful of tables the way PostgREST does: GET
// returns filtered JSON arrays, POST echoes the inserted row back.
func fakePostgREST(t *testing.T) *httptest.Server {
	t.Helper()

	transactions := []map[string]any{
		{
			"id": "tx-1", "user_id": "u1", "month_period": "2025-06",
			"type": "expected_income", "amount": 1000,
			"date": "2025-06-05T00:00:00Z", "category": "Salary",
		},
		{
			"id": "tx-2", "user_id": "u1", "month_period": "2025-06",
			"type": "regular_expense", "amount": 300.50,
			"date": "2025-06-10T00:00:00Z", "category": "Food",
		},
	}
	initials := []map[string]any{
		{
			"id": "il-1", "user_id": "u1", "month_period": "2025-06",
			"amount": 250, "is_manual": true,
		},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		switch {
		case r.Method == http.MethodGet && table == "transactions":
			if strings.Contains(r.URL.RawQuery, "month_period=eq.2025-06") ||
				!strings.Contains(r.URL.RawQuery, "month_period=eq.") {
				rows := transactions
				if id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq."); id != r.URL.Query().Get("id") {
					rows = nil
					for _, tx := range transactions {
						if tx["id"] == id {
							rows = append(rows, tx)
						}
					}
				}
				json.NewEncoder(w).Encode(rows)
				return
			}
			w.Write([]byte("[]"))
		case r.Method == http.MethodGet && table == "initial_liquidity":
			if strings.Contains(r.URL.RawQuery, "month_period=eq.2025-06") ||
				!strings.Contains(r.URL.RawQuery, "month_period=eq.") {
				json.NewEncoder(w).Encode(initials)
				return
			}
			w.Write([]byte("[]"))
		case r.Method == http.MethodGet:
			w.Write([]byte("[]"))
		case r.Method == http.MethodPost:
			row := map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&row)
			row["id"] = "generated-1"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
}

func newTestStack(t *testing.T) (http.Handler, *httptest.Server) {
	t.Helper()

	server := fakePostgREST(t)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("test")
	resCfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store := supabase.NewClient(httpClient, server.URL, "anon", "service", cb, resCfg, metrics, logger)
	svc := service.NewFinanceService(store, cache.New[any](5*time.Minute), metrics, logger)
	cfg := &config.Config{DefaultResetDay: 1}

	return handler.NewRouter(svc, cfg, metrics, logger), server
}

func TestIntegration_MonthlyLiquidityFlow(t *testing.T) {
	router, server := newTestStack(t)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/v1/users/u1/liquidity/2025-06", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var doc domain.MonthlyLiquidity
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !doc.IsManual {
		t.Error("expected manual initial liquidity")
	}
	if !doc.InitialLiquidity.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected initial 250, got %s", doc.InitialLiquidity)
	}
	if doc.Summary == nil {
		t.Fatal("expected summary")
	}
	if !doc.Summary.TotalIncomes.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected incomes 1000, got %s", doc.Summary.TotalIncomes)
	}
	// 250 + 1000 - 300.50
	want, _ := decimal.NewFromString("949.50")
	if !doc.Summary.TotalBalance.Equal(want) {
		t.Errorf("expected balance 949.50, got %s", doc.Summary.TotalBalance)
	}
}

func TestIntegration_CreateTransaction(t *testing.T) {
	router, server := newTestStack(t)
	defer server.Close()

	body, _ := json.Marshal(map[string]any{
		"type":     "savings",
		"amount":   "75.25",
		"date":     "2025-06-15T00:00:00Z",
		"category": "Emergency fund",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users/u1/liquidity/2025-06/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var created domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	want, _ := decimal.NewFromString("75.25")
	if !created.Amount.Equal(want) {
		t.Errorf("expected amount 75.25, got %s", created.Amount)
	}
}

func TestIntegration_DeleteTransaction(t *testing.T) {
	router, server := newTestStack(t)
	defer server.Close()

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/u1/liquidity/2025-06/transactions/tx-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_DeleteAbsentTransaction(t *testing.T) {
	router, server := newTestStack(t)
	defer server.Close()

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/u1/liquidity/2025-06/transactions/tx-nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for absent transaction, got %d. Body: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_GlobalSummary(t *testing.T) {
	router, server := newTestStack(t)
	defer server.Close()

	req := httptest.NewRequest(http.MethodGet, "/v1/users/u1/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var summary domain.GlobalSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.PeriodCount != 1 {
		t.Errorf("expected 1 period, got %d", summary.PeriodCount)
	}
	if !summary.TotalIncomes.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected incomes 1000, got %s", summary.TotalIncomes)
	}
}

func TestIntegration_StoreDown(t *testing.T) {
	router, server := newTestStack(t)
	server.Close() // connection refused from now on

	req := httptest.NewRequest(http.MethodGet, "/v1/users/u1/liquidity/2025-06", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when store is unreachable, got %d", rec.Code)
	}
}
