package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/service"
)

// windowMonths returns the labels of the trailing n periods for reset day 1,
// newest last, so tests can seed data in the months the dashboard will read.
func windowMonths(t *testing.T, n int) []string {
	t.Helper()
	periods, err := domain.ResolvePeriods(time.Now().UTC(), 1, n)
	if err != nil {
		t.Fatalf("resolve periods: %v", err)
	}
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Label
	}
	return labels
}

func TestGetDashboardStats(t *testing.T) {
	months := windowMonths(t, 3)
	current := months[2]

	store := newMockStore()
	store.transactions = []domain.Transaction{
		{ID: "tx-1", UserID: "u1", MonthPeriod: current, Type: domain.TxExpectedIncome, Amount: dec("1000")},
		{ID: "tx-2", UserID: "u1", MonthPeriod: current, Type: domain.TxRegularExpense, Amount: dec("300"), Category: "Food"},
		{ID: "tx-3", UserID: "u1", MonthPeriod: current, Type: domain.TxSavings, Amount: dec("100")},
		{ID: "tx-4", UserID: "u1", MonthPeriod: months[1], Type: domain.TxExpectedIncome, Amount: dec("500")},
	}

	svc := newService(store)
	stats, err := svc.GetDashboardStats(context.Background(), "u1", "3m", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Window != "3m" {
		t.Errorf("expected window 3m, got %s", stats.Window)
	}
	if len(stats.MonthlyTrend) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(stats.MonthlyTrend))
	}
	for i, m := range months {
		if stats.MonthlyTrend[i].Month != m {
			t.Errorf("trend point %d: expected %s, got %s", i, m, stats.MonthlyTrend[i].Month)
		}
	}

	if stats.Current.Month != current {
		t.Errorf("expected current month %s, got %s", current, stats.Current.Month)
	}
	if !stats.Current.TotalIncomes.Equal(dec("1000")) {
		t.Errorf("expected incomes 1000, got %s", stats.Current.TotalIncomes)
	}
	// carry-forward chain: months[1] ends at 500, current starts there
	if !stats.Current.InitialLiquidity.Equal(dec("500")) {
		t.Errorf("expected carried initial 500, got %s", stats.Current.InitialLiquidity)
	}

	if len(stats.Distribution) != 2 {
		t.Fatalf("expected 2 distribution buckets, got %d", len(stats.Distribution))
	}
	if stats.Distribution[0].Category != "Food" {
		t.Errorf("expected Food first, got %s", stats.Distribution[0].Category)
	}
}

func TestGetDashboardStats_InvalidWindow(t *testing.T) {
	svc := newService(newMockStore())
	if _, err := svc.GetDashboardStats(context.Background(), "u1", "2w", 1); err == nil {
		t.Fatal("expected validation error for unknown window")
	}
}

func TestGetDashboardStats_DefaultWindow(t *testing.T) {
	svc := newService(newMockStore())
	stats, err := svc.GetDashboardStats(context.Background(), "u1", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Window != service.DefaultWindow {
		t.Errorf("expected default window %s, got %s", service.DefaultWindow, stats.Window)
	}
}

func TestGetDashboardStats_StoredInitialPreferred(t *testing.T) {
	months := windowMonths(t, 1)
	current := months[0]

	store := newMockStore()
	store.initials[current] = domain.InitialLiquidity{
		UserID: "u1", MonthPeriod: current, Amount: dec("750"), IsManual: true,
	}

	svc := newService(store)
	stats, err := svc.GetDashboardStats(context.Background(), "u1", "1m", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.Current.InitialLiquidity.Equal(dec("750")) {
		t.Errorf("expected stored initial 750, got %s", stats.Current.InitialLiquidity)
	}
}

func TestGetExpenseDistribution(t *testing.T) {
	store := newMockStore()
	store.transactions = []domain.Transaction{
		{ID: "tx-1", UserID: "u1", MonthPeriod: "2025-06", Type: domain.TxRegularExpense, Amount: dec("50"), Category: "Food"},
		{ID: "tx-2", UserID: "u1", MonthPeriod: "2025-06", Type: domain.TxRegularExpense, Amount: dec("10"), Category: "Transport"},
	}

	svc := newService(store)
	slices, err := svc.GetExpenseDistribution(context.Background(), "u1", "2025-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slices) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(slices))
	}
	if slices[0].Category != "Food" || !slices[0].Value.Equal(dec("50")) {
		t.Errorf("expected Food=50 first, got %s=%s", slices[0].Category, slices[0].Value)
	}

	if _, err := svc.GetExpenseDistribution(context.Background(), "u1", "bad"); err == nil {
		t.Error("expected validation error for malformed month")
	}
}

func TestGetGlobalSummary(t *testing.T) {
	store := newMockStore()
	store.transactions = []domain.Transaction{
		{ID: "tx-1", UserID: "u1", MonthPeriod: "2025-04", Type: domain.TxExpectedIncome, Amount: dec("100")},
		{ID: "tx-2", UserID: "u1", MonthPeriod: "2025-04", Type: domain.TxSavings, Amount: dec("50")},
		{ID: "tx-3", UserID: "u1", MonthPeriod: "2025-05", Type: domain.TxExpectedIncome, Amount: dec("200")},
		{ID: "tx-4", UserID: "u1", MonthPeriod: "2025-05", Type: domain.TxRegularExpense, Amount: dec("80")},
	}
	// month with a record but no transactions still counts as a period
	store.initials["2025-06"] = domain.InitialLiquidity{UserID: "u1", MonthPeriod: "2025-06", Amount: dec("10")}

	svc := newService(store)
	summary, err := svc.GetGlobalSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PeriodCount != 3 {
		t.Errorf("expected 3 periods, got %d", summary.PeriodCount)
	}
	if !summary.TotalIncomes.Equal(dec("300")) {
		t.Errorf("expected incomes 300, got %s", summary.TotalIncomes)
	}
	if !summary.TotalExpenses.Equal(dec("80")) {
		t.Errorf("expected expenses 80, got %s", summary.TotalExpenses)
	}
	if !summary.TotalSavings.Equal(dec("50")) {
		t.Errorf("expected savings 50, got %s", summary.TotalSavings)
	}
	// averaged over income periods only: (50/100 + 0/200) / 2
	if !summary.AverageSavingsRate.Equal(dec("0.25")) {
		t.Errorf("expected average savings rate 0.25, got %s", summary.AverageSavingsRate)
	}
}

func TestGetGlobalSummary_Empty(t *testing.T) {
	svc := newService(newMockStore())
	summary, err := svc.GetGlobalSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected zero summary, got error: %v", err)
	}
	if summary.PeriodCount != 0 {
		t.Errorf("expected 0 periods, got %d", summary.PeriodCount)
	}
	if !summary.TotalIncomes.IsZero() || !summary.AverageSavingsRate.IsZero() {
		t.Error("expected all-zero summary")
	}
}

func TestGetDashboardStats_CachedAcrossCalls(t *testing.T) {
	months := windowMonths(t, 1)

	store := newMockStore()
	svc := newService(store)

	if _, err := svc.GetDashboardStats(context.Background(), "u1", "1m", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mutate the store behind the cache: the cached view must still be served
	store.transactions = append(store.transactions, domain.Transaction{
		ID: "tx-1", UserID: "u1", MonthPeriod: months[0], Type: domain.TxExpectedIncome, Amount: dec("999"),
	})

	stats, err := svc.GetDashboardStats(context.Background(), "u1", "1m", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.Current.TotalIncomes.IsZero() {
		t.Errorf("expected cached zero incomes, got %s", stats.Current.TotalIncomes)
	}
}
