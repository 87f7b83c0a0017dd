package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

func TestGetMonthlyLiquidity_ComposesDocument(t *testing.T) {
	store := newMockStore()
	store.initials["2025-06"] = domain.InitialLiquidity{
		UserID: "u1", MonthPeriod: "2025-06", Amount: dec("100"), IsManual: true,
	}
	store.sources = []domain.LiquiditySource{
		{ID: "src-1", UserID: "u1", MonthPeriod: "2025-06", Name: "Salary", ExpectedAmount: dec("2000"), RealAmount: dec("1950")},
		{ID: "src-2", UserID: "u1", MonthPeriod: "2025-06", Name: "Freelance", ExpectedAmount: dec("500"), RealAmount: dec("0")},
	}
	store.transactions = []domain.Transaction{
		{ID: "tx-1", UserID: "u1", MonthPeriod: "2025-06", Type: domain.TxRegularExpense, Amount: dec("300")},
	}

	svc := newService(store)
	doc, err := svc.GetMonthlyLiquidity(context.Background(), "u1", "2025-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doc.InitialLiquidity.Equal(dec("100")) || !doc.IsManual {
		t.Errorf("expected manual initial 100, got %s manual=%v", doc.InitialLiquidity, doc.IsManual)
	}
	if !doc.ExpectedBalance.Equal(dec("2600")) {
		t.Errorf("expected expected balance 2600, got %s", doc.ExpectedBalance)
	}
	if !doc.RealBalance.Equal(dec("2050")) {
		t.Errorf("expected real balance 2050, got %s", doc.RealBalance)
	}
	if doc.Summary == nil {
		t.Fatal("expected summary to be present")
	}
	if !doc.Summary.TotalBalance.Equal(dec("-200")) {
		t.Errorf("expected summary balance -200, got %s", doc.Summary.TotalBalance)
	}
}

func TestGetMonthlyLiquidity_InvalidMonth(t *testing.T) {
	svc := newService(newMockStore())
	_, err := svc.GetMonthlyLiquidity(context.Background(), "u1", "06-2025")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddLiquiditySource_AssignsPosition(t *testing.T) {
	store := newMockStore()
	store.sources = []domain.LiquiditySource{
		{ID: "src-1", UserID: "u1", MonthPeriod: "2025-06", Name: "Salary", Position: 0},
	}

	svc := newService(store)
	created, err := svc.AddLiquiditySource(context.Background(), &domain.LiquiditySource{
		UserID: "u1", MonthPeriod: "2025-06", Name: "Freelance",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Position != 1 {
		t.Errorf("expected position 1, got %d", created.Position)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
}

func TestAddLiquiditySource_Validation(t *testing.T) {
	svc := newService(newMockStore())

	cases := []struct {
		name string
		src  domain.LiquiditySource
	}{
		{"bad month", domain.LiquiditySource{UserID: "u1", MonthPeriod: "nope", Name: "x"}},
		{"missing name", domain.LiquiditySource{UserID: "u1", MonthPeriod: "2025-06"}},
		{"negative amount", domain.LiquiditySource{UserID: "u1", MonthPeriod: "2025-06", Name: "x", ExpectedAmount: dec("-5")}},
	}
	for _, tc := range cases {
		if _, err := svc.AddLiquiditySource(context.Background(), &tc.src); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestAddTransaction(t *testing.T) {
	store := newMockStore()
	svc := newService(store)

	created, err := svc.AddTransaction(context.Background(), &domain.Transaction{
		UserID:      "u1",
		MonthPeriod: "2025-06",
		Type:        domain.TxRegularExpense,
		Amount:      dec("42.99"),
		Date:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Category:    "Food",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(store.transactions))
	}
}

func TestAddTransaction_Validation(t *testing.T) {
	svc := newService(newMockStore())
	date := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		tx   domain.Transaction
	}{
		{"bad month", domain.Transaction{UserID: "u1", MonthPeriod: "x", Type: domain.TxSavings, Amount: decimal.Zero, Date: date}},
		{"bad type", domain.Transaction{UserID: "u1", MonthPeriod: "2025-06", Type: "loan", Amount: decimal.Zero, Date: date}},
		{"negative amount", domain.Transaction{UserID: "u1", MonthPeriod: "2025-06", Type: domain.TxSavings, Amount: dec("-1"), Date: date}},
		{"missing date", domain.Transaction{UserID: "u1", MonthPeriod: "2025-06", Type: domain.TxSavings, Amount: decimal.Zero}},
	}
	for _, tc := range cases {
		if _, err := svc.AddTransaction(context.Background(), &tc.tx); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	svc := newService(newMockStore())
	_, err := svc.UpdateTransaction(context.Background(), &domain.Transaction{
		ID: "tx-missing", UserID: "u1", MonthPeriod: "2025-06",
		Type: domain.TxSavings, Amount: dec("1"),
		Date: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTransaction_InvalidatesDashboardCache(t *testing.T) {
	months := windowMonths(t, 1)

	store := newMockStore()
	store.transactions = []domain.Transaction{
		{ID: "tx-1", UserID: "u1", MonthPeriod: months[0], Type: domain.TxExpectedIncome, Amount: dec("100"),
			Date: time.Now()},
	}

	svc := newService(store)
	before, err := svc.GetDashboardStats(context.Background(), "u1", "1m", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !before.Current.TotalIncomes.Equal(dec("100")) {
		t.Fatalf("expected incomes 100 before delete, got %s", before.Current.TotalIncomes)
	}

	if err := svc.DeleteTransaction(context.Background(), "u1", months[0], "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := svc.GetDashboardStats(context.Background(), "u1", "1m", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !after.Current.TotalIncomes.IsZero() {
		t.Errorf("expected fresh view after delete, got incomes %s", after.Current.TotalIncomes)
	}
}

func TestListTransactions_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")

	svc := newService(store)
	if _, err := svc.ListTransactions(context.Background(), "u1", "2025-06"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
