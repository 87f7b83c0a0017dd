package service_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// mockStore is an in-memory port.FinanceStore used by the service tests.
// err, when set, is returned by every method.
type mockStore struct {
	err error

	transactions []domain.Transaction
	sources      []domain.LiquiditySource
	initials     map[string]domain.InitialLiquidity // keyed by month
	savings      []domain.SavingsSource
	deposits     []domain.SavingsDeposit

	nextID int
}

func newMockStore() *mockStore {
	return &mockStore{initials: make(map[string]domain.InitialLiquidity)}
}

func (m *mockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockStore) EnsureMonthlyLiquidity(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockStore) ListLiquiditySources(_ context.Context, _, month string) ([]domain.LiquiditySource, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LiquiditySource
	for _, s := range m.sources {
		if s.MonthPeriod == month {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) CreateLiquiditySource(_ context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	if m.err != nil {
		return nil, m.err
	}
	if src.ID == "" {
		src.ID = m.id("src")
	}
	m.sources = append(m.sources, *src)
	return src, nil
}

func (m *mockStore) UpdateLiquiditySource(_ context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i, s := range m.sources {
		if s.ID == src.ID {
			m.sources[i] = *src
			return src, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "liquidity source", ID: src.ID}
}

func (m *mockStore) DeleteLiquiditySource(_ context.Context, _, _, sourceID string) error {
	if m.err != nil {
		return m.err
	}
	for i, s := range m.sources {
		if s.ID == sourceID {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "liquidity source", ID: sourceID}
}

func (m *mockStore) ListTransactions(_ context.Context, _, month string) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Transaction
	for _, tx := range m.transactions {
		if tx.MonthPeriod == month {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockStore) ListAllTransactions(_ context.Context, _ string) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Transaction, len(m.transactions))
	copy(out, m.transactions)
	sort.Slice(out, func(i, j int) bool { return out[i].MonthPeriod < out[j].MonthPeriod })
	return out, nil
}

func (m *mockStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if tx.ID == "" {
		tx.ID = m.id("tx")
	}
	m.transactions = append(m.transactions, *tx)
	return tx, nil
}

func (m *mockStore) UpdateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i, existing := range m.transactions {
		if existing.ID == tx.ID {
			m.transactions[i] = *tx
			return tx, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
}

func (m *mockStore) DeleteTransaction(_ context.Context, _, _, transactionID string) error {
	if m.err != nil {
		return m.err
	}
	for i, tx := range m.transactions {
		if tx.ID == transactionID {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (m *mockStore) GetInitialLiquidity(_ context.Context, _, month string) (*domain.InitialLiquidity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if rec, ok := m.initials[month]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (m *mockStore) SetInitialLiquidity(_ context.Context, rec *domain.InitialLiquidity) (*domain.InitialLiquidity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if rec.ID == "" {
		rec.ID = m.id("il")
	}
	m.initials[rec.MonthPeriod] = *rec
	return rec, nil
}

func (m *mockStore) ListInitialLiquidity(_ context.Context, _ string) ([]domain.InitialLiquidity, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.InitialLiquidity, 0, len(m.initials))
	for _, rec := range m.initials {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthPeriod > out[j].MonthPeriod })
	return out, nil
}

func (m *mockStore) ListSavingsSources(_ context.Context, _ string) ([]domain.SavingsSource, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.savings, nil
}

func (m *mockStore) GetSavingsSource(_ context.Context, _, sourceID string) (*domain.SavingsSource, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.savings {
		if s.ID == sourceID {
			out := s
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "savings source", ID: sourceID}
}

func (m *mockStore) ListDeposits(_ context.Context, _, sourceID string) ([]domain.SavingsDeposit, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.SavingsDeposit
	for _, d := range m.deposits {
		if d.SourceID == sourceID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateSavingsBalance(_ context.Context, _, sourceID string, balance decimal.Decimal) error {
	if m.err != nil {
		return m.err
	}
	for i, s := range m.savings {
		if s.ID == sourceID {
			m.savings[i].Balance = balance
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "savings source", ID: sourceID}
}
