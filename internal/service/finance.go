// Package service provides the business logic layer (use cases).
// FinanceService handles monthly liquidity, carry-forward, savings, and the
// dashboard aggregations built on top of them.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/infra/observability"
	"github.com/mymoney-app/mymoney-go/internal/port"
)

var tracer = otel.Tracer("service/finance")

// FinanceService orchestrates all finance operations via the document store.
type FinanceService struct {
	store   port.FinanceStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFinanceService creates a new finance service.
func NewFinanceService(store port.FinanceStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *FinanceService {
	return &FinanceService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// invalidateUser drops every cached view for the user. Called on every write
// so dashboards never serve stale aggregates for the full TTL.
func (s *FinanceService) invalidateUser(userID string) {
	s.cache.DeletePrefix("dashboard:" + userID + ":")
	s.cache.Delete("summary:" + userID)
}

// ============================================================
// Monthly liquidity document
// ============================================================

// GetMonthlyLiquidity composes the full liquidity document for a period:
// carry-forward initial liquidity, sources, transactions, and the derived
// balances and summary.
func (s *FinanceService) GetMonthlyLiquidity(ctx context.Context, userID, month string) (*domain.MonthlyLiquidity, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.GetMonthlyLiquidity")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

	if !domain.ValidMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	initial, isManual, err := s.CalculateInitialLiquidity(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("calculate initial liquidity: %w", err)
	}

	sources, err := s.store.ListLiquiditySources(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list liquidity sources: %w", err)
	}

	txns, err := s.store.ListTransactions(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	expected, real := initial, initial
	for _, src := range sources {
		expected = expected.Add(src.ExpectedAmount)
		real = real.Add(src.RealAmount)
	}

	summary := AggregatePeriod(month, initial, txns)

	return &domain.MonthlyLiquidity{
		UserID:           userID,
		MonthPeriod:      month,
		InitialLiquidity: initial,
		IsManual:         isManual,
		Sources:          sources,
		Transactions:     txns,
		ExpectedBalance:  expected,
		RealBalance:      real,
		Summary:          &summary,
	}, nil
}

// UpdateMonthlyBalance is the explicit manual starting-balance update for a
// period. It transitions the initial-liquidity record to the manual state.
func (s *FinanceService) UpdateMonthlyBalance(ctx context.Context, userID, month string, amount decimal.Decimal) (*domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.UpdateMonthlyBalance")
	defer span.End()

	return s.SetManualInitialLiquidity(ctx, userID, month, amount)
}

// ============================================================
// Liquidity sources
// ============================================================

// AddLiquiditySource records a new source against a period, lazily creating
// the monthly liquidity document on first write.
func (s *FinanceService) AddLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.AddLiquiditySource")
	defer span.End()

	if err := validateSource(src); err != nil {
		return nil, err
	}

	if err := s.store.EnsureMonthlyLiquidity(ctx, src.UserID, src.MonthPeriod); err != nil {
		return nil, fmt.Errorf("ensure monthly liquidity: %w", err)
	}

	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	if src.Position == 0 {
		existing, err := s.store.ListLiquiditySources(ctx, src.UserID, src.MonthPeriod)
		if err != nil {
			return nil, fmt.Errorf("list liquidity sources: %w", err)
		}
		src.Position = len(existing)
	}

	created, err := s.store.CreateLiquiditySource(ctx, src)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(src.UserID)
	return created, nil
}

// UpdateLiquiditySource updates an existing source. The target must exist.
func (s *FinanceService) UpdateLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.UpdateLiquiditySource")
	defer span.End()

	if err := validateSource(src); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateLiquiditySource(ctx, src)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(src.UserID)
	return updated, nil
}

// DeleteLiquiditySource removes a source from a period.
func (s *FinanceService) DeleteLiquiditySource(ctx context.Context, userID, month, sourceID string) error {
	ctx, span := tracer.Start(ctx, "FinanceService.DeleteLiquiditySource")
	defer span.End()

	if !domain.ValidMonth(month) {
		return &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	if err := s.store.DeleteLiquiditySource(ctx, userID, month, sourceID); err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}

func validateSource(src *domain.LiquiditySource) error {
	if !domain.ValidMonth(src.MonthPeriod) {
		return &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}
	if src.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if src.ExpectedAmount.IsNegative() || src.RealAmount.IsNegative() {
		return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	return nil
}

// ============================================================
// Transactions
// ============================================================

// ListTransactions returns a period's transactions.
func (s *FinanceService) ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.ListTransactions")
	defer span.End()

	if !domain.ValidMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}
	return s.store.ListTransactions(ctx, userID, month)
}

// AddTransaction records a transaction against a period.
func (s *FinanceService) AddTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.AddTransaction")
	defer span.End()

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	if err := s.store.EnsureMonthlyLiquidity(ctx, tx.UserID, tx.MonthPeriod); err != nil {
		return nil, fmt.Errorf("ensure monthly liquidity: %w", err)
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(tx.UserID)
	return created, nil
}

// UpdateTransaction updates an existing transaction. The target must exist.
func (s *FinanceService) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.UpdateTransaction")
	defer span.End()

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(tx.UserID)
	return updated, nil
}

// DeleteTransaction removes a transaction from a period.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, month, transactionID string) error {
	ctx, span := tracer.Start(ctx, "FinanceService.DeleteTransaction")
	defer span.End()

	if !domain.ValidMonth(month) {
		return &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	if err := s.store.DeleteTransaction(ctx, userID, month, transactionID); err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}

func validateTransaction(tx *domain.Transaction) error {
	if !domain.ValidMonth(tx.MonthPeriod) {
		return &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}
	if !tx.Type.Valid() {
		return &domain.ErrValidation{Field: "type", Message: "unknown transaction type"}
	}
	if tx.Amount.IsNegative() {
		return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	if tx.Date.IsZero() {
		return &domain.ErrValidation{Field: "date", Message: "required"}
	}
	return nil
}
