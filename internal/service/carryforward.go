package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Liquidity Carry-Forward Calculator
//
// A period's starting balance is either a user-entered manual value or the
// previous period's ending balance. Seeding a long history is done by
// recalculating period-by-period, oldest first: each period's result depends
// strictly on the one before it.
// ============================================================

// CalculateInitialLiquidity returns the period's starting balance.
// A manual record always wins, regardless of prior period activity.
// Otherwise the value is derived fresh from the preceding period: its stored
// starting balance (zero if absent) plus incomes minus expenses and savings.
// With no preceding data at all the result is zero, never an error.
func (s *FinanceService) CalculateInitialLiquidity(ctx context.Context, userID, month string) (decimal.Decimal, bool, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.CalculateInitialLiquidity")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

	rec, err := s.store.GetInitialLiquidity(ctx, userID, month)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get initial liquidity: %w", err)
	}
	if rec != nil && rec.IsManual {
		return rec.Amount, true, nil
	}

	prev, err := domain.PreviousMonth(month)
	if err != nil {
		return decimal.Zero, false, err
	}

	prevRec, err := s.store.GetInitialLiquidity(ctx, userID, prev)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get previous initial liquidity: %w", err)
	}
	prevInitial := decimal.Zero
	if prevRec != nil {
		prevInitial = prevRec.Amount
	}

	prevTxns, err := s.store.ListTransactions(ctx, userID, prev)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("list previous transactions: %w", err)
	}

	return EndingBalance(prevInitial, prevTxns), false, nil
}

// RecalculateInitialLiquidity computes the carry-forward value and persists it
// as a calculated record. A manual record is never overwritten here: only the
// explicit manual-set operation may replace it.
func (s *FinanceService) RecalculateInitialLiquidity(ctx context.Context, userID, month string) (*domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.RecalculateInitialLiquidity")
	defer span.End()

	if !domain.ValidMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	existing, err := s.store.GetInitialLiquidity(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("get initial liquidity: %w", err)
	}
	if existing != nil && existing.IsManual {
		s.logger.Debug("recalculate skipped: manual record present",
			zap.String("user_id", userID),
			zap.String("month", month),
		)
		return existing, nil
	}

	amount, _, err := s.CalculateInitialLiquidity(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.SetInitialLiquidity(ctx, &domain.InitialLiquidity{
		UserID:      userID,
		MonthPeriod: month,
		Amount:      amount,
		IsManual:    false,
	})
	if err != nil {
		return nil, fmt.Errorf("set initial liquidity: %w", err)
	}

	s.metrics.IncrRecalculation("carry_forward")
	s.invalidateUser(userID)
	return saved, nil
}

// SetManualInitialLiquidity is the explicit user action that overrides the
// starting balance for a period. It may overwrite calculated and manual
// records alike.
func (s *FinanceService) SetManualInitialLiquidity(ctx context.Context, userID, month string, amount decimal.Decimal) (*domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.SetManualInitialLiquidity")
	defer span.End()

	if !domain.ValidMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	saved, err := s.store.SetInitialLiquidity(ctx, &domain.InitialLiquidity{
		UserID:      userID,
		MonthPeriod: month,
		Amount:      amount,
		IsManual:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("set initial liquidity: %w", err)
	}

	s.invalidateUser(userID)
	return saved, nil
}

// ListInitialLiquidity returns the user's starting-balance history, newest
// first, including the manual/calculated flag of each record.
func (s *FinanceService) ListInitialLiquidity(ctx context.Context, userID string) ([]domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.ListInitialLiquidity")
	defer span.End()

	return s.store.ListInitialLiquidity(ctx, userID)
}
