package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ListSavings returns the user's savings sources with their stored balances
// and the total across all of them. Balances are read as stored; refreshing
// them from the deposit history is the explicit recalculate action.
func (s *FinanceService) ListSavings(ctx context.Context, userID string) (*domain.SavingsOverview, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.ListSavings")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	sources, err := s.store.ListSavingsSources(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings sources: %w", err)
	}

	total := decimal.Zero
	for _, src := range sources {
		total = total.Add(src.Balance)
	}

	return &domain.SavingsOverview{Sources: sources, TotalBalance: total}, nil
}

// RecalculateSavingsBalance rebuilds a source's balance from its full deposit
// history and persists the result. The deposit history is authoritative; the
// stored balance is only a snapshot of the last recalculation.
func (s *FinanceService) RecalculateSavingsBalance(ctx context.Context, userID, sourceID string) (*domain.SavingsSource, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.RecalculateSavingsBalance")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("source.id", sourceID))

	source, err := s.store.GetSavingsSource(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}

	deposits, err := s.store.ListDeposits(ctx, userID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}

	balance := decimal.Zero
	for _, dep := range deposits {
		balance = balance.Add(dep.Amount)
	}

	if err := s.store.UpdateSavingsBalance(ctx, userID, sourceID, balance); err != nil {
		return nil, fmt.Errorf("update savings balance: %w", err)
	}

	s.metrics.IncrRecalculation("savings")
	s.logger.Info("savings balance recalculated",
		zap.String("user_id", userID),
		zap.String("source_id", sourceID),
		zap.Int("deposits", len(deposits)),
		zap.String("balance", balance.String()),
	)

	source.Balance = balance
	return source, nil
}
