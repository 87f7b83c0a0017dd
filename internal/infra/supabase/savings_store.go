package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Savings sources and their deposit history
// ============================================================

// ListSavingsSources returns the user's savings sources with their stored
// balances. Balances are refreshed by the explicit recalculate action.
func (c *Client) ListSavingsSources(ctx context.Context, userID string) ([]domain.SavingsSource, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSavingsSources")
	defer span.End()

	path := fmt.Sprintf("savings_sources?user_id=eq.%s&order=name.asc", userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.SavingsSource{}, nil
	}

	var rows []domain.SavingsSource
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode savings_sources: %w", err)
	}
	return rows, nil
}

// GetSavingsSource fetches a single savings source.
func (c *Client) GetSavingsSource(ctx context.Context, userID, sourceID string) (*domain.SavingsSource, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSavingsSource")
	defer span.End()

	path := fmt.Sprintf("savings_sources?id=eq.%s&user_id=eq.%s&limit=1", sourceID, userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "savings_source", ID: sourceID}
	}

	var rows []domain.SavingsSource
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode savings_source: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "savings_source", ID: sourceID}
	}
	return &rows[0], nil
}

// ListDeposits returns a source's deposit history, oldest first.
func (c *Client) ListDeposits(ctx context.Context, userID, sourceID string) ([]domain.SavingsDeposit, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDeposits")
	defer span.End()

	path := fmt.Sprintf("savings_deposits?source_id=eq.%s&user_id=eq.%s&order=date.asc&limit=10000", sourceID, userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.SavingsDeposit{}, nil
	}

	var rows []domain.SavingsDeposit
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode savings_deposits: %w", err)
	}
	return rows, nil
}

// UpdateSavingsBalance persists a recalculated balance for a source.
func (c *Client) UpdateSavingsBalance(ctx context.Context, userID, sourceID string, balance decimal.Decimal) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSavingsBalance")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("savings_sources?id=eq.%s&user_id=eq.%s", sourceID, userID), map[string]any{
		"balance":    num(balance),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}
