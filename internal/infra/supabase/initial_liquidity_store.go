package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Initial liquidity — per (user, period) starting-balance snapshots
// ============================================================

// GetInitialLiquidity fetches the starting-balance record for a period.
// Returns nil without error when no record exists (absent state).
func (c *Client) GetInitialLiquidity(ctx context.Context, userID, month string) (*domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetInitialLiquidity")
	defer span.End()

	path := fmt.Sprintf("initial_liquidity?user_id=eq.%s&month_period=eq.%s&limit=1", userID, month)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.InitialLiquidity
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode initial_liquidity: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SetInitialLiquidity upserts the starting-balance record for a period,
// overwriting whatever was stored. Callers enforce the manual-wins policy
// before reaching the store.
func (c *Client) SetInitialLiquidity(ctx context.Context, rec *domain.InitialLiquidity) (*domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SetInitialLiquidity")
	defer span.End()

	row := map[string]any{
		"user_id":       rec.UserID,
		"month_period":  rec.MonthPeriod,
		"amount":        num(rec.Amount),
		"is_manual":     rec.IsManual,
		"calculated_at": time.Now().UTC().Format(time.RFC3339),
	}

	body, err := c.doUpsert(ctx, "initial_liquidity?on_conflict=user_id,month_period", row)
	if err != nil {
		return nil, err
	}

	var results []domain.InitialLiquidity
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode initial_liquidity: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from initial_liquidity upsert")
	}
	return &results[0], nil
}

// ListInitialLiquidity returns the user's full history, newest first.
func (c *Client) ListInitialLiquidity(ctx context.Context, userID string) ([]domain.InitialLiquidity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInitialLiquidity")
	defer span.End()

	path := fmt.Sprintf("initial_liquidity?user_id=eq.%s&order=month_period.desc", userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.InitialLiquidity{}, nil
	}

	var rows []domain.InitialLiquidity
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode initial_liquidity: %w", err)
	}
	return rows, nil
}
