package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Monthly liquidity anchor rows and liquidity sources
// ============================================================

// EnsureMonthlyLiquidity lazily creates the anchor row for a (user, period).
// Idempotent: an existing row is merged, never duplicated.
func (c *Client) EnsureMonthlyLiquidity(ctx context.Context, userID, month string) error {
	ctx, span := tracer.Start(ctx, "Supabase.EnsureMonthlyLiquidity")
	defer span.End()

	_, err := c.doUpsert(ctx, "monthly_liquidity?on_conflict=user_id,month_period", map[string]any{
		"user_id":      userID,
		"month_period": month,
	})
	return err
}

// ListLiquiditySources returns a period's sources in display order.
func (c *Client) ListLiquiditySources(ctx context.Context, userID, month string) ([]domain.LiquiditySource, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLiquiditySources")
	defer span.End()

	path := fmt.Sprintf("liquidity_sources?user_id=eq.%s&month_period=eq.%s&order=position.asc", userID, month)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.LiquiditySource{}, nil
	}

	var rows []domain.LiquiditySource
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode liquidity_sources: %w", err)
	}
	return rows, nil
}

// CreateLiquiditySource inserts a source into a period.
func (c *Client) CreateLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateLiquiditySource")
	defer span.End()

	row := map[string]any{
		"user_id":         src.UserID,
		"month_period":    src.MonthPeriod,
		"name":            src.Name,
		"expected_amount": num(src.ExpectedAmount),
		"real_amount":     num(src.RealAmount),
		"position":        src.Position,
	}
	if src.ID != "" {
		row["id"] = src.ID
	}

	body, err := c.doPost(ctx, "liquidity_sources", row)
	if err != nil {
		return nil, err
	}

	var results []domain.LiquiditySource
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode liquidity_source: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from liquidity_sources insert")
	}
	return &results[0], nil
}

// UpdateLiquiditySource patches a source. The target must exist.
func (c *Client) UpdateLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateLiquiditySource")
	defer span.End()

	existing, err := c.getLiquiditySource(ctx, src.UserID, src.MonthPeriod, src.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &domain.ErrNotFound{Resource: "liquidity_source", ID: src.ID}
	}

	err = c.doPatch(ctx,
		fmt.Sprintf("liquidity_sources?id=eq.%s&user_id=eq.%s&month_period=eq.%s", src.ID, src.UserID, src.MonthPeriod),
		map[string]any{
			"name":            src.Name,
			"expected_amount": num(src.ExpectedAmount),
			"real_amount":     num(src.RealAmount),
			"position":        src.Position,
		})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// DeleteLiquiditySource removes a source from a period. The target must
// exist: PostgREST answers 204 whether or not any row matched the filter, so
// existence is checked first.
func (c *Client) DeleteLiquiditySource(ctx context.Context, userID, month, sourceID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLiquiditySource")
	defer span.End()

	existing, err := c.getLiquiditySource(ctx, userID, month, sourceID)
	if err != nil {
		return err
	}
	if existing == nil {
		return &domain.ErrNotFound{Resource: "liquidity_source", ID: sourceID}
	}

	return c.doDelete(ctx, fmt.Sprintf("liquidity_sources?id=eq.%s&user_id=eq.%s&month_period=eq.%s",
		sourceID, userID, month))
}

func (c *Client) getLiquiditySource(ctx context.Context, userID, month, id string) (*domain.LiquiditySource, error) {
	path := fmt.Sprintf("liquidity_sources?id=eq.%s&user_id=eq.%s&month_period=eq.%s&limit=1", id, userID, month)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.LiquiditySource
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode liquidity_source: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
