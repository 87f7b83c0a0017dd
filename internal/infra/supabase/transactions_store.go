package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Transactions — one row per financial movement, keyed by
// (user_id, month_period)
// ============================================================

// ListTransactions returns a period's transactions, oldest first.
func (c *Client) ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&month_period=eq.%s&order=date.asc&limit=1000", userID, month)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var txns []domain.Transaction
	if err := json.Unmarshal(body, &txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

// ListAllTransactions returns the user's full transaction history, ordered by
// month then date. Used by the all-time global summary.
func (c *Client) ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllTransactions")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&order=month_period.asc,date.asc&limit=10000", userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var txns []domain.Transaction
	if err := json.Unmarshal(body, &txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

// CreateTransaction inserts a transaction and returns the stored row.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	row := map[string]any{
		"user_id":      tx.UserID,
		"month_period": tx.MonthPeriod,
		"type":         string(tx.Type),
		"amount":       num(tx.Amount),
		"date":         tx.Date.UTC().Format(time.RFC3339),
		"category":     tx.Category,
		"description":  tx.Description,
	}
	if tx.ID != "" {
		row["id"] = tx.ID
	}

	body, err := c.doPost(ctx, "transactions", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Transaction
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from transactions insert")
	}
	return &results[0], nil
}

// UpdateTransaction patches a transaction. The target must exist.
func (c *Client) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	existing, err := c.getTransaction(ctx, tx.UserID, tx.MonthPeriod, tx.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}

	err = c.doPatch(ctx,
		fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s&month_period=eq.%s", tx.ID, tx.UserID, tx.MonthPeriod),
		map[string]any{
			"type":        string(tx.Type),
			"amount":      num(tx.Amount),
			"date":        tx.Date.UTC().Format(time.RFC3339),
			"category":    tx.Category,
			"description": tx.Description,
		})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction from a period. The target must
// exist: PostgREST answers 204 whether or not any row matched the filter, so
// existence is checked first.
func (c *Client) DeleteTransaction(ctx context.Context, userID, month, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	existing, err := c.getTransaction(ctx, userID, month, transactionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	return c.doDelete(ctx, fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s&month_period=eq.%s",
		transactionID, userID, month))
}

func (c *Client) getTransaction(ctx context.Context, userID, month, id string) (*domain.Transaction, error) {
	path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s&month_period=eq.%s&limit=1", id, userID, month)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.Transaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
