// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// FinanceStore defines all data operations against the remote document store.
// Implemented by the Supabase adapter (or any other persistence layer).
//
// Concurrent writes to the same (user, month) records are last-write-wins at
// the store layer; no optimistic locking or versioning is provided.
type FinanceStore interface {
	// Monthly liquidity
	EnsureMonthlyLiquidity(ctx context.Context, userID, month string) error

	// Liquidity sources
	ListLiquiditySources(ctx context.Context, userID, month string) ([]domain.LiquiditySource, error)
	CreateLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error)
	UpdateLiquiditySource(ctx context.Context, src *domain.LiquiditySource) (*domain.LiquiditySource, error)
	DeleteLiquiditySource(ctx context.Context, userID, month, sourceID string) error

	// Transactions
	ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error)
	ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, month, transactionID string) error

	// Initial liquidity
	GetInitialLiquidity(ctx context.Context, userID, month string) (*domain.InitialLiquidity, error)
	SetInitialLiquidity(ctx context.Context, rec *domain.InitialLiquidity) (*domain.InitialLiquidity, error)
	ListInitialLiquidity(ctx context.Context, userID string) ([]domain.InitialLiquidity, error)

	// Savings
	ListSavingsSources(ctx context.Context, userID string) ([]domain.SavingsSource, error)
	GetSavingsSource(ctx context.Context, userID, sourceID string) (*domain.SavingsSource, error)
	ListDeposits(ctx context.Context, userID, sourceID string) ([]domain.SavingsDeposit, error)
	UpdateSavingsBalance(ctx context.Context, userID, sourceID string, balance decimal.Decimal) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string)
}
