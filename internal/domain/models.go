// Package domain holds the core entities and value types of MyMoney.
// All monetary amounts use decimal arithmetic; float64 is never used for money.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction for aggregation purposes.
type TransactionType string

const (
	TxFixedExpense     TransactionType = "fixed_expense"
	TxRegularExpense   TransactionType = "regular_expense"
	TxExpectedIncome   TransactionType = "expected_income"
	TxUnexpectedIncome TransactionType = "unexpected_income"
	TxSavings          TransactionType = "savings"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxFixedExpense, TxRegularExpense, TxExpectedIncome, TxUnexpectedIncome, TxSavings:
		return true
	}
	return false
}

// IsIncome reports whether t counts toward total incomes.
func (t TransactionType) IsIncome() bool {
	return t == TxExpectedIncome || t == TxUnexpectedIncome
}

// IsExpense reports whether t counts toward total expenses.
func (t TransactionType) IsExpense() bool {
	return t == TxFixedExpense || t == TxRegularExpense
}

// Transaction is a single financial movement owned by a user and a month period.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	MonthPeriod string          `json:"month_period"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// LiquiditySource is an expected or realized inflow recorded against a period.
type LiquiditySource struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	MonthPeriod    string          `json:"month_period"`
	Name           string          `json:"name"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	RealAmount     decimal.Decimal `json:"real_amount"`
	Position       int             `json:"position"`
}

// MonthlyLiquidity is the composed per-(user, period) liquidity document
// returned to callers. It is assembled on read; only its sources and the
// initial-liquidity record are persisted.
type MonthlyLiquidity struct {
	UserID           string            `json:"user_id"`
	MonthPeriod      string            `json:"month_period"`
	InitialLiquidity decimal.Decimal   `json:"initial_liquidity"`
	IsManual         bool              `json:"is_manual"`
	Sources          []LiquiditySource `json:"liquidity_sources"`
	Transactions     []Transaction     `json:"transactions"`
	ExpectedBalance  decimal.Decimal   `json:"expected_balance"`
	RealBalance      decimal.Decimal   `json:"real_balance"`
	Summary          *PeriodSummary    `json:"summary,omitempty"`
}

// InitialLiquidity is the starting-balance snapshot for a (user, period).
// Lifecycle: absent -> calculated (carry-forward) -> manual (explicit set).
// Manual records are never overwritten by recalculation.
type InitialLiquidity struct {
	ID           string          `json:"id,omitempty"`
	UserID       string          `json:"user_id"`
	MonthPeriod  string          `json:"month_period"`
	Amount       decimal.Decimal `json:"amount"`
	IsManual     bool            `json:"is_manual"`
	CalculatedAt time.Time       `json:"calculated_at,omitempty"`
}

// SavingsSource is a named account whose authoritative balance is the sum of
// its deposit history. The stored balance is a convenience value refreshed by
// the explicit recalculate action, never incrementally trusted.
type SavingsSource struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// SavingsDeposit is a single deposit into a savings source.
type SavingsDeposit struct {
	ID          string          `json:"id"`
	SourceID    string          `json:"source_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

// SavingsOverview is the savings listing returned to callers.
type SavingsOverview struct {
	Sources      []SavingsSource `json:"sources"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
