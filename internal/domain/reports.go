package domain

import "github.com/shopspring/decimal"

// ============================================================
// Derived reporting views — computed per request, never persisted.
// ============================================================

// PeriodSummary is the aggregate of a single period's transactions.
type PeriodSummary struct {
	Month            string          `json:"month"`
	InitialLiquidity decimal.Decimal `json:"initial_liquidity"`
	TotalIncomes     decimal.Decimal `json:"total_incomes"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalSavings     decimal.Decimal `json:"total_savings"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TransactionCount int             `json:"transaction_count"`
	SavingsRate      decimal.Decimal `json:"savings_rate"`
}

// MonthlyTrendPoint is one point of the monthly trend series.
type MonthlyTrendPoint struct {
	Month         string          `json:"month"`
	TotalIncomes  decimal.Decimal `json:"total_incomes"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
}

// ExpenseDistributionSlice is one category bucket of the expense distribution.
// Purely numeric/structural; display colors are a presentation concern.
type ExpenseDistributionSlice struct {
	Category         string          `json:"category"`
	Value            decimal.Decimal `json:"value"`
	TransactionCount int             `json:"transaction_count"`
}

// UncategorizedBucket is the fallback bucket label for transactions without a
// category, matching what the frontend displays.
const UncategorizedBucket = "Sin categoría"

// DashboardStats is the full dashboard view for a user over a period window.
type DashboardStats struct {
	UserID           string                     `json:"user_id"`
	Window           string                     `json:"window"`
	ResetDay         int                        `json:"reset_day"`
	Current          PeriodSummary              `json:"current"`
	ChangeVsPrevious decimal.Decimal            `json:"change_vs_previous"`
	MonthlyTrend     []MonthlyTrendPoint        `json:"monthly_trend"`
	Distribution     []ExpenseDistributionSlice `json:"expense_distribution"`
}

// GlobalSummary folds every period on record into an all-time view.
type GlobalSummary struct {
	UserID             string          `json:"user_id"`
	TotalIncomes       decimal.Decimal `json:"total_incomes"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	TotalSavings       decimal.Decimal `json:"total_savings"`
	PeriodCount        int             `json:"period_count"`
	AverageSavingsRate decimal.Decimal `json:"average_savings_rate"`
}

// AggregationMetrics is the snapshot served by GET /v1/metrics/aggregation.
type AggregationMetrics struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	Recalculations int64   `json:"recalculations"`
	Period         string  `json:"period"`
}
