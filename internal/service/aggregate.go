package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// Transaction Aggregator — pure folds over a period's transactions.
// Everything here is deterministic in its inputs and uses exact decimal
// arithmetic throughout.
// ============================================================

// AggregatePeriod reduces a period's transaction list into totals by category
// class. totalBalance = initial + incomes − expenses − savings. The savings
// rate is zero when the period has no income.
func AggregatePeriod(month string, initial decimal.Decimal, txns []domain.Transaction) domain.PeriodSummary {
	summary := domain.PeriodSummary{
		Month:            month,
		InitialLiquidity: initial,
		TotalIncomes:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
		TotalSavings:     decimal.Zero,
		SavingsRate:      decimal.Zero,
		TransactionCount: len(txns),
	}

	for _, tx := range txns {
		switch {
		case tx.Type.IsIncome():
			summary.TotalIncomes = summary.TotalIncomes.Add(tx.Amount)
		case tx.Type.IsExpense():
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
		case tx.Type == domain.TxSavings:
			summary.TotalSavings = summary.TotalSavings.Add(tx.Amount)
		}
	}

	summary.TotalBalance = initial.
		Add(summary.TotalIncomes).
		Sub(summary.TotalExpenses).
		Sub(summary.TotalSavings)

	if summary.TotalIncomes.IsPositive() {
		summary.SavingsRate = summary.TotalSavings.Div(summary.TotalIncomes)
	}

	return summary
}

// EndingBalance is the balance a period hands to its successor.
func EndingBalance(initial decimal.Decimal, txns []domain.Transaction) decimal.Decimal {
	return AggregatePeriod("", initial, txns).TotalBalance
}

// ChangeVsPrevious returns (current − previous) / |previous|, or zero when the
// previous balance is zero or absent.
func ChangeVsPrevious(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs())
}

// BuildDistribution groups a period's expense-type and savings-type
// transactions into category buckets. Transactions without a category fall
// into the default bucket; buckets with no transactions are omitted. Buckets
// are ordered by descending value, ties broken by name so output is stable.
func BuildDistribution(txns []domain.Transaction) []domain.ExpenseDistributionSlice {
	type bucket struct {
		value decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)

	for _, tx := range txns {
		if !tx.Type.IsExpense() && tx.Type != domain.TxSavings {
			continue
		}
		category := tx.Category
		if category == "" {
			category = domain.UncategorizedBucket
		}
		b, ok := buckets[category]
		if !ok {
			b = &bucket{value: decimal.Zero}
			buckets[category] = b
		}
		b.value = b.value.Add(tx.Amount)
		b.count++
	}

	slices := make([]domain.ExpenseDistributionSlice, 0, len(buckets))
	for category, b := range buckets {
		slices = append(slices, domain.ExpenseDistributionSlice{
			Category:         category,
			Value:            b.value,
			TransactionCount: b.count,
		})
	}

	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Value.Equal(slices[j].Value) {
			return slices[i].Value.GreaterThan(slices[j].Value)
		}
		return slices[i].Category < slices[j].Category
	})

	return slices
}
