package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// windowPeriods maps the dashboard window parameter to a period count.
var windowPeriods = map[string]int{
	"1m": 1,
	"3m": 3,
	"6m": 6,
	"1y": 12,
}

// DefaultWindow is used when the caller does not specify one.
const DefaultWindow = "6m"

// GetDashboardStats builds the full dashboard view for a user: the current
// period's summary, change versus the previous period, the monthly trend over
// the window, and the current period's expense distribution.
//
// Transactions are fetched per period concurrently; one extra period before
// the window is loaded so the change-vs-previous comparison and the
// carry-forward chain have their predecessor available.
func (s *FinanceService) GetDashboardStats(ctx context.Context, userID, window string, resetDay int) (*domain.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.GetDashboardStats")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("window", window),
		attribute.Int("reset_day", resetDay),
	)

	if window == "" {
		window = DefaultWindow
	}
	n, ok := windowPeriods[window]
	if !ok {
		return nil, &domain.ErrValidation{Field: "window", Message: "must be one of 1m, 3m, 6m, 1y"}
	}

	cacheKey := fmt.Sprintf("dashboard:%s:%s:%d", userID, window, resetDay)
	if cached, found := s.cache.Get(cacheKey); found {
		s.metrics.IncrCacheHit("dashboard")
		if stats, ok := cached.(*domain.DashboardStats); ok {
			return stats, nil
		}
	}
	s.metrics.IncrCacheMiss("dashboard")

	periods, err := domain.ResolvePeriods(time.Now().UTC(), resetDay, n+1)
	if err != nil {
		return nil, err
	}

	summaries, err := s.loadPeriodSummaries(ctx, userID, periods)
	if err != nil {
		return nil, err
	}

	// summaries[0] is the extra predecessor period; the window proper starts
	// at index 1.
	previous := summaries[0]
	current := summaries[len(summaries)-1]

	trend := make([]domain.MonthlyTrendPoint, 0, n)
	for _, sum := range summaries[1:] {
		trend = append(trend, domain.MonthlyTrendPoint{
			Month:         sum.summary.Month,
			TotalIncomes:  sum.summary.TotalIncomes,
			TotalExpenses: sum.summary.TotalExpenses,
			TotalBalance:  sum.summary.TotalBalance,
		})
	}

	stats := &domain.DashboardStats{
		UserID:           userID,
		Window:           window,
		ResetDay:         resetDay,
		Current:          current.summary,
		ChangeVsPrevious: ChangeVsPrevious(current.summary.TotalBalance, previous.summary.TotalBalance),
		MonthlyTrend:     trend,
		Distribution:     BuildDistribution(current.txns),
	}

	s.cache.Set(cacheKey, stats)
	s.logger.Debug("dashboard stats built",
		zap.String("user_id", userID),
		zap.String("window", window),
		zap.Int("periods", n),
	)
	return stats, nil
}

// GetMonthlyTrend returns only the trend series of the dashboard view.
func (s *FinanceService) GetMonthlyTrend(ctx context.Context, userID, window string, resetDay int) ([]domain.MonthlyTrendPoint, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.GetMonthlyTrend")
	defer span.End()

	stats, err := s.GetDashboardStats(ctx, userID, window, resetDay)
	if err != nil {
		return nil, err
	}
	return stats.MonthlyTrend, nil
}

// GetExpenseDistribution returns the category distribution for a single month.
func (s *FinanceService) GetExpenseDistribution(ctx context.Context, userID, month string) ([]domain.ExpenseDistributionSlice, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.GetExpenseDistribution")
	defer span.End()

	if !domain.ValidMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}

	txns, err := s.store.ListTransactions(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return BuildDistribution(txns), nil
}

// GetGlobalSummary folds the user's entire transaction history into an
// all-time view. A user with no data gets a zero-valued summary, not an error.
func (s *FinanceService) GetGlobalSummary(ctx context.Context, userID string) (*domain.GlobalSummary, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.GetGlobalSummary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	cacheKey := "summary:" + userID
	if cached, found := s.cache.Get(cacheKey); found {
		s.metrics.IncrCacheHit("dashboard")
		if summary, ok := cached.(*domain.GlobalSummary); ok {
			return summary, nil
		}
	}
	s.metrics.IncrCacheMiss("dashboard")

	var (
		txns     []domain.Transaction
		initials []domain.InitialLiquidity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.ListAllTransactions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		initials, err = s.store.ListInitialLiquidity(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	byMonth := make(map[string][]domain.Transaction)
	months := make(map[string]struct{})
	for _, tx := range txns {
		byMonth[tx.MonthPeriod] = append(byMonth[tx.MonthPeriod], tx)
		months[tx.MonthPeriod] = struct{}{}
	}
	for _, rec := range initials {
		months[rec.MonthPeriod] = struct{}{}
	}

	ordered := make([]string, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	summary := &domain.GlobalSummary{
		UserID:             userID,
		TotalIncomes:       decimal.Zero,
		TotalExpenses:      decimal.Zero,
		TotalSavings:       decimal.Zero,
		AverageSavingsRate: decimal.Zero,
		PeriodCount:        len(ordered),
	}

	rateSum := decimal.Zero
	rated := 0
	for _, m := range ordered {
		ps := AggregatePeriod(m, decimal.Zero, byMonth[m])
		summary.TotalIncomes = summary.TotalIncomes.Add(ps.TotalIncomes)
		summary.TotalExpenses = summary.TotalExpenses.Add(ps.TotalExpenses)
		summary.TotalSavings = summary.TotalSavings.Add(ps.TotalSavings)
		if ps.TotalIncomes.IsPositive() {
			rateSum = rateSum.Add(ps.SavingsRate)
			rated++
		}
	}
	if rated > 0 {
		summary.AverageSavingsRate = rateSum.Div(decimal.NewFromInt(int64(rated)))
	}

	s.cache.Set(cacheKey, summary)
	return summary, nil
}

// GetAggregationMetrics returns the engine's request/cache/recalculation
// counters as a JSON-friendly snapshot.
func (s *FinanceService) GetAggregationMetrics(ctx context.Context) *domain.AggregationMetrics {
	_, span := tracer.Start(ctx, "FinanceService.GetAggregationMetrics")
	defer span.End()

	return s.metrics.GetAggregationSnapshot()
}

// periodData pairs a period's summary with the transactions it was built from.
type periodData struct {
	summary domain.PeriodSummary
	txns    []domain.Transaction
}

// loadPeriodSummaries fetches each period's transactions concurrently, then
// walks the periods oldest-first applying the carry-forward rule: a period's
// initial liquidity is its stored record when one exists, otherwise the
// previous period's ending balance (zero for the oldest period).
func (s *FinanceService) loadPeriodSummaries(ctx context.Context, userID string, periods []domain.Period) ([]periodData, error) {
	initials, err := s.store.ListInitialLiquidity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list initial liquidity: %w", err)
	}
	stored := make(map[string]decimal.Decimal, len(initials))
	for _, rec := range initials {
		stored[rec.MonthPeriod] = rec.Amount
	}

	txnsByMonth := make(map[string][]domain.Transaction, len(periods))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range periods {
		month := p.Label
		g.Go(func() error {
			txns, err := s.store.ListTransactions(gctx, userID, month)
			if err != nil {
				return fmt.Errorf("list transactions for %s: %w", month, err)
			}
			mu.Lock()
			txnsByMonth[month] = txns
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]periodData, 0, len(periods))
	carry := decimal.Zero
	for _, p := range periods {
		initial, ok := stored[p.Label]
		if !ok {
			initial = carry
		}
		txns := txnsByMonth[p.Label]
		ps := AggregatePeriod(p.Label, initial, txns)
		out = append(out, periodData{summary: ps, txns: txns})
		carry = ps.TotalBalance
	}
	return out, nil
}
