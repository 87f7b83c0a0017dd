package handler

import (
	"net/http"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/config"
	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/service"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard — derived views over the user's periods
// ============================================================

// dashboardStatsResponse is DashboardStats with presentation colors applied
// to the distribution slices.
type dashboardStatsResponse struct {
	UserID           string                     `json:"user_id"`
	Window           string                     `json:"window"`
	ResetDay         int                        `json:"reset_day"`
	Current          domain.PeriodSummary       `json:"current"`
	ChangeVsPrevious decimal.Decimal            `json:"change_vs_previous"`
	MonthlyTrend     []domain.MonthlyTrendPoint `json:"monthly_trend"`
	Distribution     []distributionSlice        `json:"expense_distribution"`
}

func dashboardStatsHandler(svc *service.FinanceService, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/dashboard/stats")
		defer span.End()

		userID := requestUserID(r)
		window := r.URL.Query().Get("window")
		resetDay := parseResetDay(r, cfg.DefaultResetDay)
		span.SetAttributes(attribute.String("user.id", userID))

		stats, err := svc.GetDashboardStats(ctx, userID, window, resetDay)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboardStatsResponse{
			UserID:           stats.UserID,
			Window:           stats.Window,
			ResetDay:         stats.ResetDay,
			Current:          stats.Current,
			ChangeVsPrevious: stats.ChangeVsPrevious,
			MonthlyTrend:     stats.MonthlyTrend,
			Distribution:     colorize(stats.Distribution),
		})
	}
}

func monthlyTrendHandler(svc *service.FinanceService, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/dashboard/trend")
		defer span.End()

		userID := requestUserID(r)
		window := r.URL.Query().Get("window")
		resetDay := parseResetDay(r, cfg.DefaultResetDay)

		trend, err := svc.GetMonthlyTrend(ctx, userID, window, resetDay)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"monthly_trend": trend})
	}
}

func expenseDistributionHandler(svc *service.FinanceService, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/dashboard/distribution")
		defer span.End()

		userID := requestUserID(r)
		month := r.URL.Query().Get("month")
		if month == "" {
			month = domain.MonthOf(time.Now())
		}
		// reset_day does not change which rows a month label selects, but the
		// parameter is validated the same way as on the other dashboard routes.
		if resetDay := parseResetDay(r, cfg.DefaultResetDay); resetDay < 1 || resetDay > 31 {
			handleServiceError(w, &domain.ErrValidation{Field: "reset_day", Message: "must be between 1 and 31"}, logger)
			return
		}

		slices, err := svc.GetExpenseDistribution(ctx, userID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"month":        month,
			"distribution": colorize(slices),
		})
	}
}

func globalSummaryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/dashboard/summary")
		defer span.End()

		userID := requestUserID(r)
		summary, err := svc.GetGlobalSummary(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// ============================================================
// Engine metrics — GET /v1/metrics/aggregation
// ============================================================

func aggregationMetricsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/metrics/aggregation")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.GetAggregationMetrics(ctx))
	}
}
