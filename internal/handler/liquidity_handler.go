package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Monthly liquidity document
// ============================================================

func getMonthlyLiquidityHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/liquidity/{month}")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")
		span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

		doc, err := svc.GetMonthlyLiquidity(ctx, userID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

type balanceUpdateRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func updateMonthlyBalanceHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/liquidity/{month}/balance")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")

		var req balanceUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.UpdateMonthlyBalance(ctx, userID, month, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// ============================================================
// Liquidity sources
// ============================================================

func createLiquiditySourceHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/liquidity/{month}/sources")
		defer span.End()

		var src domain.LiquiditySource
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		src.UserID = requestUserID(r)
		src.MonthPeriod = chi.URLParam(r, "month")

		created, err := svc.AddLiquiditySource(ctx, &src)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateLiquiditySourceHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/liquidity/{month}/sources/{sourceId}")
		defer span.End()

		var src domain.LiquiditySource
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		src.UserID = requestUserID(r)
		src.MonthPeriod = chi.URLParam(r, "month")
		src.ID = chi.URLParam(r, "sourceId")

		updated, err := svc.UpdateLiquiditySource(ctx, &src)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteLiquiditySourceHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}/liquidity/{month}/sources/{sourceId}")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")
		sourceID := chi.URLParam(r, "sourceId")

		if err := svc.DeleteLiquiditySource(ctx, userID, month, sourceID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "liquidity source deleted", ID: sourceID})
	}
}

// ============================================================
// Initial liquidity records (carry-forward state)
// ============================================================

func listInitialLiquidityHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/initial-liquidity")
		defer span.End()

		userID := requestUserID(r)
		records, err := svc.ListInitialLiquidity(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"initial_liquidity": records})
	}
}

func recalculateInitialLiquidityHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/initial-liquidity/{month}/recalculate")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")
		span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

		rec, err := svc.RecalculateInitialLiquidity(ctx, userID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func setInitialLiquidityHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/initial-liquidity/{month}")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")

		var req balanceUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.SetManualInitialLiquidity(ctx, userID, month, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
