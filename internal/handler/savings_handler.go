package handler

import (
	"net/http"

	"github.com/mymoney-app/mymoney-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Savings
// ============================================================

func listSavingsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/savings/sources")
		defer span.End()

		userID := requestUserID(r)
		span.SetAttributes(attribute.String("user.id", userID))

		overview, err := svc.ListSavings(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

func recalculateSavingsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/savings/sources/{sourceId}/recalculate")
		defer span.End()

		userID := requestUserID(r)
		sourceID := chi.URLParam(r, "sourceId")
		span.SetAttributes(attribute.String("user.id", userID), attribute.String("source.id", sourceID))

		source, err := svc.RecalculateSavingsBalance(ctx, userID, sourceID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, source)
	}
}
