package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/liquidity/{month}/transactions")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")
		span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

		txns, err := svc.ListTransactions(ctx, userID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
	}
}

func createTransactionHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/liquidity/{month}/transactions")
		defer span.End()

		var tx domain.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tx.UserID = requestUserID(r)
		tx.MonthPeriod = chi.URLParam(r, "month")

		created, err := svc.AddTransaction(ctx, &tx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateTransactionHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/liquidity/{month}/transactions/{transactionId}")
		defer span.End()

		var tx domain.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tx.UserID = requestUserID(r)
		tx.MonthPeriod = chi.URLParam(r, "month")
		tx.ID = chi.URLParam(r, "transactionId")

		updated, err := svc.UpdateTransaction(ctx, &tx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteTransactionHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}/liquidity/{month}/transactions/{transactionId}")
		defer span.End()

		userID := requestUserID(r)
		month := chi.URLParam(r, "month")
		transactionID := chi.URLParam(r, "transactionId")

		if err := svc.DeleteTransaction(ctx, userID, month, transactionID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "transaction deleted", ID: transactionID})
	}
}
