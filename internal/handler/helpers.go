package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mymoney-app/mymoney-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseResetDay reads the reset_day query parameter, falling back to the
// configured default. Out-of-range values are rejected downstream by the
// period resolver.
func parseResetDay(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("reset_day"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			return d
		}
	}
	return fallback
}

// chartPalette is the fixed color cycle applied to distribution slices.
// Colors are a presentation concern and never participate in aggregation.
var chartPalette = []string{
	"#4F46E5", "#06B6D4", "#10B981", "#F59E0B",
	"#EF4444", "#8B5CF6", "#EC4899", "#64748B",
}

type distributionSlice struct {
	domain.ExpenseDistributionSlice
	Color string `json:"color"`
}

// colorize assigns palette colors to distribution slices in order, cycling
// when there are more categories than colors.
func colorize(slices []domain.ExpenseDistributionSlice) []distributionSlice {
	out := make([]distributionSlice, len(slices))
	for i, s := range slices {
		out[i] = distributionSlice{
			ExpenseDistributionSlice: s,
			Color:                    chartPalette[i%len(chartPalette)],
		}
	}
	return out
}

// handleServiceError maps domain errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var conflict *domain.ErrConflict
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
