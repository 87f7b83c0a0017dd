package handler

import (
	"net/http"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/config"
	"github.com/mymoney-app/mymoney-go/internal/domain"
	"github.com/mymoney-app/mymoney-go/internal/infra/observability"
	"github.com/mymoney-app/mymoney-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract consumed by the MyMoney frontend.
func NewRouter(svc *service.FinanceService, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Engine counters snapshot, outside the per-user tree.
		r.Get("/metrics/aggregation", aggregationMetricsHandler(svc, logger))

		r.Route("/users/{userId}", func(r chi.Router) {
			if cfg.JWTSecret != "" {
				r.Use(JWTAuthMiddleware(cfg.JWTSecret, logger))
			}

			// =============================================
			// Dashboard (derived views, computed per request)
			// =============================================
			r.Get("/dashboard/stats", dashboardStatsHandler(svc, cfg, logger))
			r.Get("/dashboard/trend", monthlyTrendHandler(svc, cfg, logger))
			r.Get("/dashboard/distribution", expenseDistributionHandler(svc, cfg, logger))
			r.Get("/dashboard/summary", globalSummaryHandler(svc, logger))

			// =============================================
			// Initial liquidity (carry-forward records)
			// =============================================
			r.Get("/initial-liquidity", listInitialLiquidityHandler(svc, logger))
			r.Post("/initial-liquidity/{month}/recalculate", recalculateInitialLiquidityHandler(svc, logger))
			r.Put("/initial-liquidity/{month}", setInitialLiquidityHandler(svc, logger))

			// =============================================
			// Monthly liquidity document
			// =============================================
			r.Route("/liquidity/{month}", func(r chi.Router) {
				r.Get("/", getMonthlyLiquidityHandler(svc, logger))
				r.Put("/balance", updateMonthlyBalanceHandler(svc, logger))

				r.Post("/sources", createLiquiditySourceHandler(svc, logger))
				r.Put("/sources/{sourceId}", updateLiquiditySourceHandler(svc, logger))
				r.Delete("/sources/{sourceId}", deleteLiquiditySourceHandler(svc, logger))

				r.Get("/transactions", listTransactionsHandler(svc, logger))
				r.Post("/transactions", createTransactionHandler(svc, logger))
				r.Put("/transactions/{transactionId}", updateTransactionHandler(svc, logger))
				r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svc, logger))
			})

			// =============================================
			// Savings
			// =============================================
			r.Get("/savings/sources", listSavingsHandler(svc, logger))
			r.Post("/savings/sources/{sourceId}/recalculate", recalculateSavingsHandler(svc, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "mymoney-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		_, err := svc.ListInitialLiquidity(ctx, "health-check")
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
			logger.Warn("healthz: store probe failed", zap.Error(err))
		}
		services = append(services, domain.ServiceHealth{
			Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
