// Package handler wires HTTP routes to the service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/port"
	"github.com/Manan1014/ssas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	salesSvc *service.SalesService,
	analyticsSvc *service.AnalyticsService,
	forecastSvc *service.ForecastService,
	store port.SalesStore,
	metrics *observability.Metrics,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		r.Route("/users/{userID}", func(r chi.Router) {
			// Sales data
			r.Post("/sales", ingestHandler(salesSvc, logger))
			r.Get("/sales", listMonthlyHandler(salesSvc, logger))
			r.Get("/sales/{year}/{month}", monthTransactionsHandler(salesSvc, logger))
			r.Delete("/sales/{year}/{month}", deleteMonthHandler(salesSvc, logger))

			// Analytics
			r.Get("/analytics/summary", summaryHandler(analyticsSvc, logger))
			r.Get("/analytics/trends", trendsHandler(analyticsSvc, logger))
			r.Get("/analytics/categories", categoriesHandler(analyticsSvc, logger))
			r.Get("/analytics/insights", insightsHandler(analyticsSvc, logger))

			// Forecast
			r.Post("/forecast", forecastHandler(forecastSvc, logger))
		})

		// Pipeline metrics snapshot
		r.Get("/metrics/pipeline", pipelineMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler(store port.SalesStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "ssas-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		overall := "healthy"
		if store != nil {
			start := time.Now()
			err := store.Ping(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "unhealthy"
				overall = "unhealthy"
				logger.Error("store health check failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "store", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		code := http.StatusOK
		if overall != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, domain.HealthResponse{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
