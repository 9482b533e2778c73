package handler

import (
	"net/http"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Analytics read endpoints: summary, trends, categories, insights.
// ============================================================

func summaryHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/analytics/summary")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		summary, err := svc.GetSummary(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func trendsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/analytics/trends")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		trend, err := svc.GetTrends(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if trend == nil {
			trend = []domain.TrendPoint{}
		}
		writeJSON(w, http.StatusOK, trend)
	}
}

func categoriesHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/analytics/categories")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		slices, err := svc.GetCategories(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if slices == nil {
			slices = []domain.CategorySlice{}
		}
		writeJSON(w, http.StatusOK, slices)
	}
}

func insightsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/analytics/insights")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		report, err := svc.GetInsights(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func pipelineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetPipelineSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
