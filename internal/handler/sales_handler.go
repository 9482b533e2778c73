package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Sales ingestion and monthly data
// ============================================================

func ingestHandler(svc *service.SalesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userID}/sales")
		defer span.End()

		userID := chi.URLParam(r, "userID")

		var apiReq struct {
			Data []domain.RawRow `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Ingest(ctx, userID, apiReq.Data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func listMonthlyHandler(svc *service.SalesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/sales")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		year, month := yearMonthQuery(r)

		months, err := svc.GetMonthlyData(ctx, userID, year, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if months == nil {
			months = []domain.MonthlySummary{}
		}
		writeJSON(w, http.StatusOK, months)
	}
}

func monthTransactionsHandler(svc *service.SalesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userID}/sales/{year}/{month}")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		year, month, ok := monthParams(w, r)
		if !ok {
			return
		}

		txns, err := svc.GetMonthTransactions(ctx, userID, year, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

func deleteMonthHandler(svc *service.SalesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userID}/sales/{year}/{month}")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		year, month, ok := monthParams(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteMonth(ctx, userID, year, month); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{
			Message: fmt.Sprintf("sales data for %d-%02d deleted", year, month),
		})
	}
}

// ============================================================
// Forecast
// ============================================================

func forecastHandler(svc *service.ForecastService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userID}/forecast")
		defer span.End()

		userID := chi.URLParam(r, "userID")

		result, err := svc.Forecast(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
