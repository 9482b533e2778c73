package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/handler"
	"github.com/Manan1014/ssas-go/internal/infra/cache"
	"github.com/Manan1014/ssas-go/internal/infra/memory"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/service"

	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()

	analyticsSvc := service.NewAnalyticsService(store, cache.New[any](time.Minute), metrics, logger)
	salesSvc := service.NewSalesService(store, analyticsSvc, metrics, logger)
	forecastSvc := service.NewForecastService(store, nil, metrics, logger)

	return handler.NewRouter(salesSvc, analyticsSvc, forecastSvc, store, metrics, []string{"*"}, logger)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Healthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var health domain.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_IngestAndRead(t *testing.T) {
	router := newTestRouter()

	body := `{"data":[
		{"date":"2025-01-10","product":"Laptop","category":"Electronics","price":500,"qty":2},
		{"date":"2025-01-15","product":"Mouse","category":"Electronics","price":25,"qty":4}
	]}`
	rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.IngestResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode ingest result: %v", err)
	}
	if result.RowsAccepted != 2 || len(result.Months) != 1 {
		t.Errorf("unexpected ingest result: %+v", result)
	}
	if result.Months[0].TotalRevenue != 1100 {
		t.Errorf("expected revenue 1100, got %v", result.Months[0].TotalRevenue)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/u1/sales", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var months []domain.MonthlySummary
	if err := json.NewDecoder(rec.Body).Decode(&months); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(months) != 1 || months[0].Month != 1 {
		t.Errorf("unexpected month list: %+v", months)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/u1/sales/2025/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("month transactions: expected 200, got %d", rec.Code)
	}
	var txns []domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&txns); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(txns))
	}
}

func TestRouter_IngestValidation(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", `{"data":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestRouter_MonthNotFound(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/v1/users/u1/sales/2025/6", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_BadMonthParam(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/v1/users/u1/sales/2025/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-integer month, got %d", rec.Code)
	}
}

func TestRouter_DeleteMonth(t *testing.T) {
	router := newTestRouter()

	body := `{"data":[{"date":"2025-03-10","price":10,"qty":1}]}`
	if rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", body); rec.Code != http.StatusOK {
		t.Fatalf("ingest: got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodDelete, "/v1/users/u1/sales/2025/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/users/u1/sales/2025/3", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestRouter_AnalyticsEndpoints(t *testing.T) {
	router := newTestRouter()

	body := `{"data":[
		{"date":"2025-01-10","product":"Laptop","category":"Electronics","price":500,"qty":2},
		{"date":"2025-02-15","product":"Desk","category":"Furniture","price":200,"qty":1}
	]}`
	if rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", body); rec.Code != http.StatusOK {
		t.Fatalf("ingest: got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/users/u1/analytics/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", rec.Code)
	}
	var summary domain.AnalyticsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalSales != 1200 {
		t.Errorf("expected total 1200, got %v", summary.TotalSales)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/u1/analytics/trends", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trends: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/u1/analytics/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/u1/analytics/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("insights: expected 200, got %d", rec.Code)
	}
}

func TestRouter_Forecast(t *testing.T) {
	router := newTestRouter()

	body := `{"data":[
		{"date":"2025-01-10","price":1000,"qty":1},
		{"date":"2025-02-10","price":1200,"qty":1},
		{"date":"2025-03-10","price":1500,"qty":1}
	]}`
	if rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", body); rec.Code != http.StatusOK {
		t.Fatalf("ingest: got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/forecast", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast: expected 200, got %d", rec.Code)
	}
	var result domain.ForecastResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode forecast: %v", err)
	}
	if result.Projection != 1900 {
		t.Errorf("expected projection 1900, got %v", result.Projection)
	}
	if result.AIInsight != "AI insight unavailable." {
		t.Errorf("expected placeholder insight, got %q", result.AIInsight)
	}
}

func TestRouter_PipelineMetrics(t *testing.T) {
	router := newTestRouter()

	body := `{"data":[{"date":"2025-01-10","price":10,"qty":1},{"date":"bad","price":10,"qty":1}]}`
	if rec := doRequest(t, router, http.MethodPost, "/v1/users/u1/sales", body); rec.Code != http.StatusOK {
		t.Fatalf("ingest: got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/metrics/pipeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snapshot domain.PipelineMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.RowsIngested != 1 || snapshot.RowsRejected != 1 {
		t.Errorf("expected 1 ingested / 1 rejected, got %d / %d",
			snapshot.RowsIngested, snapshot.RowsRejected)
	}
}
