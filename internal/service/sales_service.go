// Package service provides the business logic layer: row
// normalization, monthly aggregation, trend projection, and insight
// classification over an injected sales store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var salesTracer = otel.Tracer("service/sales")

// SalesService handles ingestion and month-level reads/deletes of
// sales data. Aggregation is recompute-from-scratch: every ingest
// merges into the stored set and rebuilds the month's totals.
type SalesService struct {
	store     port.SalesStore
	analytics *AnalyticsService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewSalesService creates the sales service with dependencies injected.
func NewSalesService(store port.SalesStore, analytics *AnalyticsService, metrics *observability.Metrics, logger *zap.Logger) *SalesService {
	return &SalesService{store: store, analytics: analytics, metrics: metrics, logger: logger}
}

// Ingest normalizes a batch of raw rows, merges them into the stored
// per-month transaction sets, recomputes and persists the affected
// monthly summaries atomically, and returns the recomputed summaries
// together with the refreshed trend and insights.
func (s *SalesService) Ingest(ctx context.Context, userID string, rows []domain.RawRow) (*domain.IngestResult, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("rows.received", len(rows)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("ingest", time.Since(start))
	}()

	if userID == "" {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "required"}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrValidation{Field: "data", Message: "at least one row is required"}
	}

	batchID := uuid.New().String()

	batch := NormalizeRows(rows)
	s.metrics.RecordRows(len(batch.Transactions), len(batch.Rejected))
	if len(batch.Rejected) > 0 {
		s.logger.Info("rows rejected during normalization",
			zap.String("batch_id", batchID),
			zap.String("user_id", userID),
			zap.Int("rejected", len(batch.Rejected)),
		)
	}
	if len(batch.Transactions) == 0 {
		return nil, &domain.ErrValidation{Field: "data", Message: "no valid rows after normalization"}
	}

	// Merge each affected month against its stored set and recompute.
	groups := groupByMonth(batch.Transactions)
	months := sortedMonthKeys(groups)

	updated := make([]*domain.MonthlySummary, 0, len(months))
	for _, k := range months {
		existing, err := s.store.GetMonthTransactions(ctx, userID, k.Year, k.Month)
		if err != nil {
			return nil, &domain.ErrStorage{Year: k.Year, Month: k.Month, Err: err}
		}
		merged := mergeTransactions(existing, groups[k])
		updated = append(updated, buildSummary(userID, k.Year, k.Month, merged))
	}

	// One atomic write for the batch: no partial month update survives
	// a failure.
	if err := s.store.SaveMonths(ctx, updated); err != nil {
		return nil, err
	}

	s.analytics.InvalidateUser(userID)

	s.logger.Info("sales batch ingested",
		zap.String("batch_id", batchID),
		zap.String("user_id", userID),
		zap.Int("accepted", len(batch.Transactions)),
		zap.Int("rejected", len(batch.Rejected)),
		zap.Int("months", len(updated)),
	)

	result := &domain.IngestResult{
		BatchID:      batchID,
		RowsReceived: len(rows),
		RowsAccepted: len(batch.Transactions),
		RowsRejected: len(batch.Rejected),
		Rejected:     batch.Rejected,
	}
	for _, m := range updated {
		result.Months = append(result.Months, *m)
	}

	// Refresh the derived views over the full stored series.
	trend, err := s.analytics.GetTrends(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Trend, _ = appendProjection(trend)

	insights, err := s.analytics.GetInsights(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Insights = insights

	return result, nil
}

// GetMonthlyData returns stored summaries for the user, optionally
// filtered by year and/or month. Zero means no filter.
func (s *SalesService) GetMonthlyData(ctx context.Context, userID string, year, month int) ([]domain.MonthlySummary, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.GetMonthlyData")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if month != 0 && (month < 1 || month > 12) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be between 1 and 12"}
	}
	return s.store.ListMonthlySummaries(ctx, userID, year, month)
}

// GetMonthTransactions returns the stored transaction set for one
// month. A month with no stored summary is reported as not found.
func (s *SalesService) GetMonthTransactions(ctx context.Context, userID string, year, month int) ([]domain.Transaction, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.GetMonthTransactions")
	defer span.End()

	if month < 1 || month > 12 {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be between 1 and 12"}
	}

	summaries, err := s.store.ListMonthlySummaries(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, &domain.ErrNotFound{Resource: "monthly data", ID: fmt.Sprintf("%s/%d-%02d", userID, year, month)}
	}

	return s.store.GetMonthTransactions(ctx, userID, year, month)
}

// DeleteMonth removes one month's summary and transactions.
func (s *SalesService) DeleteMonth(ctx context.Context, userID string, year, month int) error {
	ctx, span := salesTracer.Start(ctx, "SalesService.DeleteMonth")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if month < 1 || month > 12 {
		return &domain.ErrValidation{Field: "month", Message: "must be between 1 and 12"}
	}

	if err := s.store.DeleteMonth(ctx, userID, year, month); err != nil {
		return err
	}

	s.analytics.InvalidateUser(userID)
	s.logger.Info("monthly data deleted",
		zap.String("user_id", userID),
		zap.Int("year", year),
		zap.Int("month", month),
	)
	return nil
}
