package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var analyticsTracer = otel.Tracer("service/analytics")

// maxProductSlices caps the product breakdown, matching the original
// top-10 product query.
const maxProductSlices = 10

// AnalyticsService computes cross-month aggregates: summary statistics,
// trend series, category breakdowns, and rule-based insights.
type AnalyticsService struct {
	store   port.SalesStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAnalyticsService creates the analytics service with dependencies injected.
func NewAnalyticsService(store port.SalesStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// GetSummary aggregates all stored months for the user. Growth compares
// the first and last month's revenue; best month is the revenue maximum.
func (s *AnalyticsService) GetSummary(ctx context.Context, userID string) (*domain.AnalyticsSummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetSummary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	cacheKey := fmt.Sprintf("analytics:summary:%s", userID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if summary, ok := cached.(*domain.AnalyticsSummary); ok {
			s.metrics.IncrCacheHit("analytics")
			return summary, nil
		}
	}
	s.metrics.IncrCacheMiss("analytics")

	summaries, err := s.store.ListMonthlySummaries(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	summary := buildAnalyticsSummary(summaries)
	s.cache.Set(cacheKey, summary)
	return summary, nil
}

func buildAnalyticsSummary(summaries []domain.MonthlySummary) *domain.AnalyticsSummary {
	out := &domain.AnalyticsSummary{
		BestMonth:    "N/A",
		GrowthPeriod: "N/A",
		Period:       "All time",
	}

	for _, m := range summaries {
		out.TotalSales += m.TotalRevenue
		out.TotalTransactions += m.TotalTransactions
		if m.TotalRevenue > out.BestMonthSales {
			out.BestMonthSales = m.TotalRevenue
			out.BestMonth = m.MonthLabel()
		}
	}

	if out.TotalTransactions > 0 {
		out.AvgOrderValue = out.TotalSales / float64(out.TotalTransactions)
	}

	if len(summaries) >= 2 {
		first := summaries[0]
		last := summaries[len(summaries)-1]
		if first.TotalRevenue > 0 {
			growth := (last.TotalRevenue - first.TotalRevenue) / first.TotalRevenue * 100
			// One decimal place, as displayed.
			out.Growth = math.Round(growth*10) / 10
		}
		out.GrowthPeriod = fmt.Sprintf("%s to %s", domain.MonthName(first.Month), domain.MonthName(last.Month))
	}

	return out
}

// GetTrends returns the chronological monthly revenue series.
func (s *AnalyticsService) GetTrends(ctx context.Context, userID string) ([]domain.TrendPoint, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetTrends")
	defer span.End()

	summaries, err := s.store.ListMonthlySummaries(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	trend := make([]domain.TrendPoint, 0, len(summaries))
	for _, m := range summaries {
		trend = append(trend, domain.TrendPoint{
			Month:  domain.MonthName(m.Month),
			Sales:  m.TotalRevenue,
			Orders: m.TotalTransactions,
		})
	}
	return trend, nil
}

// GetCategories returns the revenue breakdown by product, falling back
// to categories when product names are entirely absent or unknown.
// Fallback policy: every product name empty or the "Unknown Product"
// placeholder triggers the category view.
func (s *AnalyticsService) GetCategories(ctx context.Context, userID string) ([]domain.CategorySlice, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetCategories")
	defer span.End()

	summaries, err := s.store.ListMonthlySummaries(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	var txns []domain.Transaction
	for _, m := range summaries {
		txns = append(txns, m.Transactions...)
	}

	if hasNamedProducts(txns) {
		slices := sliceBy(txns, func(tx domain.Transaction) string {
			if tx.Product == "" {
				return defaultProduct
			}
			return tx.Product
		})
		if len(slices) > maxProductSlices {
			slices = slices[:maxProductSlices]
		}
		return withPercentages(slices), nil
	}

	slices := sliceBy(txns, func(tx domain.Transaction) string {
		if tx.Category == "" {
			return defaultCategory
		}
		return tx.Category
	})
	return withPercentages(slices), nil
}

func hasNamedProducts(txns []domain.Transaction) bool {
	for _, tx := range txns {
		if tx.Product != "" && tx.Product != defaultProduct {
			return true
		}
	}
	return false
}

// sliceBy aggregates line amounts by label and sorts descending by value.
func sliceBy(txns []domain.Transaction, label func(domain.Transaction) string) []domain.CategorySlice {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, tx := range txns {
		name := label(tx)
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] += tx.Amount()
	}

	slices := make([]domain.CategorySlice, 0, len(order))
	for _, name := range order {
		slices = append(slices, domain.CategorySlice{Name: name, Value: totals[name]})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value > slices[j].Value
	})
	return slices
}

func withPercentages(slices []domain.CategorySlice) []domain.CategorySlice {
	var total float64
	for _, s := range slices {
		total += s.Value
	}
	if total <= 0 {
		return slices
	}
	for i := range slices {
		slices[i].Percentage = math.Round(slices[i].Value / total * 100)
	}
	return slices
}

// GetInsights evaluates the rule set against the summary, trend, and
// category breakdown, fetched concurrently.
func (s *AnalyticsService) GetInsights(ctx context.Context, userID string) (*domain.InsightReport, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetInsights")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var input insightInput

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.GetSummary(gCtx, userID)
		if err != nil {
			return err
		}
		input.Summary = *summary
		return nil
	})
	g.Go(func() error {
		trend, err := s.GetTrends(gCtx, userID)
		if err != nil {
			return err
		}
		input.Trend = trend
		return nil
	})
	g.Go(func() error {
		categories, err := s.GetCategories(gCtx, userID)
		if err != nil {
			return err
		}
		input.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := classifyInsights(input)
	return &report, nil
}

// InvalidateUser drops cached analytics for the user after a write.
func (s *AnalyticsService) InvalidateUser(userID string) {
	s.cache.Delete(fmt.Sprintf("analytics:summary:%s", userID))
}
