package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var forecastTracer = otel.Tracer("service/forecast")

// aiUnavailable is returned whenever the external insight call fails or
// is unconfigured. It must never surface as a request failure.
const aiUnavailable = "AI insight unavailable."

// strongSalesThreshold splits the local base insight tiers on average
// monthly revenue.
const strongSalesThreshold = 10000

// ForecastService projects the next month's revenue over the stored
// series and attaches a rule-based base insight plus an optional
// AI-generated one.
type ForecastService struct {
	store   port.SalesStore
	insight port.InsightGenerator // nil when unconfigured
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewForecastService creates the forecast service. insight may be nil;
// the AI insight then degrades to a placeholder.
func NewForecastService(store port.SalesStore, insight port.InsightGenerator, metrics *observability.Metrics, logger *zap.Logger) *ForecastService {
	return &ForecastService{store: store, insight: insight, metrics: metrics, logger: logger}
}

// Forecast builds the user's trend series, appends the projected next
// point, and generates insights. The AI call is best-effort: any
// failure degrades to a placeholder string.
func (s *ForecastService) Forecast(ctx context.Context, userID string) (*domain.ForecastResult, error) {
	ctx, span := forecastTracer.Start(ctx, "ForecastService.Forecast")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("forecast", time.Since(start))
	}()

	summaries, err := s.store.ListMonthlySummaries(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	trend := make([]domain.TrendPoint, 0, len(summaries))
	for _, m := range summaries {
		trend = append(trend, domain.TrendPoint{Month: m.MonthLabel(), Sales: m.TotalRevenue})
	}

	withNext, projection := appendProjection(trend)

	return &domain.ForecastResult{
		Trend:       withNext,
		Projection:  projection,
		BaseInsight: baseInsight(trend),
		AIInsight:   s.aiInsight(ctx, withNext),
	}, nil
}

// baseInsight is the local rule-based insight over average monthly sales.
func baseInsight(trend []domain.TrendPoint) string {
	if len(trend) == 0 {
		return "No sales data yet — upload records to see trends."
	}
	var sum float64
	for _, p := range trend {
		sum += p.Sales
	}
	avg := sum / float64(len(trend))

	if avg > strongSalesThreshold {
		return "Sales are performing strongly — focus on maintaining momentum!"
	}
	return "Sales are moderate — consider promotions or new product lines."
}

// aiInsight calls the external text-generation service. Failure is
// logged and counted but never propagated.
func (s *ForecastService) aiInsight(ctx context.Context, trend []domain.TrendPoint) string {
	if s.insight == nil {
		return aiUnavailable
	}

	trendJSON, err := json.Marshal(trend)
	if err != nil {
		return aiUnavailable
	}
	prompt := fmt.Sprintf(
		"Analyze this sales trend data: %s. Provide a short, business-friendly insight (2 sentences max) about trends and next steps.",
		trendJSON,
	)

	completion, err := s.insight.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("ai insight generation failed", zap.Error(err))
		s.metrics.IncrExternalError("openai")
		return aiUnavailable
	}

	s.metrics.RecordTokens(completion.PromptTokens, completion.CompletionTokens)
	return completion.Text
}
