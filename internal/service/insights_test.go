package service

import (
	"strings"
	"testing"

	"github.com/Manan1014/ssas-go/internal/domain"
)

func TestClassifyInsights_TruncatesToFive(t *testing.T) {
	// Inputs chosen so every rule fires at least once.
	report := classifyInsights(insightInput{
		Summary: domain.AnalyticsSummary{
			TotalSales:     30000,
			AvgOrderValue:  50,
			BestMonth:      "Mar 2025",
			BestMonthSales: 15000,
			Growth:         12.0,
			GrowthPeriod:   "Jan to Mar",
		},
		Trend: []domain.TrendPoint{
			{Month: "Jan", Sales: 5000},
			{Month: "Feb", Sales: 10000},
			{Month: "Mar", Sales: 15000},
		},
		Categories: []domain.CategorySlice{
			{Name: "Electronics", Value: 27000, Percentage: 90},
			{Name: "Stationery", Value: 3000, Percentage: 10},
		},
	})

	if len(report.Insights) > 5 {
		t.Errorf("expected at most 5 insights, got %d", len(report.Insights))
	}
	if report.TotalGenerated <= 5 {
		t.Errorf("expected more than 5 generated before truncation, got %d", report.TotalGenerated)
	}
}

func TestClassifyInsights_PriorityOrdering(t *testing.T) {
	report := classifyInsights(insightInput{
		Summary: domain.AnalyticsSummary{
			TotalSales:    600000,
			AvgOrderValue: 500,
			Growth:        -8.0,
			GrowthPeriod:  "Jan to Jun",
		},
		Trend: []domain.TrendPoint{
			{Sales: 120000}, {Sales: 110000}, {Sales: 100000},
		},
	})

	for i := 1; i < len(report.Insights); i++ {
		prev := domain.PriorityRank(report.Insights[i-1].Priority)
		cur := domain.PriorityRank(report.Insights[i].Priority)
		if prev > cur {
			t.Fatalf("insights out of priority order at %d: %s before %s",
				i, report.Insights[i-1].Priority, report.Insights[i].Priority)
		}
	}
	if report.Insights[0].Priority != domain.PriorityCritical {
		t.Errorf("expected a critical insight first, got %s", report.Insights[0].Priority)
	}
}

func TestGrowthRule_DecliningSales(t *testing.T) {
	out := growthRule(insightInput{
		Summary: domain.AnalyticsSummary{Growth: -12.5, GrowthPeriod: "Jan to Apr"},
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(out))
	}
	if out[0].Title != "Declining Sales" || out[0].Priority != domain.PriorityCritical {
		t.Errorf("unexpected insight: %+v", out[0])
	}
	if !strings.Contains(out[0].Text, "12.5%") {
		t.Errorf("expected text to show the magnitude, got %q", out[0].Text)
	}
}

func TestGrowthRule_Tiers(t *testing.T) {
	cases := []struct {
		growth   float64
		title    string
		priority string
	}{
		{15, "Strong Growth Trend", domain.PriorityHigh},
		{5, "Moderate Growth", domain.PriorityMedium},
		{0, "Flat Sales", domain.PriorityLow},
		{-1, "Declining Sales", domain.PriorityCritical},
	}
	for _, c := range cases {
		out := growthRule(insightInput{Summary: domain.AnalyticsSummary{Growth: c.growth}})
		if len(out) != 1 || out[0].Title != c.title || out[0].Priority != c.priority {
			t.Errorf("growth %v: expected %s/%s, got %+v", c.growth, c.title, c.priority, out)
		}
	}
}

func TestAvgOrderValueRule_SkipsWhenZero(t *testing.T) {
	if out := avgOrderValueRule(insightInput{}); out != nil {
		t.Errorf("expected no insight for zero AOV, got %+v", out)
	}
}

func TestRecentTrendRule(t *testing.T) {
	up := []domain.TrendPoint{{Sales: 100}, {Sales: 150}, {Sales: 200}}
	down := []domain.TrendPoint{{Sales: 200}, {Sales: 150}, {Sales: 100}}
	mixed := []domain.TrendPoint{{Sales: 100}, {Sales: 200}, {Sales: 150}}

	if out := recentTrendRule(insightInput{Trend: up}); out[0].Title != "Positive Momentum" {
		t.Errorf("rising trend: got %+v", out[0])
	}
	if out := recentTrendRule(insightInput{Trend: down}); out[0].Title != "Concerning Trend" {
		t.Errorf("falling trend: got %+v", out[0])
	}
	if out := recentTrendRule(insightInput{Trend: mixed}); out[0].Title != "Fluctuating Sales" {
		t.Errorf("mixed trend: got %+v", out[0])
	}

	if out := recentTrendRule(insightInput{Trend: up[:2]}); out != nil {
		t.Errorf("expected no insight below 3 points, got %+v", out)
	}
}

func TestRecentTrendRule_UsesLastThreePoints(t *testing.T) {
	trend := []domain.TrendPoint{
		{Sales: 900}, {Sales: 100}, {Sales: 150}, {Sales: 200},
	}
	out := recentTrendRule(insightInput{Trend: trend})
	if out[0].Title != "Positive Momentum" {
		t.Errorf("expected only last 3 points considered, got %+v", out[0])
	}
}

func TestCategoryConcentrationRule(t *testing.T) {
	concentrated := []domain.CategorySlice{
		{Name: "Electronics", Percentage: 70},
		{Name: "Stationery", Percentage: 30},
	}
	out := categoryConcentrationRule(insightInput{Categories: concentrated})
	if len(out) == 0 || out[0].Title != "Concentration Risk" {
		t.Errorf("expected concentration warning, got %+v", out)
	}

	withLaggard := []domain.CategorySlice{
		{Name: "Electronics", Percentage: 38},
		{Name: "Furniture", Percentage: 60},
		{Name: "Misc", Percentage: 2},
	}
	out = categoryConcentrationRule(insightInput{Categories: withLaggard})
	found := false
	for _, ins := range out {
		if ins.Title == "Underperforming Segment" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected underperforming segment insight, got %+v", out)
	}

	if out := categoryConcentrationRule(insightInput{}); out != nil {
		t.Errorf("expected no insight without categories, got %+v", out)
	}
}

func TestPeakPeriodRule_SkipsPlaceholder(t *testing.T) {
	if out := peakPeriodRule(insightInput{Summary: domain.AnalyticsSummary{BestMonth: "N/A"}}); out != nil {
		t.Errorf("expected no insight for N/A best month, got %+v", out)
	}
	out := peakPeriodRule(insightInput{
		Summary: domain.AnalyticsSummary{BestMonth: "Mar 2025", BestMonthSales: 12500},
	})
	if len(out) != 1 || !strings.Contains(out[0].Text, "Mar 2025") {
		t.Errorf("expected peak insight naming the month, got %+v", out)
	}
}
