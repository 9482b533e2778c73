package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/Manan1014/ssas-go/internal/domain"
)

// Rule-based insight classification. Each rule is an independent
// predicate over the same input and yields zero or more insights; no
// rule depends on another having fired. Fired insights are stably
// sorted critical > high > medium > low and truncated to the top 5.

// maxInsights bounds the returned list; the pre-truncation count is
// still reported.
const maxInsights = 5

// insightInput is the fixed input every rule is evaluated against.
type insightInput struct {
	Summary    domain.AnalyticsSummary
	Trend      []domain.TrendPoint
	Categories []domain.CategorySlice
}

type insightRule func(insightInput) []domain.Insight

// insightRules are evaluated in order; ordering only matters for
// stability among equal priorities.
var insightRules = []insightRule{
	growthRule,
	avgOrderValueRule,
	peakPeriodRule,
	categoryConcentrationRule,
	recentTrendRule,
	totalVolumeRule,
}

// classifyInsights runs all rules and assembles the sorted, truncated report.
func classifyInsights(input insightInput) domain.InsightReport {
	var fired []domain.Insight
	for _, rule := range insightRules {
		fired = append(fired, rule(input)...)
	}

	sort.SliceStable(fired, func(i, j int) bool {
		return domain.PriorityRank(fired[i].Priority) < domain.PriorityRank(fired[j].Priority)
	})

	total := len(fired)
	if len(fired) > maxInsights {
		fired = fired[:maxInsights]
	}
	return domain.InsightReport{Insights: fired, TotalGenerated: total}
}

func growthRule(in insightInput) []domain.Insight {
	g := in.Summary.Growth
	period := in.Summary.GrowthPeriod

	switch {
	case g > 10:
		return []domain.Insight{{
			Icon:     "📈",
			Title:    "Strong Growth Trend",
			Text:     fmt.Sprintf("Your sales have increased by %.1f%% %s, showing positive momentum.", g, period),
			Priority: domain.PriorityHigh,
		}}
	case g > 0:
		return []domain.Insight{{
			Icon:     "📊",
			Title:    "Moderate Growth",
			Text:     fmt.Sprintf("Your sales have grown by %.1f%% %s. Consider promotions to accelerate the trend.", g, period),
			Priority: domain.PriorityMedium,
		}}
	case g < 0:
		return []domain.Insight{{
			Icon:     "📉",
			Title:    "Declining Sales",
			Text:     fmt.Sprintf("Your sales have decreased by %.1f%% %s, showing concerning momentum.", math.Abs(g), period),
			Priority: domain.PriorityCritical,
		}}
	}
	return []domain.Insight{{
		Icon:     "➖",
		Title:    "Flat Sales",
		Text:     fmt.Sprintf("Your sales are unchanged %s.", period),
		Priority: domain.PriorityLow,
	}}
}

func avgOrderValueRule(in insightInput) []domain.Insight {
	aov := in.Summary.AvgOrderValue
	if aov <= 0 {
		return nil
	}

	switch {
	case aov < 100:
		return []domain.Insight{{
			Icon:     "⚡",
			Title:    "Low Average Order Value",
			Text:     fmt.Sprintf("With an average order value of $%.0f, consider bundling or upselling strategies to increase this metric by 10-15%%.", aov),
			Priority: domain.PriorityMedium,
		}}
	case aov <= 300:
		return []domain.Insight{{
			Icon:     "💵",
			Title:    "Healthy Order Value",
			Text:     fmt.Sprintf("Your average order value of $%.0f is in a healthy range. Loyalty incentives could push it higher.", aov),
			Priority: domain.PriorityLow,
		}}
	}
	return []domain.Insight{{
		Icon:     "💎",
		Title:    "Premium Order Value",
		Text:     fmt.Sprintf("An average order value of $%.0f indicates a premium customer base. Protect it with white-glove service.", aov),
		Priority: domain.PriorityLow,
	}}
}

func peakPeriodRule(in insightInput) []domain.Insight {
	if in.Summary.BestMonth == "" || in.Summary.BestMonth == "N/A" {
		return nil
	}
	return []domain.Insight{{
		Icon:     "🎯",
		Title:    "Peak Performance",
		Text:     fmt.Sprintf("%s was your best period with $%.1fK in sales. Consider analyzing what strategies worked during this time.", in.Summary.BestMonth, in.Summary.BestMonthSales/1000),
		Priority: domain.PriorityMedium,
	}}
}

func categoryConcentrationRule(in insightInput) []domain.Insight {
	if len(in.Categories) == 0 {
		return nil
	}

	var out []domain.Insight

	top := in.Categories[0]
	if top.Percentage > 40 {
		out = append(out, domain.Insight{
			Icon:     "⚠️",
			Title:    "Concentration Risk",
			Text:     fmt.Sprintf("%s accounts for %.0f%% of total sales. Heavy reliance on one segment is a risk if demand shifts.", top.Name, top.Percentage),
			Priority: domain.PriorityMedium,
		})
	} else {
		out = append(out, domain.Insight{
			Icon:     "💡",
			Title:    "Healthy Diversification",
			Text:     fmt.Sprintf("Your top segment %s holds %.0f%% of sales — a well-diversified mix.", top.Name, top.Percentage),
			Priority: domain.PriorityLow,
		})
	}

	bottom := in.Categories[len(in.Categories)-1]
	if len(in.Categories) > 1 && bottom.Percentage < 5 {
		out = append(out, domain.Insight{
			Icon:     "🔍",
			Title:    "Underperforming Segment",
			Text:     fmt.Sprintf("%s contributes only %.0f%% of sales. Consider repositioning or retiring it.", bottom.Name, bottom.Percentage),
			Priority: domain.PriorityLow,
		})
	}

	return out
}

func recentTrendRule(in insightInput) []domain.Insight {
	if len(in.Trend) < 3 {
		return nil
	}
	recent := in.Trend[len(in.Trend)-3:]

	nonDecreasing := recent[1].Sales >= recent[0].Sales && recent[2].Sales >= recent[1].Sales
	nonIncreasing := recent[1].Sales <= recent[0].Sales && recent[2].Sales <= recent[1].Sales

	switch {
	case nonDecreasing:
		return []domain.Insight{{
			Icon:     "🚀",
			Title:    "Positive Momentum",
			Text:     "Your last 3 months show consistent growth. Keep up the great work and maintain your current strategies.",
			Priority: domain.PriorityHigh,
		}}
	case nonIncreasing:
		return []domain.Insight{{
			Icon:     "🔻",
			Title:    "Concerning Trend",
			Text:     "Your last 3 months show consistent decline. Review pricing, inventory, and marketing before the slide continues.",
			Priority: domain.PriorityCritical,
		}}
	}
	return []domain.Insight{{
		Icon:     "🌊",
		Title:    "Fluctuating Sales",
		Text:     "Your last 3 months show mixed results. Smoothing demand with recurring offers could stabilize revenue.",
		Priority: domain.PriorityMedium,
	}}
}

func totalVolumeRule(in insightInput) []domain.Insight {
	total := in.Summary.TotalSales

	switch {
	case total < 50_000:
		return []domain.Insight{{
			Icon:     "🌱",
			Title:    "Early Stage Revenue",
			Text:     fmt.Sprintf("Total sales of $%.1fK put you in the growth stage. Focus on repeatable acquisition channels.", total/1000),
			Priority: domain.PriorityMedium,
		}}
	case total < 500_000:
		return []domain.Insight{{
			Icon:     "🏪",
			Title:    "Established Revenue",
			Text:     fmt.Sprintf("Total sales of $%.1fK show an established business. Operational efficiency becomes the lever from here.", total/1000),
			Priority: domain.PriorityLow,
		}}
	}
	return []domain.Insight{{
		Icon:     "🏆",
		Title:    "Strong Revenue Base",
		Text:     fmt.Sprintf("Total sales of $%.1fK place you in the top revenue tier. Consider diversifying into adjacent markets.", total/1000),
		Priority: domain.PriorityLow,
	}}
}
