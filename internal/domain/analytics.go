package domain

// ============================================================
// Analytics summary
// ============================================================

// AnalyticsSummary aggregates all stored months for one user.
// Growth compares the first and last month's revenue.
type AnalyticsSummary struct {
	TotalSales        float64 `json:"totalSales"`
	TotalTransactions int     `json:"totalTransactions"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
	BestMonth         string  `json:"bestMonth"`
	BestMonthSales    float64 `json:"bestMonthSales"`
	Growth            float64 `json:"growth"`       // percent
	GrowthPeriod      string  `json:"growthPeriod"` // e.g. "Jan to Aug"
	Period            string  `json:"period"`
}

// CategorySlice is one entry of the category (or product) breakdown.
type CategorySlice struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"` // whole percent of total
}

// ============================================================
// Insights
// ============================================================

// Insight priorities, in descending order of urgency.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// PriorityRank maps priority labels to sort rank (critical first).
// Unknown labels sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Insight is one categorized textual finding. Purely derived; never stored.
type Insight struct {
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

// InsightReport is the classifier output: the top insights sorted by
// priority, plus how many fired before truncation.
type InsightReport struct {
	Insights       []Insight `json:"insights"`
	TotalGenerated int       `json:"totalGenerated"`
}
