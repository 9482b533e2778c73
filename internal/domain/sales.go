package domain

import (
	"fmt"
	"time"
)

// ============================================================
// Raw input rows
// ============================================================

// RawRow is a loosely-typed record as it arrives from CSV/spreadsheet
// uploads or manual entry. Field names vary between sources ("Date",
// "sale_date", "Qty"...), so values are sniffed by key substring.
type RawRow map[string]any

// RejectedRow carries a row that failed normalization, with the reason.
// Rejected rows are excluded from the batch, never fatal to the request.
type RejectedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ============================================================
// Transactions
// ============================================================

// Transaction is the canonical shape of a single sales record after
// normalization. Immutable once produced.
type Transaction struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Amount is the line amount (price x quantity).
func (t Transaction) Amount() float64 {
	return t.Price * float64(t.Quantity)
}

// DedupKey identifies a transaction for merge purposes. Two
// transactions equal on all four fields are treated as the same record.
func (t Transaction) DedupKey() string {
	return fmt.Sprintf("%s|%s|%.2f|%d", t.Product, t.Date, t.Price, t.Quantity)
}

// MonthOf returns the (year, month) bucket derived from the date.
// The date is already canonical, so failure here means a programming
// error upstream; the error is still surfaced rather than swallowed.
func (t Transaction) MonthOf() (year, month int, err error) {
	d, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return 0, 0, err
	}
	return d.Year(), int(d.Month()), nil
}

// ============================================================
// Monthly summaries
// ============================================================

// MonthlySummary is the stored per-(user, year, month) aggregate.
// Totals are always recomputed from the full transaction snapshot,
// never accumulated incrementally.
type MonthlySummary struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id"`
	Year                int           `json:"year"`
	Month               int           `json:"month"` // 1-12
	TotalRevenue        float64       `json:"total_revenue"`
	TotalTransactions   int           `json:"total_transactions"`
	AvgTransactionValue float64       `json:"avg_transaction_value"`
	TopCategory         string        `json:"top_category"`
	Transactions        []Transaction `json:"transactions,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at,omitempty"`
}

// MonthLabel returns the short label for the summary's month, e.g. "Jan 2025".
func (s MonthlySummary) MonthLabel() string {
	return fmt.Sprintf("%s %d", MonthName(s.Month), s.Year)
}

// MonthName returns the short English month name for 1-12, "Unknown" otherwise.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return time.Month(month).String()[:3]
}

// ============================================================
// Trend
// ============================================================

// TrendPoint is one point of the chronological monthly revenue series.
// Derived from summaries on every read; never persisted on its own.
type TrendPoint struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders,omitempty"`
}

// ============================================================
// Ingest result
// ============================================================

// IngestResult is returned by the ingestion operation: per-month
// recomputed summaries plus the derived trend and insights.
type IngestResult struct {
	BatchID      string           `json:"batch_id"`
	RowsReceived int              `json:"rows_received"`
	RowsAccepted int              `json:"rows_accepted"`
	RowsRejected int              `json:"rows_rejected"`
	Rejected     []RejectedRow    `json:"rejected,omitempty"`
	Months       []MonthlySummary `json:"months"`
	Trend        []TrendPoint     `json:"trend"`
	Insights     *InsightReport   `json:"insights,omitempty"`
}

// ForecastResult is returned by the forecast operation. The trend
// sequence ends with the synthetic "Next" projection point.
type ForecastResult struct {
	Trend       []TrendPoint `json:"forecast"`
	Projection  float64      `json:"projection"`
	BaseInsight string       `json:"insight"`
	AIInsight   string       `json:"aiInsight"`
}
