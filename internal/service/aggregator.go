package service

import (
	"sort"

	"github.com/Manan1014/ssas-go/internal/domain"
)

// Monthly aggregation: grouping, merge-with-dedup, and summary
// recomputation. Pure functions; persistence happens in SalesService.

// monthKey is the (year, month) bucket derived from a transaction date.
type monthKey struct {
	Year  int
	Month int
}

// groupByMonth buckets transactions by calendar month. Transactions
// are already normalized, so their dates always parse.
func groupByMonth(txns []domain.Transaction) map[monthKey][]domain.Transaction {
	groups := make(map[monthKey][]domain.Transaction)
	for _, tx := range txns {
		year, month, err := tx.MonthOf()
		if err != nil {
			continue
		}
		k := monthKey{Year: year, Month: month}
		groups[k] = append(groups[k], tx)
	}
	return groups
}

// sortedMonthKeys returns the affected months in chronological order,
// so multi-month batches are processed deterministically.
func sortedMonthKeys(groups map[monthKey][]domain.Transaction) []monthKey {
	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})
	return keys
}

// mergeTransactions merges incoming transactions into the stored set.
// A transaction identical on (product, date, price, quantity) to an
// already-present one is skipped; everything else is appended. Stored
// order is preserved, making re-ingestion idempotent.
func mergeTransactions(existing, incoming []domain.Transaction) []domain.Transaction {
	merged := make([]domain.Transaction, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, tx := range existing {
		key := tx.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, tx)
	}
	for _, tx := range incoming {
		key := tx.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, tx)
	}
	return merged
}

// buildSummary recomputes a month's summary from its complete merged
// transaction set. Never accumulates onto a stale counter.
func buildSummary(userID string, year, month int, txns []domain.Transaction) *domain.MonthlySummary {
	var total float64
	for _, tx := range txns {
		total += tx.Amount()
	}

	avg := float64(0)
	if len(txns) > 0 {
		avg = total / float64(len(txns))
	}

	return &domain.MonthlySummary{
		UserID:              userID,
		Year:                year,
		Month:               month,
		TotalRevenue:        total,
		TotalTransactions:   len(txns),
		AvgTransactionValue: avg,
		TopCategory:         dominantCategory(txns),
		Transactions:        txns,
	}
}

// dominantCategory returns the most frequent category label, ties
// broken by first occurrence in iteration order.
func dominantCategory(txns []domain.Transaction) string {
	if len(txns) == 0 {
		return ""
	}

	counts := make(map[string]int, len(txns))
	order := make([]string, 0, len(txns))

	for _, tx := range txns {
		cat := tx.Category
		if cat == "" {
			cat = defaultCategory
		}
		if _, ok := counts[cat]; !ok {
			order = append(order, cat)
		}
		counts[cat]++
	}

	best := order[0]
	for _, cat := range order[1:] {
		if counts[cat] > counts[best] {
			best = cat
		}
	}
	return best
}
