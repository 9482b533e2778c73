package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"
)

// Row normalization: converts loosely-typed upload rows into canonical
// transactions. Pure functions, no I/O.

// excelEpoch is day zero of the spreadsheet serial date system.
// (1900-based with the historical leap-year bug, hence Dec 30.)
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Defaults applied to optional fields.
const (
	defaultProduct  = "Unknown Product"
	defaultCategory = "General"
	defaultRegion   = "Unknown"
)

// NormalizedBatch is the result of normalizing a batch of raw rows.
type NormalizedBatch struct {
	Transactions []domain.Transaction
	Rejected     []domain.RejectedRow
}

// NormalizeRows converts raw rows to canonical transactions. Rows whose
// date cannot be parsed or whose price/quantity cannot be coerced to a
// non-negative number are excluded and reported, never fatal.
func NormalizeRows(rows []domain.RawRow) NormalizedBatch {
	batch := NormalizedBatch{
		Transactions: make([]domain.Transaction, 0, len(rows)),
	}

	for i, row := range rows {
		tx, err := normalizeRow(row)
		if err != nil {
			batch.Rejected = append(batch.Rejected, domain.RejectedRow{
				Index:  i,
				Reason: err.Error(),
			})
			continue
		}
		batch.Transactions = append(batch.Transactions, tx)
	}

	return batch
}

func normalizeRow(row domain.RawRow) (domain.Transaction, error) {
	date, err := parseDateValue(findField(row, "date"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("date: %w", err)
	}

	price, err := coerceNumber(findField(row, "price"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("price: %w", err)
	}

	qtyVal := findField(row, "qty")
	if qtyVal == nil {
		qtyVal = findField(row, "quantity")
	}
	quantity, err := coerceNumber(qtyVal)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("quantity: %w", err)
	}

	return domain.Transaction{
		Date:     date,
		Product:  stringFieldOr(row, "product", defaultProduct),
		Category: stringFieldOr(row, "category", defaultCategory),
		Region:   stringFieldOr(row, "region", defaultRegion),
		Price:    price,
		Quantity: int(quantity),
	}, nil
}

// findField locates a value by case-insensitive key substring, matching
// the loose column naming of spreadsheet uploads ("Date", "sale_date",
// "Qty Sold"...).
func findField(row domain.RawRow, pattern string) any {
	if v, ok := row[pattern]; ok {
		return v
	}
	for k, v := range row {
		if strings.Contains(strings.ToLower(k), pattern) {
			return v
		}
	}
	return nil
}

func stringFieldOr(row domain.RawRow, pattern, fallback string) string {
	v := findField(row, pattern)
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// parseDateValue normalizes a date-like value to YYYY-MM-DD. Accepted
// inputs: ISO/RFC3339 strings, spreadsheet serial day numbers, native
// time values, and loose strings with "." or "/" separators.
func parseDateValue(v any) (string, error) {
	switch d := v.(type) {
	case nil:
		return "", fmt.Errorf("missing")
	case time.Time:
		return d.Format("2006-01-02"), nil
	case float64:
		return serialToDate(d)
	case int:
		return serialToDate(float64(d))
	case string:
		return parseDateString(d)
	}
	return "", fmt.Errorf("unsupported type %T", v)
}

// serialToDate converts a spreadsheet serial day number. Values at or
// below 1000 predate any plausible sales date and are rejected.
func serialToDate(serial float64) (string, error) {
	if serial <= 1000 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return "", fmt.Errorf("serial day number %v out of range", serial)
	}
	d := excelEpoch.AddDate(0, 0, int(serial))
	return d.Format("2006-01-02"), nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-1-2",
	"01-02-2006",
}

func parseDateString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("missing")
	}
	// Loose separators: "2025.01.10" and "2025/01/10" both mean "2025-01-10".
	clean := strings.NewReplacer(".", "-", "/", "-").Replace(s)

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, clean); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", s)
}

// coerceNumber converts a price/quantity value to a non-negative float.
// Missing values default to 0; negatives and non-numeric values fail.
func coerceNumber(v any) (float64, error) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		n = t
	case int:
		n = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %v", n)
	}
	return n, nil
}
