// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/Manan1014/ssas-go/internal/domain"
)

// SalesStore persists monthly summaries and their transaction snapshots.
// Implemented by the Postgres adapter and the in-memory store.
type SalesStore interface {
	// ListMonthlySummaries returns stored summaries for a user, ordered
	// by (year, month) ascending. Zero year/month means no filter.
	ListMonthlySummaries(ctx context.Context, userID string, year, month int) ([]domain.MonthlySummary, error)

	// GetMonthTransactions returns the stored transaction set for one
	// (user, year, month). An empty slice means nothing stored yet.
	GetMonthTransactions(ctx context.Context, userID string, year, month int) ([]domain.Transaction, error)

	// SaveMonths atomically replaces the summaries and transaction sets
	// of the affected months in one transaction. Either every month's
	// writes succeed or none do; a failure is reported as
	// *domain.ErrStorage naming the month that failed.
	SaveMonths(ctx context.Context, summaries []*domain.MonthlySummary) error

	// DeleteMonth removes one month's summary and transactions
	// atomically. Returns *domain.ErrNotFound when nothing is stored.
	DeleteMonth(ctx context.Context, userID string, year, month int) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// InsightGenerator invokes the external text-generation service.
// Callers must treat failure as non-fatal.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (*domain.InsightCompletion, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
