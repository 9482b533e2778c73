// Package memory provides an in-memory sales store for local
// development and tests. Same port contract as the Postgres adapter.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"

	"github.com/google/uuid"
)

type monthKey struct {
	UserID string
	Year   int
	Month  int
}

// Store keeps monthly summaries in a mutex-guarded map. Writes are
// applied all-or-nothing under the lock, matching the transactional
// behavior of the Postgres store.
type Store struct {
	mu     sync.RWMutex
	months map[monthKey]*domain.MonthlySummary
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{months: make(map[monthKey]*domain.MonthlySummary)}
}

// ListMonthlySummaries returns copies of stored summaries for a user,
// ordered by (year, month) ascending. Zero year/month means no filter.
func (s *Store) ListMonthlySummaries(ctx context.Context, userID string, year, month int) ([]domain.MonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MonthlySummary
	for k, m := range s.months {
		if k.UserID != userID {
			continue
		}
		if year > 0 && k.Year != year {
			continue
		}
		if month > 0 && k.Month != month {
			continue
		}
		out = append(out, copySummary(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// GetMonthTransactions returns a copy of the stored transaction set for
// one month, or an empty slice when nothing is stored.
func (s *Store) GetMonthTransactions(ctx context.Context, userID string, year, month int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.months[monthKey{UserID: userID, Year: year, Month: month}]
	if !ok {
		return nil, nil
	}
	txns := make([]domain.Transaction, len(m.Transactions))
	copy(txns, m.Transactions)
	return txns, nil
}

// SaveMonths stores copies of the given summaries, assigning IDs to new
// months. All months are applied under one lock acquisition.
func (s *Store) SaveMonths(ctx context.Context, summaries []*domain.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range summaries {
		key := monthKey{UserID: m.UserID, Year: m.Year, Month: m.Month}
		if existing, ok := s.months[key]; ok {
			m.ID = existing.ID
		} else if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.UpdatedAt = time.Now()
		stored := copySummary(m)
		s.months[key] = &stored
	}
	return nil
}

// DeleteMonth removes one month. Returns *domain.ErrNotFound when
// nothing is stored for it.
func (s *Store) DeleteMonth(ctx context.Context, userID string, year, month int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := monthKey{UserID: userID, Year: year, Month: month}
	if _, ok := s.months[key]; !ok {
		return &domain.ErrNotFound{
			Resource: "monthly data",
			ID:       fmt.Sprintf("%s/%d-%02d", userID, year, month),
		}
	}
	delete(s.months, key)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func copySummary(m *domain.MonthlySummary) domain.MonthlySummary {
	out := *m
	out.Transactions = make([]domain.Transaction, len(m.Transactions))
	copy(out.Transactions, m.Transactions)
	return out
}
