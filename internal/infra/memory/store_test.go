package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/memory"
)

func summary(userID string, year, month int, revenue float64) *domain.MonthlySummary {
	return &domain.MonthlySummary{
		UserID: userID, Year: year, Month: month,
		TotalRevenue: revenue, TotalTransactions: 1,
		Transactions: []domain.Transaction{
			{Date: "2025-01-10", Product: "A", Category: "X", Price: revenue, Quantity: 1},
		},
	}
}

func TestStore_SaveAndList(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	months := []*domain.MonthlySummary{
		summary("u1", 2025, 2, 200),
		summary("u1", 2025, 1, 100),
	}
	if err := s.SaveMonths(ctx, months); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, m := range months {
		if m.ID == "" {
			t.Error("expected an ID assigned on save")
		}
	}

	got, err := s.ListMonthlySummaries(ctx, "u1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].Month != 1 || got[1].Month != 2 {
		t.Errorf("expected chronological order, got %d then %d", got[0].Month, got[1].Month)
	}
}

func TestStore_ListFilters(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	if err := s.SaveMonths(ctx, []*domain.MonthlySummary{
		summary("u1", 2024, 12, 100),
		summary("u1", 2025, 1, 200),
		summary("u2", 2025, 1, 300),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.ListMonthlySummaries(ctx, "u1", 2025, 0)
	if len(got) != 1 || got[0].Month != 1 {
		t.Errorf("year filter: got %+v", got)
	}

	got, _ = s.ListMonthlySummaries(ctx, "u2", 0, 0)
	if len(got) != 1 || got[0].TotalRevenue != 300 {
		t.Errorf("user isolation: got %+v", got)
	}
}

func TestStore_SaveOverwritesKeepingID(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	first := summary("u1", 2025, 1, 100)
	if err := s.SaveMonths(ctx, []*domain.MonthlySummary{first}); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := summary("u1", 2025, 1, 999)
	if err := s.SaveMonths(ctx, []*domain.MonthlySummary{second}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected stable ID across overwrites, got %s vs %s", first.ID, second.ID)
	}

	got, _ := s.ListMonthlySummaries(ctx, "u1", 0, 0)
	if len(got) != 1 || got[0].TotalRevenue != 999 {
		t.Errorf("expected overwritten summary, got %+v", got)
	}
}

func TestStore_GetMonthTransactions(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	if err := s.SaveMonths(ctx, []*domain.MonthlySummary{summary("u1", 2025, 1, 100)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	txns, err := s.GetMonthTransactions(ctx, "u1", 2025, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}

	// The returned slice is a copy; mutating it must not affect the store.
	txns[0].Product = "mutated"
	again, _ := s.GetMonthTransactions(ctx, "u1", 2025, 1)
	if again[0].Product != "A" {
		t.Error("store data was mutated through a returned slice")
	}

	empty, err := s.GetMonthTransactions(ctx, "u1", 2030, 1)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty set for unknown month, got %v / %v", empty, err)
	}
}

func TestStore_DeleteMonth(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	if err := s.SaveMonths(ctx, []*domain.MonthlySummary{summary("u1", 2025, 1, 100)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.DeleteMonth(ctx, "u1", 2025, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var notFound *domain.ErrNotFound
	err := s.DeleteMonth(ctx, "u1", 2025, 1)
	if !errors.As(err, &notFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
