package services

import (
	"context"
	"testing"

	"digitwin/internal/core"
)

func TestByCategorySummarizesPartition(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	budgets := NewBudgetService(repo, testLogger())
	expenses := NewExpenseService(repo, budgets, testLogger())
	svc := NewSummaryService(repo, testLogger())

	seed := []struct {
		category string
		cents    int64
	}{
		{"Food", 1000},
		{"Food", 500},
		{"Transport", 2000},
	}
	for _, e := range seed {
		_, err := expenses.Record(ctx, core.Expense{
			UserID:   "u1",
			Name:     "item",
			Amount:   core.Money{Cents: e.cents},
			Category: e.category,
			Date:     core.NewDate(2025, 3, 10),
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	totals, err := svc.ByCategory(ctx, "u1", 3, 2025)
	if err != nil {
		t.Fatalf("ByCategory() error = %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("ByCategory() = %d categories, want 2", len(totals))
	}
	if totals[0].Category != "Transport" || totals[0].Total.Cents != 2000 {
		t.Errorf("first = %+v, want Transport/2000", totals[0])
	}
	if totals[1].Category != "Food" || totals[1].Total.Cents != 1500 {
		t.Errorf("second = %+v, want Food/1500", totals[1])
	}

	var sum int64
	for _, ct := range totals {
		sum += ct.Total.Cents
	}
	if sum != 3500 {
		t.Errorf("total = %d, want 3500", sum)
	}
}

func TestByCategoryEmptyPartition(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, testLogger())

	totals, err := svc.ByCategory(context.Background(), "u1", 3, 2025)
	if err != nil {
		t.Fatalf("ByCategory() error = %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("ByCategory() = %d categories, want 0", len(totals))
	}
}

func TestCompareWalksBackAcrossYears(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	budgets := NewBudgetService(repo, testLogger())
	expenses := NewExpenseService(repo, budgets, testLogger())
	svc := NewSummaryService(repo, testLogger())

	seed := []struct {
		date  core.Date
		cents int64
	}{
		{core.NewDate(2024, 12, 10), 1000},
		{core.NewDate(2025, 1, 10), 2000},
		{core.NewDate(2025, 2, 10), 3000},
	}
	for _, e := range seed {
		_, err := expenses.Record(ctx, core.Expense{
			UserID: "u1",
			Name:   "item",
			Amount: core.Money{Cents: e.cents},
			Date:   e.date,
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	spends, err := svc.Compare(ctx, "u1", 2, 2025, 3)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(spends) != 3 {
		t.Fatalf("Compare() = %d months, want 3", len(spends))
	}

	want := []MonthSpend{
		{Month: 12, Year: 2024, Total: core.Money{Cents: 1000}},
		{Month: 1, Year: 2025, Total: core.Money{Cents: 2000}},
		{Month: 2, Year: 2025, Total: core.Money{Cents: 3000}},
	}
	for i, w := range want {
		if spends[i] != w {
			t.Errorf("spends[%d] = %+v, want %+v", i, spends[i], w)
		}
	}
}

func TestCompareRejectsBadWindow(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, testLogger())

	if _, err := svc.Compare(context.Background(), "u1", 3, 2025, 0); !core.IsValidation(err) {
		t.Errorf("Compare(0) error = %v, want ValidationError", err)
	}
}
