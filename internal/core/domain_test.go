package core

import (
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		UserID:   "u1",
		Name:     "Grocery shopping",
		Amount:   Money{Cents: 100},
		Category: "Food",
		Date:     NewDate(2025, 3, 14),
		Month:    3,
		Year:     2025,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{UserID: "", Name: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 3, 1), Month: 3, Year: 2025},
		{UserID: "u1", Name: "", Amount: Money{Cents: 1}, Date: NewDate(2025, 3, 1), Month: 3, Year: 2025},
		{UserID: "u1", Name: "a", Amount: Money{Cents: 0}, Date: NewDate(2025, 3, 1), Month: 3, Year: 2025},
		{UserID: "u1", Name: "a", Amount: Money{Cents: -5}, Date: NewDate(2025, 3, 1), Month: 3, Year: 2025},
		{UserID: "u1", Name: "a", Amount: Money{Cents: 1}, Date: Date{Time: time.Time{}}, Month: 3, Year: 2025},
		// month/year out of step with date
		{UserID: "u1", Name: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 3, 1), Month: 4, Year: 2025},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		} else if !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestDatePartition(t *testing.T) {
	month, year := NewDate(2025, 12, 31).Partition()
	if month != 12 || year != 2025 {
		t.Fatalf("expected 12/2025, got %d/%d", month, year)
	}
}

func TestBudgetDocKey(t *testing.T) {
	if got := BudgetDocKey("u1", 3, 2025); got != "u1_3-2025" {
		t.Fatalf("expected u1_3-2025, got %s", got)
	}
}

func TestBudgetAggregatePercentSpent(t *testing.T) {
	b := BudgetAggregate{Budget: Money{Cents: 50000}, Spent: Money{Cents: 15000}}
	if got := b.PercentSpent(); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	zero := BudgetAggregate{}
	if got := zero.PercentSpent(); got != 0 {
		t.Fatalf("expected 0 for zero budget, got %d", got)
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	good := SavingsGoal{UserID: "u1", Name: "Vacation", Saved: Money{Cents: 25000}, Target: Money{Cents: 100000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []SavingsGoal{
		{UserID: "u1", Name: "", Target: Money{Cents: 1}},
		{UserID: "u1", Name: "a", Target: Money{Cents: 0}},
		{UserID: "u1", Name: "a", Target: Money{Cents: 100}, Saved: Money{Cents: -1}},
	}
	for i, g := range bads {
		if err := g.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{UserID: "u1", Name: "Coffee", Amount: Money{Cents: -475}, Date: NewDate(2025, 1, 2)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zeroAmount := Transaction{UserID: "u1", Name: "x", Amount: Money{}, Date: NewDate(2025, 1, 2)}
	if err := zeroAmount.Validate(); err == nil {
		t.Fatal("expected error for zero amount")
	}
}
