package services

import (
	"context"
	"testing"

	"digitwin/internal/core"
)

func TestCreateGoalComputesPercent(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewGoalService(repo, testLogger())

	g, err := svc.Create(context.Background(), core.SavingsGoal{
		UserID: "u1",
		Name:   "Vacation",
		Saved:  core.Money{Cents: 25000},
		Target: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.PercentComplete != 25 {
		t.Errorf("PercentComplete = %d, want 25", g.PercentComplete)
	}
	if g.Celebrated {
		t.Error("Celebrated should not be set at 25 percent")
	}
}

func TestCreateGoalValidation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewGoalService(repo, testLogger())

	tests := []struct {
		name string
		goal core.SavingsGoal
	}{
		{"zero target", core.SavingsGoal{UserID: "u1", Name: "x"}},
		{"negative saved", core.SavingsGoal{UserID: "u1", Name: "x", Saved: core.Money{Cents: -1}, Target: core.Money{Cents: 100}}},
		{"missing name", core.SavingsGoal{UserID: "u1", Target: core.Money{Cents: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.goal); !core.IsValidation(err) {
				t.Errorf("Create() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestGoalCelebratedLatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewGoalService(repo, testLogger())

	g, err := svc.Create(ctx, core.SavingsGoal{
		UserID: "u1",
		Name:   "Emergency fund",
		Saved:  core.Money{Cents: 90000},
		Target: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	g.Saved = core.Money{Cents: 100000}
	g, err = svc.Update(ctx, g)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if g.PercentComplete != 100 || !g.Celebrated {
		t.Fatalf("after completion: percent = %d celebrated = %v", g.PercentComplete, g.Celebrated)
	}

	// Dropping back under the target must not clear the latch.
	g.Saved = core.Money{Cents: 50000}
	g, err = svc.Update(ctx, g)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if g.PercentComplete != 50 {
		t.Errorf("percent = %d, want 50", g.PercentComplete)
	}
	if !g.Celebrated {
		t.Error("Celebrated latch was cleared")
	}
}

func TestGoalOversavingUnclamped(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewGoalService(repo, testLogger())

	g, err := svc.Create(context.Background(), core.SavingsGoal{
		UserID: "u1",
		Name:   "Bike",
		Saved:  core.Money{Cents: 150000},
		Target: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.PercentComplete != 150 {
		t.Errorf("PercentComplete = %d, want 150", g.PercentComplete)
	}
	if !g.Celebrated {
		t.Error("goal created past its target should be celebrated")
	}
}

func TestDeleteGoalRequiresReason(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewGoalService(repo, testLogger())

	g, err := svc.Create(ctx, core.SavingsGoal{
		UserID: "u1",
		Name:   "Vacation",
		Target: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, "u1", g.ID, "   "); !core.IsValidation(err) {
		t.Errorf("Delete() with blank reason error = %v, want ValidationError", err)
	}

	if err := svc.Delete(ctx, "u1", g.ID, "completed"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	goals, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("List() after delete = %d goals, want 0", len(goals))
	}
}
