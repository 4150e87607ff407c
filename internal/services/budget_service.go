package services

import (
	"context"
	"fmt"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// BudgetService owns the monthly budget aggregates. Reads are cheap
// single-row lookups; the expensive partition resum only happens on an
// explicit recompute.
type BudgetService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewBudgetService(repo *storage.Repository, logger *log.Logger) *BudgetService {
	return &BudgetService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentBudget),
	}
}

// GetOrCreate returns the partition's aggregate, seeding a fresh one
// from the profile's monthly budget on first access. Seeding never
// scans existing expenses; a partition that had expenses before its
// aggregate existed stays undercounted until a recompute.
func (s *BudgetService) GetOrCreate(ctx context.Context, userID string, month, year int) (core.BudgetAggregate, error) {
	b, err := s.repo.GetBudget(ctx, userID, month, year)
	if err == nil {
		return b, nil
	}
	if !core.IsNotFound(err) {
		return core.BudgetAggregate{}, err
	}

	budget, err := s.defaultBudget(ctx, userID)
	if err != nil {
		return core.BudgetAggregate{}, err
	}

	seed := core.BudgetAggregate{
		DocKey:    core.BudgetDocKey(userID, month, year),
		UserID:    userID,
		Month:     month,
		Year:      year,
		Budget:    budget,
		Remaining: budget,
	}
	if err := s.repo.CreateBudget(ctx, seed); err != nil {
		return core.BudgetAggregate{}, err
	}

	s.logger.InfoContext(ctx, "seeded budget aggregate",
		log.FieldUserID, userID,
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldAmount, budget.Cents)

	// A concurrent writer may have created the row first; re-read so the
	// caller always sees the stored aggregate.
	return s.repo.GetBudget(ctx, userID, month, year)
}

// Recompute resums the partition's expenses and overwrites the
// aggregate. Safe to run any number of times.
func (s *BudgetService) Recompute(ctx context.Context, userID string, month, year int) (core.BudgetAggregate, error) {
	budget, err := s.defaultBudget(ctx, userID)
	if err != nil {
		return core.BudgetAggregate{}, err
	}

	b, err := s.repo.RecomputeBudget(ctx, userID, month, year, budget)
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("recompute budget: %w", err)
	}

	s.logger.InfoContext(ctx, "recomputed budget aggregate",
		log.FieldUserID, userID,
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldAmount, b.Spent.Cents)

	return b, nil
}

// defaultBudget reads the user's configured monthly budget. Users
// without a profile get zero, matching first-run behavior.
func (s *BudgetService) defaultBudget(ctx context.Context, userID string) (core.Money, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if core.IsNotFound(err) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, err
	}
	return p.MonthlyBudget, nil
}
