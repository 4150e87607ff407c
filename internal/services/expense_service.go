package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// ExpenseService records spending and keeps the owning partition's
// budget aggregate consistent. Additions apply an atomic increment;
// deletions and corrections trigger a full recompute of every touched
// partition.
type ExpenseService struct {
	repo    *storage.Repository
	budgets *BudgetService
	logger  *log.Logger
}

func NewExpenseService(repo *storage.Repository, budgets *BudgetService, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		repo:    repo,
		budgets: budgets,
		logger:  logger.WithComponent(log.ComponentExpense),
	}
}

// Record validates and stores a new expense. The month/year partition
// is always derived from the date here, never taken from the caller.
func (s *ExpenseService) Record(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.Month, e.Year = e.Date.Partition()
	if strings.TrimSpace(e.Category) == "" {
		e.Category = core.DefaultCategory
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	budget, err := s.budgets.defaultBudget(ctx, e.UserID)
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.repo.RecordExpense(ctx, e, budget); err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "recorded expense",
		log.FieldUserID, e.UserID,
		log.FieldExpenseID, e.ID,
		log.FieldAmount, e.Amount.Cents,
		log.FieldCategory, e.Category)

	return e, nil
}

// Update rewrites an expense and recomputes every partition it touched.
// Moving an expense to a different month fixes up both the old and new
// aggregates.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	old, err := s.repo.GetExpense(ctx, e.UserID, e.ID)
	if err != nil {
		return core.Expense{}, err
	}

	e.Month, e.Year = e.Date.Partition()
	if strings.TrimSpace(e.Category) == "" {
		e.Category = core.DefaultCategory
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.repo.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}

	if _, err := s.budgets.Recompute(ctx, e.UserID, e.Month, e.Year); err != nil {
		return core.Expense{}, err
	}
	if old.Month != e.Month || old.Year != e.Year {
		if _, err := s.budgets.Recompute(ctx, e.UserID, old.Month, old.Year); err != nil {
			return core.Expense{}, err
		}
	}

	s.logger.InfoContext(ctx, "updated expense",
		log.FieldUserID, e.UserID,
		log.FieldExpenseID, e.ID)

	return e, nil
}

// Delete removes the expense. The store resums the partition in the
// same transaction, so the aggregate can never go stale from a delete
// that half-finished.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	budget, err := s.budgets.defaultBudget(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.repo.DeleteExpense(ctx, userID, id, budget); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "deleted expense",
		log.FieldUserID, userID,
		log.FieldExpenseID, id)

	return nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	return s.repo.GetExpense(ctx, userID, id)
}

func (s *ExpenseService) List(ctx context.Context, userID string, month, year int) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, userID, month, year)
}
