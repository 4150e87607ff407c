package storage

import (
	"context"
	"database/sql"
	"fmt"

	"digitwin/internal/core"
)

func (r *Repository) GetBudget(ctx context.Context, userID string, month, year int) (core.BudgetAggregate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT doc_key, user_id, month, year, budget_cents, spent_cents, remaining_cents
		FROM budgets WHERE user_id = ? AND month = ? AND year = ?`, userID, month, year)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return core.BudgetAggregate{}, &core.NotFoundError{Entity: "budget", ID: core.BudgetDocKey(userID, month, year)}
	}
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// CreateBudget seeds an empty aggregate for a partition. An existing
// row wins: seeding never overwrites accumulated spend.
func (r *Repository) CreateBudget(ctx context.Context, b core.BudgetAggregate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (doc_key, user_id, month, year, budget_cents, spent_cents, remaining_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (doc_key) DO NOTHING`,
		b.DocKey, b.UserID, b.Month, b.Year, b.Budget.Cents, b.Spent.Cents, b.Remaining.Cents)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// RecomputeBudget resums the partition's expenses from the
// authoritative expense rows and overwrites spent/remaining. This is
// the only path guaranteed consistent after deletions and corrections,
// and it is idempotent: re-running it converges to the same totals. A
// missing aggregate row is created seeded with defaultBudget.
func (r *Repository) RecomputeBudget(ctx context.Context, userID string, month, year int, defaultBudget core.Money) (core.BudgetAggregate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := recomputeBudgetTx(ctx, tx, userID, month, year, defaultBudget)
	if err != nil {
		return core.BudgetAggregate{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("commit recompute: %w", err)
	}
	return b, nil
}

// recomputeBudgetTx runs the resum inside the caller's transaction so
// the write that invalidated the aggregate and its repair commit
// together.
func recomputeBudgetTx(ctx context.Context, tx *sql.Tx, userID string, month, year int, defaultBudget core.Money) (core.BudgetAggregate, error) {
	var spent int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE user_id = ? AND month = ? AND year = ?`, userID, month, year).Scan(&spent)
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("sum partition expenses: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO budgets (doc_key, user_id, month, year, budget_cents, spent_cents, remaining_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (doc_key) DO UPDATE SET
			spent_cents = excluded.spent_cents,
			remaining_cents = budgets.budget_cents - excluded.spent_cents,
			updated_at = CURRENT_TIMESTAMP`,
		core.BudgetDocKey(userID, month, year), userID, month, year,
		defaultBudget.Cents, spent, defaultBudget.Cents-spent)
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("write recomputed budget: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT doc_key, user_id, month, year, budget_cents, spent_cents, remaining_cents
		FROM budgets WHERE user_id = ? AND month = ? AND year = ?`, userID, month, year)
	b, err := scanBudget(row)
	if err != nil {
		return core.BudgetAggregate{}, fmt.Errorf("read recomputed budget: %w", err)
	}
	return b, nil
}

func scanBudget(row rowScanner) (core.BudgetAggregate, error) {
	var b core.BudgetAggregate
	err := row.Scan(&b.DocKey, &b.UserID, &b.Month, &b.Year, &b.Budget.Cents, &b.Spent.Cents, &b.Remaining.Cents)
	return b, err
}
