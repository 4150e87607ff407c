package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"digitwin/internal/core"
)

const dateLayout = "2006-01-02"

// RecordExpense inserts the expense and applies its amount to the
// owning partition's budget aggregate in a single transaction. A
// missing aggregate row is seeded with defaultBudget (which is zero
// when the user has no profile). The spent increment happens inside the
// database, never as a read-modify-write, so concurrent writers from
// multiple sessions cannot lose updates.
func (r *Repository) RecordExpense(ctx context.Context, e core.Expense, defaultBudget core.Money) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, name, amount_cents, category, expense_date, note, month, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Name, e.Amount.Cents, e.Category, e.Date.Format(dateLayout), e.Note, e.Month, e.Year)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	if err := applyToBudget(ctx, tx, e.UserID, e.Month, e.Year, e.Amount, defaultBudget); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense: %w", err)
	}
	return nil
}

// applyToBudget adds amount to the partition aggregate, creating it
// seeded from defaultBudget when absent. All SET expressions evaluate
// against the pre-update row, so remaining is computed from the same
// spent value the increment uses.
func applyToBudget(ctx context.Context, tx *sql.Tx, userID string, month, year int, amount, defaultBudget core.Money) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (doc_key, user_id, month, year, budget_cents, spent_cents, remaining_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (doc_key) DO UPDATE SET
			spent_cents = budgets.spent_cents + excluded.spent_cents,
			remaining_cents = budgets.budget_cents - (budgets.spent_cents + excluded.spent_cents),
			updated_at = CURRENT_TIMESTAMP`,
		core.BudgetDocKey(userID, month, year), userID, month, year,
		defaultBudget.Cents, amount.Cents, defaultBudget.Cents-amount.Cents)
	if err != nil {
		return fmt.Errorf("apply expense to budget: %w", err)
	}
	return nil
}

// UpdateExpense rewrites an expense row, recomputing nothing itself;
// callers follow up with RecomputeBudget for every touched partition.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET name = ?, amount_cents = ?, category = ?, expense_date = ?, note = ?, month = ?, year = ?
		WHERE id = ? AND user_id = ?`,
		e.Name, e.Amount.Cents, e.Category, e.Date.Format(dateLayout), e.Note, e.Month, e.Year,
		e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "expense", ID: e.ID}
	}
	return nil
}

// DeleteExpense removes the expense row and resums its partition's
// aggregate in the same transaction, so a failed recompute rolls the
// delete back instead of leaving the aggregate stale. The aggregate is
// never decremented in place.
func (r *Repository) DeleteExpense(ctx context.Context, userID, id string, defaultBudget core.Money) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, name, amount_cents, category, expense_date, note, month, year
		FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, &core.NotFoundError{Entity: "expense", ID: id}
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}

	if _, err := recomputeBudgetTx(ctx, tx, userID, expense.Month, expense.Year, defaultBudget); err != nil {
		return core.Expense{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit expense delete: %w", err)
	}
	return expense, nil
}

func (r *Repository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, amount_cents, category, expense_date, note, month, year
		FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, &core.NotFoundError{Entity: "expense", ID: id}
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns all of a user's expenses for one partition,
// newest first.
func (r *Repository) ListExpenses(ctx context.Context, userID string, month, year int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount_cents, category, expense_date, note, month, year
		FROM expenses
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY expense_date DESC, created_at DESC`, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// SumExpenses returns the authoritative spent total for a partition.
func (r *Repository) SumExpenses(ctx context.Context, userID string, month, year int) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE user_id = ? AND month = ? AND year = ?`, userID, month, year).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		rawDate string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Amount.Cents, &e.Category, &rawDate, &e.Note, &e.Month, &e.Year); err != nil {
		return core.Expense{}, err
	}
	parsed, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", rawDate, err)
	}
	e.Date = core.Date{Time: parsed}
	return e, nil
}
