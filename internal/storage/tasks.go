package storage

import (
	"context"
	"fmt"

	"digitwin/internal/core"
)

func (r *Repository) InsertTask(ctx context.Context, t core.FinancialTask) error {
	due := ""
	if !t.DueDate.IsZero() {
		due = t.DueDate.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO financial_tasks (id, user_id, task, completed, month, year, due_date, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Task, t.Completed, t.Month, t.Year, due, string(t.Category))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *Repository) ListTasks(ctx context.Context, userID string, month, year int) ([]core.FinancialTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, task, completed, month, year, due_date, category
		FROM financial_tasks
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY due_date, created_at`, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.FinancialTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *Repository) SetTaskCompleted(ctx context.Context, userID, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_tasks SET completed = ? WHERE id = ? AND user_id = ?`,
		completed, id, userID)
	if err != nil {
		return fmt.Errorf("set task completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set task completed rows affected: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "task", ID: id}
	}
	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM financial_tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "task", ID: id}
	}
	return nil
}

// ReplaceGeneratedTasks drops every non-custom task in the partition and
// inserts the freshly derived set in one transaction. Custom tasks the
// user entered by hand survive regeneration.
func (r *Repository) ReplaceGeneratedTasks(ctx context.Context, userID string, month, year int, tasks []core.FinancialTask) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM financial_tasks
		WHERE user_id = ? AND month = ? AND year = ? AND category != ?`,
		userID, month, year, string(core.TaskCustom))
	if err != nil {
		return fmt.Errorf("delete generated tasks: %w", err)
	}

	for _, t := range tasks {
		due := ""
		if !t.DueDate.IsZero() {
			due = t.DueDate.Format(dateLayout)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO financial_tasks (id, user_id, task, completed, month, year, due_date, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.Task, t.Completed, t.Month, t.Year, due, string(t.Category))
		if err != nil {
			return fmt.Errorf("insert generated task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task regeneration: %w", err)
	}
	return nil
}

func scanTask(row rowScanner) (core.FinancialTask, error) {
	var (
		t        core.FinancialTask
		due      string
		category string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Task, &t.Completed, &t.Month, &t.Year, &due, &category); err != nil {
		return core.FinancialTask{}, err
	}
	t.Category = core.TaskCategory(category)
	if due != "" {
		parsed, err := parseDate(due)
		if err != nil {
			return core.FinancialTask{}, err
		}
		t.DueDate = parsed
	}
	return t, nil
}
