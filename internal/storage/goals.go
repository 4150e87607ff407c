package storage

import (
	"context"
	"database/sql"
	"fmt"

	"digitwin/internal/core"
)

func (r *Repository) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (id, user_id, name, saved_cents, target_cents, percent_complete, celebrated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Saved.Cents, g.Target.Cents, g.PercentComplete, g.Celebrated)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, saved_cents, target_cents, percent_complete, celebrated
		FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return core.SavingsGoal{}, &core.NotFoundError{Entity: "goal", ID: id}
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, saved_cents, target_cents, percent_complete, celebrated
		FROM savings_goals WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, saved_cents = ?, target_cents = ?, percent_complete = ?, celebrated = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		g.Name, g.Saved.Cents, g.Target.Cents, g.PercentComplete, g.Celebrated, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "goal", ID: g.ID}
	}
	return nil
}

// DeleteGoalWithReason removes the goal and records the deletion reason
// in the audit table, atomically.
func (r *Repository) DeleteGoalWithReason(ctx context.Context, g core.SavingsGoal, reason string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "goal", ID: g.ID}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO goal_deletions (goal_id, user_id, name, reason, percent_complete)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, reason, g.PercentComplete)
	if err != nil {
		return fmt.Errorf("record goal deletion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goal deletion: %w", err)
	}
	return nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Saved.Cents, &g.Target.Cents, &g.PercentComplete, &g.Celebrated)
	return g, err
}
