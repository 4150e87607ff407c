package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"digitwin/internal/core"
)

// UpsertProfile writes the full profile document, replacing any
// previous answers.
func (r *Repository) UpsertProfile(ctx context.Context, p core.Profile) error {
	cards, err := json.Marshal(p.CreditCards)
	if err != nil {
		return fmt.Errorf("encode credit cards: %w", err)
	}
	bills, err := json.Marshal(p.UtilityBills)
	if err != nil {
		return fmt.Errorf("encode utility bills: %w", err)
	}
	categories, err := json.Marshal(p.ExpenseCategories)
	if err != nil {
		return fmt.Errorf("encode expense categories: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, monthly_income_cents, monthly_budget_cents,
			has_home_loan, home_loan_cents, pays_rent, credit_cards, utility_bills,
			expense_categories, savings_reminder, savings_goal_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_income_cents = excluded.monthly_income_cents,
			monthly_budget_cents = excluded.monthly_budget_cents,
			has_home_loan = excluded.has_home_loan,
			home_loan_cents = excluded.home_loan_cents,
			pays_rent = excluded.pays_rent,
			credit_cards = excluded.credit_cards,
			utility_bills = excluded.utility_bills,
			expense_categories = excluded.expense_categories,
			savings_reminder = excluded.savings_reminder,
			savings_goal_cents = excluded.savings_goal_cents,
			updated_at = CURRENT_TIMESTAMP`,
		p.UserID, p.MonthlyIncome.Cents, p.MonthlyBudget.Cents,
		p.HasHomeLoan, p.HomeLoanAmount.Cents, p.PaysRent, string(cards), string(bills),
		string(categories), p.SavingsReminder, p.SavingsGoal.Cents)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var (
		p          core.Profile
		cards      string
		bills      string
		categories string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, monthly_income_cents, monthly_budget_cents, has_home_loan,
		       home_loan_cents, pays_rent, credit_cards, utility_bills,
		       expense_categories, savings_reminder, savings_goal_cents
		FROM user_profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.MonthlyIncome.Cents, &p.MonthlyBudget.Cents, &p.HasHomeLoan,
		&p.HomeLoanAmount.Cents, &p.PaysRent, &cards, &bills,
		&categories, &p.SavingsReminder, &p.SavingsGoal.Cents)
	if err == sql.ErrNoRows {
		return core.Profile{}, &core.NotFoundError{Entity: "profile", ID: userID}
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	if err := json.Unmarshal([]byte(cards), &p.CreditCards); err != nil {
		return core.Profile{}, fmt.Errorf("decode credit cards: %w", err)
	}
	if err := json.Unmarshal([]byte(bills), &p.UtilityBills); err != nil {
		return core.Profile{}, fmt.Errorf("decode utility bills: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &p.ExpenseCategories); err != nil {
		return core.Profile{}, fmt.Errorf("decode expense categories: %w", err)
	}
	return p, nil
}

// ListProfileUserIDs returns every onboarded user, for the monthly task
// regeneration sweep.
func (r *Repository) ListProfileUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profile user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func parseDate(s string) (core.Date, error) {
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: parsed}, nil
}
