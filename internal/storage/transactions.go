package storage

import (
	"context"
	"fmt"
	"time"

	"digitwin/internal/core"
)

// InsertTransaction writes a ledger entry. The id is the primary key,
// and imported rows reuse the provider's transaction id, so replaying
// an import is a no-op: the method reports whether a new row was
// actually inserted.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, name, amount_cents, txn_date, category, source, pending, recurring, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.UserID, t.Name, t.Amount.Cents, t.Date.Format(dateLayout), t.Category,
		string(t.Source), t.Pending, t.Recurring, t.Frequency)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert transaction rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount_cents, txn_date, category, source, pending, recurring, frequency
		FROM transactions WHERE user_id = ? ORDER BY txn_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			rawDate string
			source  string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Amount.Cents, &rawDate, &t.Category,
			&source, &t.Pending, &t.Recurring, &t.Frequency); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", rawDate, err)
		}
		t.Date = core.Date{Time: parsed}
		t.Source = core.TransactionSource(source)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// PlaidItem is a linked bank connection: one durable access token per
// provider item.
type PlaidItem struct {
	ItemID      string
	UserID      string
	AccessToken string
	Status      string
}

// UpsertPlaidItem stores a new link or reactivates an existing one for
// the same provider item id.
func (r *Repository) UpsertPlaidItem(ctx context.Context, item PlaidItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plaid_items (item_id, user_id, access_token, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			access_token = excluded.access_token,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP`,
		item.ItemID, item.UserID, item.AccessToken, item.Status)
	if err != nil {
		return fmt.Errorf("upsert plaid item: %w", err)
	}
	return nil
}

func (r *Repository) ListPlaidItems(ctx context.Context, userID string) ([]PlaidItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, user_id, access_token, status
		FROM plaid_items WHERE user_id = ? AND status = 'active'
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list plaid items: %w", err)
	}
	defer rows.Close()

	var items []PlaidItem
	for rows.Next() {
		var item PlaidItem
		if err := rows.Scan(&item.ItemID, &item.UserID, &item.AccessToken, &item.Status); err != nil {
			return nil, fmt.Errorf("scan plaid item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plaid items: %w", err)
	}
	return items, nil
}

// ListLinkedUserIDs returns the users with at least one active bank
// link, for the scheduled import sweep.
func (r *Repository) ListLinkedUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM plaid_items WHERE status = 'active' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list linked user ids: %w", err)
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
