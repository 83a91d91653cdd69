package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/models"
)

// UpsertSnapshots writes snapshots, replacing any already stored for the
// same date and currency.
func UpsertSnapshots(ctx context.Context, q db.Querier, snaps []models.AmountSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range snaps {
		batch.Queue(`
			INSERT INTO amount_snapshots (date, currency, amount, summary)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (date, currency) DO UPDATE
			SET amount = EXCLUDED.amount, summary = EXCLUDED.summary, created_at = NOW()
		`, s.Date, s.Currency, s.Amount, s.Summary)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save snapshots: %w", err)
	}
	return nil
}

// ListSnapshots returns snapshots oldest first. Empty currency means all, and
// a zero since means from the beginning.
func ListSnapshots(ctx context.Context, q db.Querier, currency models.Currency, since time.Time) ([]models.AmountSnapshot, error) {
	w := newWhere()
	if currency != "" {
		w.add("currency = ?", currency)
	}
	if !since.IsZero() {
		w.add("date >= ?", since)
	}
	query := `SELECT id, date, currency, amount, COALESCE(summary, '{}'), created_at FROM amount_snapshots ` +
		w.sql() + ` ORDER BY date, currency`
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AmountSnapshot
	for rows.Next() {
		var s models.AmountSnapshot
		if err := rows.Scan(&s.ID, &s.Date, &s.Currency, &s.Amount, &s.Summary, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func DeleteSnapshot(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "amount_snapshots", id)
}
