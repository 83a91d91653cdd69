package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

func CreateBank(ctx context.Context, q db.Querier, name string) (*models.Bank, error) {
	query := `
		INSERT INTO banks (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`
	var b models.Bank
	if err := q.QueryRow(ctx, query, name).Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create bank: %w", err)
	}
	return &b, nil
}

func GetBank(ctx context.Context, q db.Querier, id int64) (*models.Bank, error) {
	query := `SELECT id, name, created_at FROM banks WHERE id = $1`
	var b models.Bank
	if err := q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		return nil, db.NotFound(err)
	}
	return &b, nil
}

// ListBanks returns every bank with the number of accounts it holds.
func ListBanks(ctx context.Context, q db.Querier, page db.Page) ([]models.BankWithCount, int, error) {
	page = page.Normalize()
	query := `
		SELECT b.id, b.name, b.created_at, COUNT(a.id), COUNT(*) OVER ()
		FROM banks b
		LEFT JOIN accounts a ON a.bank_id = b.id
		GROUP BY b.id
		ORDER BY b.name, b.id
		LIMIT $1 OFFSET $2
	`
	rows, err := q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var banks []models.BankWithCount
	total := 0
	for rows.Next() {
		var b models.BankWithCount
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.AccountCount, &total); err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(banks) == 0 && page.Offset > 0 {
		total, err = countRows(ctx, q, "banks")
	}
	return banks, total, err
}

func UpdateBank(ctx context.Context, q db.Querier, id int64, name string) (*models.Bank, error) {
	query := `
		UPDATE banks SET name = $1
		WHERE id = $2
		RETURNING id, name, created_at
	`
	var b models.Bank
	if err := q.QueryRow(ctx, query, name, id).Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		return nil, db.NotFound(err)
	}
	return &b, nil
}

func DeleteBank(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "banks", id)
}

// countRows and deleteByID take table names from code, never from input.
func countRows(ctx context.Context, q db.Querier, table string) (int, error) {
	var n int
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

func deleteByID(ctx context.Context, q db.Querier, table string, id int64) error {
	cmd, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
