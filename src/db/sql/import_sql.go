package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

func CreateImportBatch(ctx context.Context, q db.Querier, b models.ImportBatch) (*models.ImportBatch, error) {
	query := `
		INSERT INTO import_batches (id, account_id, profile, file_name, row_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, account_id, profile, file_name, row_count, created_at
	`
	var out models.ImportBatch
	err := q.QueryRow(ctx, query, b.ID, b.AccountID, b.Profile, b.FileName, b.RowCount).
		Scan(&out.ID, &out.AccountID, &out.Profile, &out.FileName, &out.RowCount, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record import batch: %w", err)
	}
	return &out, nil
}

func ListImportBatches(ctx context.Context, q db.Querier) ([]models.ImportBatch, error) {
	rows, err := q.Query(ctx, `SELECT id, account_id, profile, file_name, row_count, created_at FROM import_batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ImportBatch
	for rows.Next() {
		var b models.ImportBatch
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Profile, &b.FileName, &b.RowCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteImportBatch removes a batch and the transactions it created, and
// returns the account they belonged to.
func DeleteImportBatch(ctx context.Context, q db.Querier, id string) (int64, error) {
	var accountID int64
	if err := q.QueryRow(ctx, `DELETE FROM import_batches WHERE id = $1 RETURNING account_id`, id).Scan(&accountID); err != nil {
		return 0, db.NotFound(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM transactions WHERE import_batch = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to delete imported transactions: %w", err)
	}
	return accountID, nil
}
