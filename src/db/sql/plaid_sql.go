package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/models"
)

const plaidItemColumns = `id, item_id, access_token, institution_id, institution_name, COALESCE(sync_cursor, ''), created_at`

func scanPlaidItem(row pgx.Row, item *models.PlaidItem) error {
	return row.Scan(&item.ID, &item.ItemID, &item.AccessToken, &item.InstitutionID, &item.InstitutionName, &item.SyncCursor, &item.CreatedAt)
}

// SavePlaidItem stores a linked item, refreshing the access token when the
// item is linked again.
func SavePlaidItem(ctx context.Context, q db.Querier, item models.PlaidItem) (*models.PlaidItem, error) {
	query := `
		INSERT INTO plaid_items (item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			institution_id = EXCLUDED.institution_id,
			institution_name = EXCLUDED.institution_name
		RETURNING ` + plaidItemColumns
	var out models.PlaidItem
	if err := scanPlaidItem(q.QueryRow(ctx, query, item.ItemID, item.AccessToken, item.InstitutionID, item.InstitutionName), &out); err != nil {
		return nil, fmt.Errorf("failed to save plaid item: %w", err)
	}
	return &out, nil
}

func GetPlaidItems(ctx context.Context, q db.Querier) ([]models.PlaidItem, error) {
	rows, err := q.Query(ctx, `SELECT `+plaidItemColumns+` FROM plaid_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PlaidItem
	for rows.Next() {
		var item models.PlaidItem
		if err := scanPlaidItem(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func GetPlaidItem(ctx context.Context, q db.Querier, id int64) (*models.PlaidItem, error) {
	var item models.PlaidItem
	if err := scanPlaidItem(q.QueryRow(ctx, `SELECT `+plaidItemColumns+` FROM plaid_items WHERE id = $1`, id), &item); err != nil {
		return nil, db.NotFound(err)
	}
	return &item, nil
}

func GetPlaidItemByItemID(ctx context.Context, q db.Querier, itemID string) (*models.PlaidItem, error) {
	var item models.PlaidItem
	if err := scanPlaidItem(q.QueryRow(ctx, `SELECT `+plaidItemColumns+` FROM plaid_items WHERE item_id = $1`, itemID), &item); err != nil {
		return nil, db.NotFound(err)
	}
	return &item, nil
}

func UpdateSyncCursor(ctx context.Context, q db.Querier, id int64, cursor string) error {
	_, err := q.Exec(ctx, `UPDATE plaid_items SET sync_cursor = $1 WHERE id = $2`, cursor, id)
	return err
}

func DeletePlaidItem(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "plaid_items", id)
}
