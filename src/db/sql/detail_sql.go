package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

func CreateDetailItem(ctx context.Context, q db.Querier, item models.DetailItem) (*models.DetailItem, error) {
	query := `
		INSERT INTO detail_items (name, category)
		VALUES ($1, $2)
		RETURNING id, name, category
	`
	var out models.DetailItem
	if err := q.QueryRow(ctx, query, item.Name, item.Category).Scan(&out.ID, &out.Name, &out.Category); err != nil {
		return nil, fmt.Errorf("failed to create detail item: %w", err)
	}
	return &out, nil
}

func GetDetailItem(ctx context.Context, q db.Querier, id int64) (*models.DetailItem, error) {
	var out models.DetailItem
	err := q.QueryRow(ctx, `SELECT id, name, category FROM detail_items WHERE id = $1`, id).
		Scan(&out.ID, &out.Name, &out.Category)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func ListDetailItems(ctx context.Context, q db.Querier, search string) ([]models.DetailItem, error) {
	w := newWhere()
	if search != "" {
		w.add("name ILIKE ?", "%"+search+"%")
	}
	rows, err := q.Query(ctx, `SELECT id, name, category FROM detail_items `+w.sql()+` ORDER BY category, name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DetailItem
	for rows.Next() {
		var item models.DetailItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func UpdateDetailItem(ctx context.Context, q db.Querier, item models.DetailItem) (*models.DetailItem, error) {
	var out models.DetailItem
	err := q.QueryRow(ctx, `UPDATE detail_items SET name = $1, category = $2 WHERE id = $3 RETURNING id, name, category`,
		item.Name, item.Category, item.ID).Scan(&out.ID, &out.Name, &out.Category)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func DeleteDetailItem(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "detail_items", id)
}

func ListTransactionDetails(ctx context.Context, q db.Querier, transactionID int64) ([]models.TransactionDetail, error) {
	query := `
		SELECT d.id, d.transaction_id, d.item_id, i.name, d.note, d.amount, d.count
		FROM transaction_details d
		JOIN detail_items i ON i.id = d.item_id
		WHERE d.transaction_id = $1
		ORDER BY d.id
	`
	rows, err := q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TransactionDetail
	for rows.Next() {
		var d models.TransactionDetail
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.ItemID, &d.ItemName, &d.Note, &d.Amount, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func CreateTransactionDetail(ctx context.Context, q db.Querier, d models.TransactionDetail) (*models.TransactionDetail, error) {
	query := `
		INSERT INTO transaction_details (transaction_id, item_id, note, amount, count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := q.QueryRow(ctx, query, d.TransactionID, d.ItemID, d.Note, d.Amount, d.Count).Scan(&d.ID); err != nil {
		return nil, fmt.Errorf("failed to create transaction detail: %w", err)
	}
	return &d, nil
}

// DeleteTransactionDetail removes a line item and returns its transaction.
func DeleteTransactionDetail(ctx context.Context, q db.Querier, id int64) (int64, error) {
	var txnID int64
	err := q.QueryRow(ctx, `DELETE FROM transaction_details WHERE id = $1 RETURNING transaction_id`, id).Scan(&txnID)
	if err != nil {
		return 0, db.NotFound(err)
	}
	return txnID, nil
}
