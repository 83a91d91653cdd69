package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

const amazonColumns = `id, date, item, is_returned, transaction_id, return_transaction_id`

func CreateAmazonOrder(ctx context.Context, q db.Querier, o models.AmazonOrder) (*models.AmazonOrder, error) {
	query := `
		INSERT INTO amazon_orders (date, item, is_returned, transaction_id, return_transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + amazonColumns
	var out models.AmazonOrder
	err := q.QueryRow(ctx, query, o.Date, o.Item, o.IsReturned, o.TransactionID, o.ReturnTransactionID).
		Scan(&out.ID, &out.Date, &out.Item, &out.IsReturned, &out.TransactionID, &out.ReturnTransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create amazon order: %w", err)
	}
	return &out, nil
}

func GetAmazonOrder(ctx context.Context, q db.Querier, id int64) (*models.AmazonOrder, error) {
	var out models.AmazonOrder
	err := q.QueryRow(ctx, `SELECT `+amazonColumns+` FROM amazon_orders WHERE id = $1`, id).
		Scan(&out.ID, &out.Date, &out.Item, &out.IsReturned, &out.TransactionID, &out.ReturnTransactionID)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

// ListAmazonOrders lists orders newest first. unlinkedOnly keeps orders not
// yet matched to a card transaction.
func ListAmazonOrders(ctx context.Context, q db.Querier, unlinkedOnly bool, page db.Page) ([]models.AmazonOrder, int, error) {
	page = page.Normalize()
	query := `SELECT ` + amazonColumns + `, COUNT(*) OVER () FROM amazon_orders
		WHERE NOT $1 OR transaction_id IS NULL
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.Query(ctx, query, unlinkedOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.AmazonOrder
	total := 0
	for rows.Next() {
		var o models.AmazonOrder
		if err := rows.Scan(&o.ID, &o.Date, &o.Item, &o.IsReturned, &o.TransactionID, &o.ReturnTransactionID, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func UpdateAmazonOrder(ctx context.Context, q db.Querier, o models.AmazonOrder) (*models.AmazonOrder, error) {
	query := `
		UPDATE amazon_orders
		SET date = $1, item = $2, is_returned = $3, transaction_id = $4, return_transaction_id = $5
		WHERE id = $6
		RETURNING ` + amazonColumns
	var out models.AmazonOrder
	err := q.QueryRow(ctx, query, o.Date, o.Item, o.IsReturned, o.TransactionID, o.ReturnTransactionID, o.ID).
		Scan(&out.ID, &out.Date, &out.Item, &out.IsReturned, &out.TransactionID, &out.ReturnTransactionID)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

// LinkAmazonOrder attaches a purchase transaction to an order, or the refund
// transaction when returned is set.
func LinkAmazonOrder(ctx context.Context, q db.Querier, orderID, transactionID int64, returned bool) (*models.AmazonOrder, error) {
	query := `UPDATE amazon_orders SET transaction_id = $1 WHERE id = $2 RETURNING ` + amazonColumns
	if returned {
		query = `UPDATE amazon_orders SET return_transaction_id = $1, is_returned = TRUE WHERE id = $2 RETURNING ` + amazonColumns
	}
	var out models.AmazonOrder
	err := q.QueryRow(ctx, query, transactionID, orderID).
		Scan(&out.ID, &out.Date, &out.Item, &out.IsReturned, &out.TransactionID, &out.ReturnTransactionID)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func DeleteAmazonOrder(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "amazon_orders", id)
}
