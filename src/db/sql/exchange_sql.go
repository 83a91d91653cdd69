package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/models"
)

const exchangeColumns = `
	id, date, from_transaction_id, to_transaction_id, from_amount, to_amount,
	from_currency, to_currency, ratio_per_krw, exchange_type, created_at
`

func scanExchange(row pgx.Row, e *models.Exchange) error {
	return row.Scan(&e.ID, &e.Date, &e.FromTransaction, &e.ToTransaction, &e.FromAmount, &e.ToAmount,
		&e.FromCurrency, &e.ToCurrency, &e.RatioPerKRW, &e.ExchangeType, &e.CreatedAt)
}

func CreateExchange(ctx context.Context, q db.Querier, e models.Exchange) (*models.Exchange, error) {
	query := `
		INSERT INTO exchanges (
			date, from_transaction_id, to_transaction_id, from_amount, to_amount,
			from_currency, to_currency, ratio_per_krw, exchange_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + exchangeColumns
	var out models.Exchange
	err := scanExchange(q.QueryRow(ctx, query,
		e.Date, e.FromTransaction, e.ToTransaction, e.FromAmount, e.ToAmount,
		e.FromCurrency, e.ToCurrency, e.RatioPerKRW, e.ExchangeType,
	), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange: %w", err)
	}
	return &out, nil
}

func ListExchanges(ctx context.Context, q db.Querier, page db.Page) ([]models.Exchange, int, error) {
	page = page.Normalize()
	query := `SELECT ` + exchangeColumns + `, COUNT(*) OVER () FROM exchanges ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Exchange
	total := 0
	for rows.Next() {
		var e models.Exchange
		if err := rows.Scan(&e.ID, &e.Date, &e.FromTransaction, &e.ToTransaction, &e.FromAmount, &e.ToAmount,
			&e.FromCurrency, &e.ToCurrency, &e.RatioPerKRW, &e.ExchangeType, &e.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func UpdateExchangeType(ctx context.Context, q db.Querier, id int64, t models.ExchangeType) (*models.Exchange, error) {
	var out models.Exchange
	err := scanExchange(q.QueryRow(ctx, `UPDATE exchanges SET exchange_type = $1 WHERE id = $2 RETURNING `+exchangeColumns, t, id), &out)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

// DeleteExchange removes the exchange and unlinks its two legs.
func DeleteExchange(ctx context.Context, q db.Querier, id int64) error {
	var from, to int64
	err := q.QueryRow(ctx, `DELETE FROM exchanges WHERE id = $1 RETURNING from_transaction_id, to_transaction_id`, id).Scan(&from, &to)
	if err != nil {
		return db.NotFound(err)
	}
	_, err = q.Exec(ctx, `UPDATE transactions SET related_transaction_id = NULL WHERE id IN ($1, $2)`, from, to)
	return err
}
