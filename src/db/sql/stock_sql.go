package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/ledger"
	"money-server/src/models"
)

func CreateStock(ctx context.Context, q db.Querier, s models.Stock) (*models.Stock, error) {
	query := `
		INSERT INTO stocks (name, ticker, currency)
		VALUES ($1, $2, $3)
		RETURNING id, name, ticker, currency
	`
	var out models.Stock
	if err := q.QueryRow(ctx, query, s.Name, s.Ticker, s.Currency).Scan(&out.ID, &out.Name, &out.Ticker, &out.Currency); err != nil {
		return nil, fmt.Errorf("failed to create stock: %w", err)
	}
	return &out, nil
}

func GetStock(ctx context.Context, q db.Querier, id int64) (*models.Stock, error) {
	var s models.Stock
	err := q.QueryRow(ctx, `SELECT id, name, ticker, currency FROM stocks WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Ticker, &s.Currency)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &s, nil
}

func ListStocks(ctx context.Context, q db.Querier) ([]models.Stock, error) {
	rows, err := q.Query(ctx, `SELECT id, name, ticker, currency FROM stocks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Stock
	for rows.Next() {
		var s models.Stock
		if err := rows.Scan(&s.ID, &s.Name, &s.Ticker, &s.Currency); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func UpdateStock(ctx context.Context, q db.Querier, s models.Stock) (*models.Stock, error) {
	var out models.Stock
	err := q.QueryRow(ctx, `UPDATE stocks SET name = $1, ticker = $2, currency = $3 WHERE id = $4 RETURNING id, name, ticker, currency`,
		s.Name, s.Ticker, s.Currency, s.ID).Scan(&out.ID, &out.Name, &out.Ticker, &out.Currency)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func DeleteStock(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "stocks", id)
}

const stockTransactionColumns = `
	st.id, st.date, st.account_id, st.stock_id, s.name, st.related_transaction_id,
	st.price, st.shares, st.amount, st.balance, st.note
`

func scanStockTransaction(row pgx.Row, st *models.StockTransaction) error {
	return row.Scan(&st.ID, &st.Date, &st.AccountID, &st.StockID, &st.StockName, &st.RelatedTransactionID,
		&st.Price, &st.Shares, &st.Amount, &st.Balance, &st.Note)
}

func CreateStockTransaction(ctx context.Context, q db.Querier, st models.StockTransaction) (*models.StockTransaction, error) {
	query := `
		INSERT INTO stock_transactions (date, account_id, stock_id, related_transaction_id, price, shares, amount, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query, st.Date, st.AccountID, st.StockID, st.RelatedTransactionID,
		st.Price, st.Shares, st.Amount, st.Note).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create stock transaction: %w", err)
	}
	return GetStockTransaction(ctx, q, id)
}

func GetStockTransaction(ctx context.Context, q db.Querier, id int64) (*models.StockTransaction, error) {
	query := `SELECT ` + stockTransactionColumns + `
		FROM stock_transactions st JOIN stocks s ON s.id = st.stock_id
		WHERE st.id = $1
	`
	var st models.StockTransaction
	if err := scanStockTransaction(q.QueryRow(ctx, query, id), &st); err != nil {
		return nil, db.NotFound(err)
	}
	return &st, nil
}

func UpdateStockTransaction(ctx context.Context, q db.Querier, st models.StockTransaction) (*models.StockTransaction, error) {
	query := `
		UPDATE stock_transactions
		SET date = $1, account_id = $2, stock_id = $3, related_transaction_id = $4,
			price = $5, shares = $6, amount = $7, note = $8
		WHERE id = $9
	`
	cmd, err := q.Exec(ctx, query, st.Date, st.AccountID, st.StockID, st.RelatedTransactionID,
		st.Price, st.Shares, st.Amount, st.Note, st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, db.ErrNotFound
	}
	return GetStockTransaction(ctx, q, st.ID)
}

func DeleteStockTransaction(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "stock_transactions", id)
}

// ListStockTransactions lists trades of one account, or of every account
// when accountID is zero, oldest first.
func ListStockTransactions(ctx context.Context, q db.Querier, accountID int64) ([]models.StockTransaction, error) {
	query := `SELECT ` + stockTransactionColumns + `
		FROM stock_transactions st JOIN stocks s ON s.id = st.stock_id
		WHERE $1 = 0 OR st.account_id = $1
		ORDER BY st.date, st.amount DESC, st.id
	`
	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StockTransaction
	for rows.Next() {
		var st models.StockTransaction
		if err := scanStockTransaction(rows, &st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func SetStockBalances(ctx context.Context, q db.Querier, txns []models.StockTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range txns {
		batch.Queue(`UPDATE stock_transactions SET balance = $1 WHERE id = $2`, st.Balance, st.ID)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update share balances: %w", err)
	}
	return nil
}

// StockEntries returns the trades of accounts held in currency as input to
// the holdings replay.
func StockEntries(ctx context.Context, q db.Querier, currency models.Currency) ([]ledger.StockEntry, error) {
	query := `
		SELECT st.date, s.name, st.shares, st.price
		FROM stock_transactions st
		JOIN stocks s ON s.id = st.stock_id
		JOIN accounts a ON a.id = st.account_id
		WHERE a.currency = $1
		ORDER BY st.date, st.shares
	`
	rows, err := q.Query(ctx, query, currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.StockEntry
	for rows.Next() {
		var e ledger.StockEntry
		if err := rows.Scan(&e.Date, &e.Stock, &e.Shares, &e.Price); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListHoldings returns the current share count per account and stock with
// the latest recorded price. Closed positions are left out.
func ListHoldings(ctx context.Context, q db.Querier, accountID int64) ([]models.StockHolding, error) {
	query := `
		SELECT h.account_id, h.stock_id, s.name, h.shares,
			(SELECT p.price FROM stock_prices p WHERE p.stock_id = h.stock_id ORDER BY p.date DESC LIMIT 1)
		FROM (
			SELECT account_id, stock_id, SUM(shares) AS shares
			FROM stock_transactions
			WHERE $1 = 0 OR account_id = $1
			GROUP BY account_id, stock_id
		) h
		JOIN stocks s ON s.id = h.stock_id
		WHERE h.shares <> 0
		ORDER BY h.account_id, s.name
	`
	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StockHolding
	for rows.Next() {
		var h models.StockHolding
		if err := rows.Scan(&h.AccountID, &h.StockID, &h.StockName, &h.Shares, &h.Price); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpsertStockPrice records the price of a stock on a date, replacing any
// earlier value for that date.
func UpsertStockPrice(ctx context.Context, q db.Querier, p models.StockPrice) (*models.StockPrice, error) {
	query := `
		INSERT INTO stock_prices (stock_id, date, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (stock_id, date) DO UPDATE SET price = EXCLUDED.price
		RETURNING id, stock_id, date, price
	`
	var out models.StockPrice
	if err := q.QueryRow(ctx, query, p.StockID, p.Date, p.Price).Scan(&out.ID, &out.StockID, &out.Date, &out.Price); err != nil {
		return nil, fmt.Errorf("failed to save stock price: %w", err)
	}
	return &out, nil
}

func ListStockPrices(ctx context.Context, q db.Querier, stockID int64) ([]models.StockPrice, error) {
	rows, err := q.Query(ctx, `SELECT id, stock_id, date, price FROM stock_prices WHERE stock_id = $1 ORDER BY date`, stockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StockPrice
	for rows.Next() {
		var p models.StockPrice
		if err := rows.Scan(&p.ID, &p.StockID, &p.Date, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
