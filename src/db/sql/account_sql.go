package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"money-server/src/db"
	"money-server/src/models"
)

const accountColumns = `
	a.id, a.bank_id, b.name, a.name, a.alias, a.type, a.currency, a.amount,
	a.last_update, a.first_transaction, a.last_transaction, a.is_active,
	a.plaid_account_id, a.created_at
`

func scanAccount(row pgx.Row, a *models.Account, extra ...any) error {
	dest := []any{
		&a.ID, &a.BankID, &a.BankName, &a.Name, &a.Alias, &a.Type, &a.Currency, &a.Amount,
		&a.LastUpdate, &a.FirstTransaction, &a.LastTransaction, &a.IsActive,
		&a.PlaidAccountID, &a.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func CreateAccount(ctx context.Context, q db.Querier, a models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (bank_id, name, alias, type, currency, is_active, plaid_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query, a.BankID, a.Name, a.Alias, a.Type, a.Currency, a.IsActive, a.PlaidAccountID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return GetAccount(ctx, q, id)
}

func GetAccount(ctx context.Context, q db.Querier, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN banks b ON b.id = a.bank_id
		WHERE a.id = $1
	`
	var a models.Account
	if err := scanAccount(q.QueryRow(ctx, query, id), &a); err != nil {
		return nil, db.NotFound(err)
	}
	return &a, nil
}

func GetAccountByPlaidID(ctx context.Context, q db.Querier, plaidAccountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN banks b ON b.id = a.bank_id
		WHERE a.plaid_account_id = $1
	`
	var a models.Account
	if err := scanAccount(q.QueryRow(ctx, query, plaidAccountID), &a); err != nil {
		return nil, db.NotFound(err)
	}
	return &a, nil
}

// AccountFilter narrows account lists. Nil fields are ignored.
type AccountFilter struct {
	BankID   *int64
	IsActive *bool
	Currency *models.Currency
	Type     *models.AccountType
}

func (f AccountFilter) where() (string, []any) {
	w := newWhere()
	if f.BankID != nil {
		w.add("a.bank_id = ?", *f.BankID)
	}
	if f.IsActive != nil {
		w.add("a.is_active = ?", *f.IsActive)
	}
	if f.Currency != nil {
		w.add("a.currency = ?", *f.Currency)
	}
	if f.Type != nil {
		w.add("a.type = ?", *f.Type)
	}
	return w.sql(), w.args
}

// ListAccounts orders accounts by bank then name. A zero page returns all.
func ListAccounts(ctx context.Context, q db.Querier, f AccountFilter, page db.Page) ([]models.Account, int, error) {
	where, args := f.where()
	query := `SELECT ` + accountColumns + `, COUNT(*) OVER ()
		FROM accounts a JOIN banks b ON b.id = a.bank_id
		` + where + `
		ORDER BY b.name, a.name, a.id
	`
	if page.Limit > 0 {
		page = page.Normalize()
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, page.Offset)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []models.Account
	total := 0
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a, &total); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

// ListAccountOverviews is the dashboard account list, with the number of
// transactions missing a balance and the number not yet reviewed.
func ListAccountOverviews(ctx context.Context, q db.Querier, activeOnly bool) ([]models.AccountOverview, error) {
	query := `SELECT ` + accountColumns + `,
			COUNT(t.id) FILTER (WHERE t.balance IS NULL),
			COUNT(t.id) FILTER (WHERE NOT t.reviewed)
		FROM accounts a
		JOIN banks b ON b.id = a.bank_id
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.is_active OR NOT $1
		GROUP BY a.id, b.name
		ORDER BY a.currency, b.name, a.name
	`
	rows, err := q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AccountOverview
	for rows.Next() {
		var o models.AccountOverview
		if err := scanAccount(rows, &o.Account, &o.NullBalanceCount, &o.UnreviewedCount); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func UpdateAccount(ctx context.Context, q db.Querier, a models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET bank_id = $1, name = $2, alias = $3, type = $4, currency = $5, is_active = $6, plaid_account_id = $7
		WHERE id = $8
	`
	cmd, err := q.Exec(ctx, query, a.BankID, a.Name, a.Alias, a.Type, a.Currency, a.IsActive, a.PlaidAccountID, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, db.ErrNotFound
	}
	return GetAccount(ctx, q, a.ID)
}

func DeleteAccount(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "accounts", id)
}

// SetAccountTotals stores the result of a balance recalculation.
func SetAccountTotals(ctx context.Context, q db.Querier, id int64, amount decimal.Decimal, first, last *time.Time) error {
	query := `
		UPDATE accounts
		SET amount = $1, first_transaction = $2, last_transaction = $3, last_update = NOW()
		WHERE id = $4
	`
	cmd, err := q.Exec(ctx, query, amount, first, last, id)
	if err != nil {
		return fmt.Errorf("failed to update account totals: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// PrevMonthBalances returns, per account, the balance after the last
// transaction dated on or before the end of the month preceding now.
func PrevMonthBalances(ctx context.Context, q db.Querier, now time.Time) (map[int64]decimal.Decimal, error) {
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	query := `
		SELECT DISTINCT ON (account_id) account_id, balance
		FROM transactions
		WHERE date < $1 AND balance IS NOT NULL
		ORDER BY account_id, date DESC, amount ASC, id DESC
	`
	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var id int64
		var bal decimal.Decimal
		if err := rows.Scan(&id, &bal); err != nil {
			return nil, err
		}
		out[id] = bal
	}
	return out, rows.Err()
}
