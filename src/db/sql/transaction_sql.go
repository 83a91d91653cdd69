package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/ledger"
	"money-server/src/models"
)

const transactionColumns = `
	t.id, t.account_id, t.retailer_id, t.amount, t.balance, t.date, t.note,
	t.is_internal, t.requires_detail, t.type, t.reviewed, t.related_transaction_id,
	t.external_id, t.import_batch, t.created_at, t.updated_at,
	a.name, a.currency, r.name
`

const transactionFrom = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN retailers r ON r.id = t.retailer_id
`

func scanTransaction(row pgx.Row, t *models.Transaction, extra ...any) error {
	dest := []any{
		&t.ID, &t.AccountID, &t.RetailerID, &t.Amount, &t.Balance, &t.Date, &t.Note,
		&t.IsInternal, &t.RequiresDetail, &t.Type, &t.Reviewed, &t.RelatedTransactionID,
		&t.ExternalID, &t.ImportBatch, &t.CreatedAt, &t.UpdatedAt,
		&t.AccountName, &t.Currency, &t.RetailerName,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectTransactions(rows pgx.Rows, extra ...any) ([]models.Transaction, error) {
	defer rows.Close()
	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t, extra...); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func CreateTransaction(ctx context.Context, q db.Querier, t models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (
			account_id, retailer_id, amount, date, note, is_internal, requires_detail,
			type, reviewed, external_id, import_batch
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query,
		t.AccountID, t.RetailerID, t.Amount, t.Date, t.Note, t.IsInternal, t.RequiresDetail,
		t.Type, t.Reviewed, t.ExternalID, t.ImportBatch,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return GetTransaction(ctx, q, id)
}

func GetTransaction(ctx context.Context, q db.Querier, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom + `WHERE t.id = $1`
	var t models.Transaction
	if err := scanTransaction(q.QueryRow(ctx, query, id), &t); err != nil {
		return nil, db.NotFound(err)
	}
	return &t, nil
}

func (f TransactionFilter) where() *where {
	w := newWhere()
	if f.AccountID != nil {
		w.add("t.account_id = ?", *f.AccountID)
	}
	if f.RetailerID != nil {
		w.add("t.retailer_id = ?", *f.RetailerID)
	}
	if f.Category != nil {
		w.add("t.type = ?", *f.Category)
	}
	if f.Currency != nil {
		w.add("a.currency = ?", *f.Currency)
	}
	if f.Reviewed != nil {
		w.add("t.reviewed = ?", *f.Reviewed)
	}
	if f.IsInternal != nil {
		w.add("t.is_internal = ?", *f.IsInternal)
	}
	if f.RequiresDetail != nil {
		w.add("t.requires_detail = ?", *f.RequiresDetail)
	}
	if f.Month != nil {
		w.add("date_trunc('month', t.date) = date_trunc('month', ?::date)", *f.Month)
	}
	if f.Year != nil {
		w.add("EXTRACT(YEAR FROM t.date) = ?", *f.Year)
	}
	if f.Unlinked {
		w.raw("t.related_transaction_id IS NULL")
	}
	if f.MissingDetail {
		w.raw(`NOT EXISTS (SELECT 1 FROM transaction_details d WHERE d.transaction_id = t.id)`)
	}
	if f.Search != "" {
		p := w.next("%" + f.Search + "%")
		w.raw("(t.note ILIKE " + p + " OR r.name ILIKE " + p + ")")
	}
	return w
}

// TransactionFilter extends models.TransactionFilter with list-only options.
type TransactionFilter struct {
	models.TransactionFilter
	Unlinked      bool
	MissingDetail bool
	Search        string
	// Ascending lists oldest first; the default is newest first.
	Ascending bool
}

func (f TransactionFilter) order() string {
	if f.Ascending {
		return " ORDER BY t.date, t.amount DESC, t.id"
	}
	return " ORDER BY t.date DESC, t.amount, t.id DESC"
}

// ListTransactions returns one page of matching transactions and the total
// number of matches.
func ListTransactions(ctx context.Context, q db.Querier, f TransactionFilter, page db.Page) ([]models.Transaction, int, error) {
	page = page.Normalize()
	w := f.where()
	query := `SELECT ` + transactionColumns + `, COUNT(*) OVER ()` + transactionFrom + w.sql() + f.order() +
		fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, page.Offset)

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	txns, err := collectTransactions(rows, &total)
	if err != nil {
		return nil, 0, err
	}
	if len(txns) == 0 && page.Offset > 0 {
		total, err = CountTransactions(ctx, q, f)
	}
	return txns, total, err
}

// AllTransactions returns every matching transaction without paging.
func AllTransactions(ctx context.Context, q db.Querier, f TransactionFilter) ([]models.Transaction, error) {
	w := f.where()
	query := `SELECT ` + transactionColumns + transactionFrom + w.sql() + f.order()
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func CountTransactions(ctx context.Context, q db.Querier, f TransactionFilter) (int, error) {
	w := f.where()
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*)`+transactionFrom+w.sql(), w.args...).Scan(&n)
	return n, err
}

func UpdateTransaction(ctx context.Context, q db.Querier, t models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET account_id = $1, retailer_id = $2, amount = $3, date = $4, note = $5,
			is_internal = $6, requires_detail = $7, type = $8, reviewed = $9, updated_at = NOW()
		WHERE id = $10
	`
	cmd, err := q.Exec(ctx, query,
		t.AccountID, t.RetailerID, t.Amount, t.Date, t.Note,
		t.IsInternal, t.RequiresDetail, t.Type, t.Reviewed, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, db.ErrNotFound
	}
	return GetTransaction(ctx, q, t.ID)
}

// DeleteTransaction removes a transaction and unlinks its partner.
func DeleteTransaction(ctx context.Context, q db.Querier, id int64) error {
	if _, err := q.Exec(ctx, `UPDATE transactions SET related_transaction_id = NULL WHERE related_transaction_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink transaction: %w", err)
	}
	return deleteByID(ctx, q, "transactions", id)
}

func ToggleReviewed(ctx context.Context, q db.Querier, id int64) (bool, error) {
	query := `
		UPDATE transactions SET reviewed = NOT reviewed, updated_at = NOW()
		WHERE id = $1
		RETURNING reviewed
	`
	var reviewed bool
	if err := q.QueryRow(ctx, query, id).Scan(&reviewed); err != nil {
		return false, db.NotFound(err)
	}
	return reviewed, nil
}

func SetReviewed(ctx context.Context, q db.Querier, id int64, reviewed bool) error {
	cmd, err := q.Exec(ctx, `UPDATE transactions SET reviewed = $1, updated_at = NOW() WHERE id = $2`, reviewed, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SetRelated links a and b to each other.
func SetRelated(ctx context.Context, q db.Querier, a, b int64) error {
	query := `
		UPDATE transactions
		SET related_transaction_id = CASE id WHEN $1 THEN $2::bigint ELSE $1::bigint END, updated_at = NOW()
		WHERE id IN ($1, $2)
	`
	cmd, err := q.Exec(ctx, query, a, b)
	if err != nil {
		return fmt.Errorf("failed to link transactions: %w", err)
	}
	if cmd.RowsAffected() != 2 {
		return db.ErrNotFound
	}
	return nil
}

// UnlinkTransaction clears the link on a transaction and its partner.
func UnlinkTransaction(ctx context.Context, q db.Querier, id int64) error {
	query := `
		UPDATE transactions SET related_transaction_id = NULL, updated_at = NOW()
		WHERE id = $1 OR related_transaction_id = $1
	`
	cmd, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SetBalances writes recalculated running balances in one batch.
func SetBalances(ctx context.Context, q db.Querier, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range txns {
		batch.Queue(`UPDATE transactions SET balance = $1 WHERE id = $2`, t.Balance, t.ID)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}
	return nil
}

// AccountLedger returns the id, amount and date of every transaction in an
// account, enough to recalculate its balances.
func AccountLedger(ctx context.Context, q db.Querier, accountID int64) ([]models.Transaction, error) {
	rows, err := q.Query(ctx, `SELECT id, amount, date FROM transactions WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t := models.Transaction{AccountID: accountID}
		if err := rows.Scan(&t.ID, &t.Amount, &t.Date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkRequiresDetail flags unreviewed transactions of itemized categories.
func MarkRequiresDetail(ctx context.Context, q db.Querier) (int64, error) {
	var cats []string
	for _, c := range models.AllTransactionCategories() {
		if c.RequiresDetail() {
			cats = append(cats, string(c))
		}
	}
	query := `
		UPDATE transactions SET requires_detail = TRUE, updated_at = NOW()
		WHERE type = ANY($1) AND NOT reviewed AND NOT requires_detail
	`
	cmd, err := q.Exec(ctx, query, cats)
	if err != nil {
		return 0, fmt.Errorf("failed to mark transactions: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// ApplyRuleChange writes the fields a transaction rule changed.
func ApplyRuleChange(ctx context.Context, q db.Querier, transactionID int64, category models.TransactionCategory, retailerID *int64, isInternal *bool, reviewed bool) error {
	query := `
		UPDATE transactions
		SET type = $1,
			retailer_id = COALESCE($2, retailer_id),
			is_internal = COALESCE($3, is_internal),
			reviewed = $4,
			updated_at = NOW()
		WHERE id = $5
	`
	_, err := q.Exec(ctx, query, category, retailerID, isInternal, reviewed, transactionID)
	return err
}

// DeleteByExternalIDs removes synced transactions that the provider retracted
// and returns the affected accounts.
func DeleteByExternalIDs(ctx context.Context, q db.Querier, externalIDs []string) ([]int64, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, `DELETE FROM transactions WHERE external_id = ANY($1) RETURNING account_id`, externalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertExternalTransaction inserts a synced transaction or updates the one
// carrying the same external id.
func UpsertExternalTransaction(ctx context.Context, q db.Querier, t models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, amount, date, note, type, external_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (external_id) DO UPDATE
		SET amount = EXCLUDED.amount, date = EXCLUDED.date, note = EXCLUDED.note, updated_at = NOW()
	`
	_, err := q.Exec(ctx, query, t.AccountID, t.Amount, t.Date, t.Note, t.Type, t.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

// SnapshotRows returns date, account display name and amount of every
// transaction in currency, oldest first.
func SnapshotRows(ctx context.Context, q db.Querier, currency models.Currency) ([]ledger.SnapshotEntry, error) {
	query := `
		SELECT t.date, b.name || ' ' || a.name, t.amount
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN banks b ON b.id = a.bank_id
		WHERE a.currency = $1
		ORDER BY t.date, t.amount DESC, t.id
	`
	rows, err := q.Query(ctx, query, currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.SnapshotEntry
	for rows.Next() {
		var r ledger.SnapshotEntry
		if err := rows.Scan(&r.Date, &r.Account, &r.Amount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CategoryCounts counts transactions per retailer and category.
func CategoryCounts(ctx context.Context, q db.Querier) ([]ledger.CategoryCount, error) {
	query := `
		SELECT retailer_id, type, COUNT(*)
		FROM transactions
		WHERE retailer_id IS NOT NULL
		GROUP BY retailer_id, type
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.CategoryCount
	for rows.Next() {
		var c ledger.CategoryCount
		if err := rows.Scan(&c.RetailerID, &c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TransactionYears lists the calendar years that have transactions.
func TransactionYears(ctx context.Context, q db.Querier) ([]int, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT EXTRACT(YEAR FROM date)::int AS y FROM transactions ORDER BY y DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
