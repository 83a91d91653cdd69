package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"money-server/src/models"
)

func TestWhereBuilder(t *testing.T) {
	w := newWhere()
	assert.Equal(t, "", w.sql())

	w.add("a = ?", 1)
	w.raw("b IS NULL")
	p := w.next("x")
	w.raw("c = " + p)
	w.add("d > ?", 2)

	assert.Equal(t, "WHERE a = $1 AND b IS NULL AND c = $2 AND d > $3", w.sql())
	assert.Equal(t, []any{1, "x", 2}, w.args)
}

func TestTransactionFilterWhere(t *testing.T) {
	account := int64(3)
	reviewed := false
	month := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	currency := models.USD

	f := TransactionFilter{Unlinked: true, Search: "mart"}
	f.AccountID = &account
	f.Reviewed = &reviewed
	f.Month = &month
	f.Currency = &currency

	w := f.where()
	assert.Equal(t,
		"WHERE t.account_id = $1 AND a.currency = $2 AND t.reviewed = $3"+
			" AND date_trunc('month', t.date) = date_trunc('month', $4::date)"+
			" AND t.related_transaction_id IS NULL AND (t.note ILIKE $5 OR r.name ILIKE $5)",
		w.sql())
	assert.Equal(t, []any{account, currency, reviewed, month, "%mart%"}, w.args)
}

func TestTransactionFilterOrder(t *testing.T) {
	assert.Contains(t, TransactionFilter{}.order(), "t.date DESC")
	assert.Contains(t, TransactionFilter{Ascending: true}.order(), "t.amount DESC")
}

func TestAccountFilterWhere(t *testing.T) {
	active := true
	where, args := AccountFilter{IsActive: &active}.where()
	assert.Equal(t, "WHERE a.is_active = $1", where)
	assert.Equal(t, []any{true}, args)
}
