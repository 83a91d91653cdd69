package graph

import (
	"errors"
	"testing"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	store "money-server/src/db"
	"money-server/src/models"
)

func ptr[T any](v T) *T { return &v }

func grocer(int64) (models.TransactionCategory, error) {
	return models.CategoryGrocery, nil
}

func TestTransactionInputDefaults(t *testing.T) {
	tests := []struct {
		name           string
		in             transactionInput
		wantType       models.TransactionCategory
		requiresDetail bool
	}{
		{
			name:     "no retailer",
			in:       transactionInput{AccountID: "1"},
			wantType: models.CategoryEtc,
		},
		{
			name:           "retailer category",
			in:             transactionInput{AccountID: "1", RetailerID: ptr(graphql.ID("4"))},
			wantType:       models.CategoryGrocery,
			requiresDetail: true,
		},
		{
			name:           "explicit itemized type",
			in:             transactionInput{AccountID: "1", Type: ptr("DAILY_NECESSITY")},
			wantType:       models.CategoryDailyNecessity,
			requiresDetail: true,
		},
		{
			name:     "explicit requires detail wins",
			in:       transactionInput{AccountID: "1", Type: ptr("GROCERY"), RequiresDetail: ptr(false)},
			wantType: models.CategoryGrocery,
		},
		{
			name:     "explicit type beats retailer",
			in:       transactionInput{AccountID: "1", RetailerID: ptr(graphql.ID("4")), Type: ptr("EAT_OUT")},
			wantType: models.CategoryEatOut,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.toTransaction(grocer)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.AccountID)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.requiresDetail, got.RequiresDetail)
		})
	}
}

func TestTransactionInputErrors(t *testing.T) {
	_, err := transactionInput{AccountID: "x"}.toTransaction(grocer)
	assert.Error(t, err)

	_, err = transactionInput{AccountID: "1", Type: ptr("LOTTERY")}.toTransaction(grocer)
	assert.Error(t, err)

	missing := errors.New("no such retailer")
	_, err = transactionInput{AccountID: "1", RetailerID: ptr(graphql.ID("9"))}.toTransaction(
		func(int64) (models.TransactionCategory, error) { return "", missing })
	assert.ErrorIs(t, err, missing)
}

func TestStockTransactionInput(t *testing.T) {
	in := stockTransactionInput{
		AccountID: "2",
		StockID:   "3",
		Price:     Decimal{decimal.RequireFromString("10.125")},
		Shares:    Decimal{decimal.NewFromInt(4)},
	}
	st, err := in.toStockTransaction()
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.AccountID)
	assert.Equal(t, "-40.5", st.Amount.String())

	in.Amount = Decimal{decimal.NewFromInt(-39)}
	st, err = in.toStockTransaction()
	require.NoError(t, err)
	assert.Equal(t, "-39", st.Amount.String())

	in.Shares = Decimal{}
	_, err = in.toStockTransaction()
	assert.Error(t, err)
}

func newTestCache(t *testing.T) *store.Cache {
	c, err := store.NewCache()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestLedgerChangedClearsBalances(t *testing.T) {
	r := testResolver()
	r.cache = newTestCache(t)

	r.cache.SetAccount(&models.Account{ID: 1})
	r.cache.SetRetailer(&models.Retailer{ID: 1})
	r.ledgerChanged()

	_, ok := r.cache.Account(1)
	assert.False(t, ok)
	_, ok = r.cache.Retailer(1)
	assert.True(t, ok)
}
