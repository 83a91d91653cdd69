package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

var bounds = NewRatioBounds(1000, 1600)

func leg(id, account int64, currency models.Currency, amount, date string) models.Transaction {
	return models.Transaction{
		ID:         id,
		AccountID:  account,
		Currency:   currency,
		Amount:     dec(amount),
		Date:       day(date),
		IsInternal: true,
	}
}

func TestCheckTransfer(t *testing.T) {
	linked := leg(2, 2, models.KRW, "100", "2024-01-01")
	linked.RelatedTransactionID = id(9)
	external := leg(2, 2, models.KRW, "100", "2024-01-01")
	external.IsInternal = false

	tests := []struct {
		name string
		a, b models.Transaction
		err  error
	}{
		{"ok", leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(2, 2, models.KRW, "100", "2024-01-05"), nil},
		{"within tolerance", leg(1, 1, models.USD, "-10.005", "2024-01-01"), leg(2, 2, models.USD, "10", "2024-01-01"), nil},
		{"same transaction", leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(1, 1, models.KRW, "-100", "2024-01-01"), ErrSameTransaction},
		{"same account", leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(2, 1, models.KRW, "100", "2024-01-01"), ErrSameAccount},
		{"external", leg(1, 1, models.KRW, "-100", "2024-01-01"), external, ErrNotInternal},
		{"already linked", leg(1, 1, models.KRW, "-100", "2024-01-01"), linked, ErrAlreadyLinked},
		{"amount mismatch", leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(2, 2, models.KRW, "99", "2024-01-01"), ErrAmountMismatch},
		{"currency mismatch", leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(2, 2, models.USD, "100", "2024-01-01"), ErrCurrencyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransfer(tt.a, tt.b)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestCheckExchange(t *testing.T) {
	t.Run("krw to usd", func(t *testing.T) {
		ex, err := CheckExchange(leg(1, 1, models.KRW, "-1300000", "2024-01-01"), leg(2, 2, models.USD, "1000", "2024-01-01"), bounds)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ex.FromTransaction)
		assert.Equal(t, int64(2), ex.ToTransaction)
		assert.Equal(t, models.KRW, ex.FromCurrency)
		require.NotNil(t, ex.RatioPerKRW)
		assert.Equal(t, "1300", ex.RatioPerKRW.String())
	})
	t.Run("usd to krw", func(t *testing.T) {
		ex, err := CheckExchange(leg(1, 1, models.USD, "-1000", "2024-01-01"), leg(2, 2, models.KRW, "1250000", "2024-01-01"), bounds)
		require.NoError(t, err)
		assert.Equal(t, "1250", ex.RatioPerKRW.String())
		assert.Equal(t, "-1000", ex.FromAmount.String())
	})
	t.Run("ratio out of range", func(t *testing.T) {
		_, err := CheckExchange(leg(1, 1, models.KRW, "-2000000", "2024-01-01"), leg(2, 2, models.USD, "1000", "2024-01-01"), bounds)
		assert.ErrorIs(t, err, ErrRatioOutOfRange)
	})
	t.Run("dates differ", func(t *testing.T) {
		_, err := CheckExchange(leg(1, 1, models.KRW, "-1300000", "2024-01-01"), leg(2, 2, models.USD, "1000", "2024-01-02"), bounds)
		assert.ErrorIs(t, err, ErrDateMismatch)
	})
}

func TestCheckLink(t *testing.T) {
	ex, err := CheckLink(leg(1, 1, models.KRW, "-100", "2024-01-01"), leg(2, 2, models.KRW, "100", "2024-01-01"), bounds)
	require.NoError(t, err)
	assert.Nil(t, ex)

	ex, err = CheckLink(leg(1, 1, models.KRW, "-1300000", "2024-01-01"), leg(2, 2, models.USD, "1000", "2024-01-01"), bounds)
	require.NoError(t, err)
	require.NotNil(t, ex)
}

func TestSuggestPairs(t *testing.T) {
	external := leg(6, 2, models.KRW, "-100", "2024-01-01")
	external.IsInternal = false

	txns := []models.Transaction{
		leg(1, 1, models.KRW, "-100", "2024-01-01"),
		leg(2, 2, models.KRW, "100", "2024-01-03"),
		leg(3, 3, models.KRW, "100", "2024-01-02"),
		leg(5, 4, models.USD, "1000", "2024-01-05"),
		leg(4, 1, models.KRW, "-1300000", "2024-01-05"),
		external,
		leg(7, 3, models.KRW, "-42", "2024-02-20"),
	}

	pairs := SuggestPairs(txns, 3, bounds)
	require.Len(t, pairs, 2)

	assert.Equal(t, int64(1), pairs[0].Source.ID)
	assert.Equal(t, int64(3), pairs[0].Target.ID)
	assert.Nil(t, pairs[0].Exchange)
	assert.Equal(t, 1, pairs[0].DaysApart)

	assert.Equal(t, int64(4), pairs[1].Source.ID)
	assert.Equal(t, int64(5), pairs[1].Target.ID)
	require.NotNil(t, pairs[1].Exchange)
	assert.Equal(t, "1300", pairs[1].Exchange.RatioPerKRW.String())
}

func TestSuggestPairsWindow(t *testing.T) {
	txns := []models.Transaction{
		leg(1, 1, models.KRW, "-100", "2024-01-01"),
		leg(2, 2, models.KRW, "100", "2024-01-10"),
	}
	assert.Empty(t, SuggestPairs(txns, 3, bounds))
	assert.Len(t, SuggestPairs(txns, 9, bounds), 1)
}
