package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func TestRunningBalances(t *testing.T) {
	txns := []models.Transaction{
		{ID: 1, Date: day("2024-01-02"), Amount: dec("-50")},
		{ID: 2, Date: day("2024-01-01"), Amount: dec("100")},
		{ID: 4, Date: day("2024-01-02"), Amount: dec("20")},
		{ID: 3, Date: day("2024-01-02"), Amount: dec("20")},
	}

	res := RunningBalances(txns)

	var ids []int64
	var balances []string
	for _, tx := range txns {
		ids = append(ids, tx.ID)
		require.True(t, tx.Balance.Valid)
		balances = append(balances, tx.Balance.Decimal.String())
	}
	assert.Equal(t, []int64{2, 3, 4, 1}, ids)
	assert.Equal(t, []string{"100", "120", "140", "90"}, balances)
	assert.Equal(t, "90", res.Total.String())
	require.NotNil(t, res.First)
	require.NotNil(t, res.Last)
	assert.Equal(t, day("2024-01-01"), *res.First)
	assert.Equal(t, day("2024-01-02"), *res.Last)
}

func TestRunningBalancesEmpty(t *testing.T) {
	res := RunningBalances(nil)
	assert.True(t, res.Total.IsZero())
	assert.Nil(t, res.First)
	assert.Nil(t, res.Last)
}

func TestStockShareBalances(t *testing.T) {
	txns := []models.StockTransaction{
		{ID: 1, StockID: 1, Date: day("2024-01-03"), Shares: dec("-2"), Amount: dec("300")},
		{ID: 2, StockID: 1, Date: day("2024-01-01"), Shares: dec("5"), Amount: dec("-700")},
		{ID: 3, StockID: 2, Date: day("2024-01-02"), Shares: dec("1.5"), Amount: dec("-90")},
	}

	shares := StockShareBalances(txns)

	assert.Equal(t, "3", shares[1].String())
	assert.Equal(t, "1.5", shares[2].String())
	got := map[int64]string{}
	for _, tx := range txns {
		got[tx.ID] = tx.Balance.Decimal.String()
	}
	assert.Equal(t, map[int64]string{1: "3", 2: "5", 3: "1.5"}, got)
}

func TestSortingAmount(t *testing.T) {
	in := models.Transaction{Amount: dec("10"), Balance: decimal.NullDecimal{Decimal: dec("50"), Valid: true}}
	out := models.Transaction{Amount: dec("-10"), Balance: decimal.NullDecimal{Decimal: dec("50"), Valid: true}}
	assert.Equal(t, "50", in.SortingAmount().String())
	assert.Equal(t, "-50", out.SortingAmount().String())
	assert.True(t, models.Transaction{Amount: dec("1")}.SortingAmount().IsZero())
}

func TestTradeAmount(t *testing.T) {
	assert.Equal(t, "-40.5", TradeAmount(decimal.RequireFromString("10.125"), decimal.NewFromInt(4)).String())
	assert.Equal(t, "25", TradeAmount(decimal.NewFromInt(5), decimal.NewFromInt(-5)).String())
}
