package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func TestCurrencySummary(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, Currency: models.KRW, Amount: dec("1000")},
		{ID: 2, Currency: models.KRW, Amount: dec("500")},
		{ID: 3, Currency: models.USD, Amount: dec("10")},
	}
	prev := map[int64]decimal.Decimal{1: dec("1200"), 3: dec("0")}

	got := CurrencySummary(accounts, prev)
	require.Len(t, got, 2)

	assert.Equal(t, models.KRW, got[0].Currency)
	assert.Equal(t, "1500", got[0].Current.String())
	assert.Equal(t, "1200", got[0].Prev.String())
	assert.Equal(t, "300", got[0].Diff.String())
	assert.Equal(t, "25", got[0].Ratio.String())

	assert.Equal(t, models.USD, got[1].Currency)
	assert.Equal(t, "10", got[1].Diff.String())
	assert.Equal(t, "1000", got[1].Ratio.String())
}

func TestCurrencySummaryNoAccounts(t *testing.T) {
	got := CurrencySummary(nil, nil)
	require.Len(t, got, 2)
	for _, ct := range got {
		assert.True(t, ct.Current.IsZero())
		assert.True(t, ct.Ratio.IsZero())
	}
}

func TestMonthList(t *testing.T) {
	got := MonthList(day("2023-11-15"), day("2024-02-01"))
	var values []string
	for _, m := range got {
		values = append(values, m.Value)
	}
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, values)
	assert.Equal(t, "November 2023", got[0].Label)

	assert.Empty(t, MonthList(day("2024-03-01"), day("2024-02-01")))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, day("2024-02-01"), m)

	_, err = ParseMonth("2024/02")
	assert.Error(t, err)
}

func TestMonthlyTotals(t *testing.T) {
	txns := []models.Transaction{
		{Date: day("2024-02-03"), Currency: models.KRW, Amount: dec("-10")},
		{Date: day("2024-01-03"), Currency: models.USD, Amount: dec("4")},
		{Date: day("2024-01-09"), Currency: models.KRW, Amount: dec("7")},
		{Date: day("2024-01-20"), Currency: models.KRW, Amount: dec("3")},
	}
	got := MonthlyTotals(txns)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.Equal(t, models.KRW, got[0].Currency)
	assert.Equal(t, "10", got[0].Total.String())
	assert.Equal(t, models.USD, got[1].Currency)
	assert.Equal(t, "2024-02", got[2].Month)
	assert.Equal(t, "-10", got[2].Total.String())
}

func TestCategorySummary(t *testing.T) {
	txns := []models.Transaction{
		{Type: models.CategoryGrocery, Currency: models.KRW, Amount: dec("-100")},
		{Type: models.CategoryGrocery, Currency: models.KRW, Amount: dec("-50")},
		{Type: models.CategoryIncome, Currency: models.KRW, Amount: dec("1000")},
		{Type: models.CategoryEatOut, Currency: models.KRW, Amount: dec("-30")},
		{Type: models.CategoryGrocery, Currency: models.USD, Amount: dec("-5")},
	}

	got := CategorySummary(txns)
	require.Len(t, got, 2)

	krw := got[0]
	assert.Equal(t, models.KRW, krw.Currency)
	require.Len(t, krw.Spent, 2)
	assert.Equal(t, models.CategoryGrocery, krw.Spent[0].Category)
	assert.Equal(t, "150", krw.Spent[0].Total.String())
	assert.Equal(t, models.CategoryEatOut, krw.Spent[1].Category)
	require.Len(t, krw.Income, 1)
	assert.Equal(t, "-1000", krw.Income[0].Total.String())

	usd := got[1]
	require.Len(t, usd.Spent, 1)
	assert.Empty(t, usd.Income)
}

func TestRetailerSummary(t *testing.T) {
	retailers := map[int64]models.Retailer{
		1: {ID: 1, Name: "Mart", Type: models.RetailerStore, Category: models.CategoryGrocery},
		2: {ID: 2, Name: "Cafe", Type: models.RetailerStore, Category: models.CategoryEatOut},
	}
	txns := []models.Transaction{
		{RetailerID: id(1), Currency: models.KRW, Amount: dec("-100")},
		{RetailerID: id(1), Currency: models.KRW, Amount: dec("20")},
		{RetailerID: id(2), Currency: models.KRW, Amount: dec("-300")},
		{Currency: models.KRW, Amount: dec("5")},
		{RetailerID: id(2), Currency: models.KRW, Amount: dec("-5000"), IsInternal: true},
	}

	totals, chart := RetailerSummary(txns, retailers)
	require.Len(t, totals, 3)
	assert.Equal(t, "Cafe", totals[0].Name)
	assert.Equal(t, "-300", totals[0].MinusSum.String())
	assert.Equal(t, "Mart", totals[1].Name)
	assert.Equal(t, "20", totals[1].PlusSum.String())
	assert.Equal(t, 2, totals[1].Count)
	assert.Nil(t, totals[2].RetailerID)

	assert.Equal(t, 1, totals[0].Count, "internal transfers are not counted")
	assert.Equal(t, []string{"Cafe", "Mart"}, chart.Labels[models.KRW])
	assert.Equal(t, []string{"300", "100"}, []string{chart.Data[models.KRW][0].String(), chart.Data[models.KRW][1].String()})
	assert.Empty(t, chart.Labels[models.USD])
}
