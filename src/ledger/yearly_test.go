package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func balanced(tx models.Transaction, balance string) models.Transaction {
	tx.Balance = decimal.NullDecimal{Decimal: dec(balance), Valid: true}
	return tx
}

func TestBuildYearSummary(t *testing.T) {
	first2019, first2020 := day("2019-05-01"), day("2020-05-01")
	accounts := map[int64]models.Account{
		1: {ID: 1, Name: "Checking", Type: models.AccountChecking, Currency: models.KRW, FirstTransaction: &first2020},
		2: {ID: 2, Name: "Saving", Type: models.AccountInstallmentSaving, Currency: models.KRW, FirstTransaction: &first2019},
		3: {ID: 3, Name: "Brokerage", Type: models.AccountStock, Currency: models.USD},
	}
	retailers := map[int64]models.Retailer{
		9: {ID: 9, Name: "KB", Type: models.RetailerBank},
	}
	txns := []models.Transaction{
		balanced(models.Transaction{ID: 1, AccountID: 1, Date: day("2023-01-01"), Amount: dec("100")}, "100"),
		balanced(models.Transaction{ID: 2, AccountID: 1, Date: day("2023-01-02"), Amount: dec("-30")}, "70"),
		balanced(models.Transaction{ID: 3, AccountID: 2, Date: day("2023-01-01"), Amount: dec("5"), RetailerID: id(9)}, "1005"),
		balanced(models.Transaction{ID: 4, AccountID: 2, Date: day("2023-01-03"), Amount: dec("-1"), RetailerID: id(9)}, "1004"),
		{ID: 5, AccountID: 3, Date: day("2023-01-01"), Amount: dec("10")},
		balanced(models.Transaction{ID: 6, AccountID: 1, Date: day("2022-12-31"), Amount: dec("999")}, "999"),
	}
	salaries := []models.Salary{statement(), {Date: day("2022-03-15"), GrossPay: dec("1")}}
	salaries[0].Date = day("2023-03-15")

	got := BuildYearSummary(2023, txns, accounts, retailers, salaries)
	assert.Equal(t, 2023, got.Year)

	require.Len(t, got.Currencies, 2)
	krw := got.Currencies[0]
	assert.Equal(t, models.KRW, krw.Currency)
	assert.Equal(t, 2, krw.Count)
	require.Len(t, krw.Accounts, 2)
	assert.Equal(t, int64(2), krw.Accounts[0].Account.ID)
	assert.Equal(t, "1005", krw.Accounts[0].MaxValue.String())
	assert.Equal(t, "1004", krw.Accounts[0].LastValue.String())
	require.NotNil(t, krw.Accounts[0].MaxDate)
	assert.Equal(t, day("2023-01-01"), *krw.Accounts[0].MaxDate)
	assert.Equal(t, "70", krw.Accounts[1].LastValue.String())
	assert.Equal(t, "1074", krw.TotalLastPositive.String())
	assert.Equal(t, "1105", krw.TotalMaxPositive.String())

	usd := got.Currencies[1]
	require.Len(t, usd.Accounts, 1)
	assert.Equal(t, 1, usd.Accounts[0].Unbalanced)
	assert.Nil(t, usd.Accounts[0].MaxDate)

	require.Len(t, got.InterestTax, 1)
	assert.Equal(t, "5", got.InterestTax[0].TotalInterest.String())
	assert.Equal(t, "-1", got.InterestTax[0].TotalTax.String())
	assert.Equal(t, "4", got.InterestTax[0].AfterTax.String())

	require.Len(t, got.BankInterest, 1)
	assert.Equal(t, "KB", got.BankInterest[0].Retailer)
	assert.Equal(t, "4", got.BankInterest[0].Total.String())

	assert.Equal(t, 1, got.Salary.Count)
	assert.Equal(t, "5000", got.Salary.GrossPay.String())
	assert.Equal(t, "-800", got.Salary.TaxDetail["Federal income tax"].String())
}

func TestSumSalariesEmptyYear(t *testing.T) {
	st := SumSalaries(time.Now().Year()+10, []models.Salary{statement()})
	assert.Zero(t, st.Count)
	assert.NotNil(t, st.PayDetail)
}
