package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func statement() models.Salary {
	return models.Salary{
		Date:             day("2024-03-15"),
		GrossPay:         dec("5000"),
		TotalAdjustment:  dec("-500"),
		TotalWithheld:    dec("-1000"),
		TotalDeduction:   dec("-100"),
		NetPay:           dec("3400"),
		PayDetail:        map[string]decimal.Decimal{"Base": dec("4000"), "Bonus": dec("1000")},
		AdjustmentDetail: map[string]decimal.Decimal{"401(K)": dec("-500")},
		TaxDetail:        map[string]decimal.Decimal{"Federal income tax": dec("-800"), "Medicare tax": dec("-200")},
		DeductionDetail:  map[string]decimal.Decimal{"Dental": dec("-100")},
	}
}

func TestSalaryValidity(t *testing.T) {
	checks := SalaryValidity(statement(), dec("3400"))
	require.Len(t, checks, 6)
	assert.True(t, SalaryValid(checks))

	checks = SalaryValidity(statement(), dec("3399"))
	assert.False(t, SalaryValid(checks))
	last := checks[len(checks)-1]
	assert.Equal(t, "Transaction", last.Name)
	assert.Equal(t, "-1", last.Diff.String())
	assert.False(t, last.Valid)

	s := statement()
	s.PayDetail["Bonus"] = dec("900")
	checks = SalaryValidity(s, dec("3400"))
	assert.Equal(t, "Gross", checks[0].Name)
	assert.Equal(t, "100", checks[0].Diff.String())
	assert.False(t, checks[0].Valid)
	assert.True(t, checks[4].Valid)
}

func TestDetails(t *testing.T) {
	details := []models.TransactionDetail{
		{Amount: dec("10"), Count: dec("2")},
		{Amount: dec("10"), Count: dec("1")},
	}
	assert.Equal(t, "30", DetailSum(details).String())
	assert.True(t, DetailLeftover(dec("-30"), details).IsZero())
	assert.True(t, DetailsBalanced(dec("-30"), details))
	assert.True(t, DetailsBalanced(dec("-30.004"), details))
	assert.False(t, DetailsBalanced(dec("-35"), details))
	assert.Equal(t, "5", DetailLeftover(dec("-35"), details).String())
}

func TestMostFrequentCategory(t *testing.T) {
	got := MostFrequentCategory([]CategoryCount{
		{RetailerID: 1, Category: models.CategoryGrocery, Count: 3},
		{RetailerID: 1, Category: models.CategoryEatOut, Count: 5},
		{RetailerID: 2, Category: models.CategoryEtc, Count: 2},
		{RetailerID: 2, Category: models.CategoryCar, Count: 2},
	})
	assert.Equal(t, map[int64]models.TransactionCategory{
		1: models.CategoryEatOut,
		2: models.CategoryCar,
	}, got)
}

func TestBudgetStatuses(t *testing.T) {
	txns := []models.Transaction{
		{Type: models.CategoryGrocery, Currency: models.KRW, Amount: dec("-150")},
		{Type: models.CategoryGrocery, Currency: models.KRW, Amount: dec("-100")},
		{Type: models.CategoryGrocery, Currency: models.KRW, Amount: dec("-1000"), IsInternal: true},
	}
	budgets := []models.Budget{
		{ID: 1, Category: models.CategoryGrocery, Currency: models.KRW, Amount: dec("200")},
		{ID: 2, Category: models.CategoryEatOut, Currency: models.KRW, Amount: dec("100")},
	}

	got := BudgetStatuses(budgets, SpentByCategory(txns))
	require.Len(t, got, 2)
	assert.Equal(t, "250", got[0].Spent.String())
	assert.Equal(t, "-50", got[0].Remaining.String())
	assert.Equal(t, "125", got[0].PercentUsed.String())
	assert.True(t, got[0].Over)

	assert.True(t, got[1].Spent.IsZero())
	assert.Equal(t, "100", got[1].Remaining.String())
	assert.False(t, got[1].Over)
}
