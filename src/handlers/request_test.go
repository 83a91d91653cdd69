package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func isValidation(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

func TestAccountRequest(t *testing.T) {
	valid := accountRequest{BankID: 1, Name: " Main ", Type: models.AccountChecking, Currency: models.KRW}
	a, err := valid.toAccount()
	require.NoError(t, err)
	assert.Equal(t, "Main", a.Name)
	assert.True(t, a.IsActive, "accounts are active unless told otherwise")

	tests := map[string]func(r *accountRequest){
		"no bank":        func(r *accountRequest) { r.BankID = 0 },
		"blank name":     func(r *accountRequest) { r.Name = "  " },
		"bad type":       func(r *accountRequest) { r.Type = "WALLET" },
		"bad currency":   func(r *accountRequest) { r.Currency = "EUR" },
		"empty currency": func(r *accountRequest) { r.Currency = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := req.toAccount()
			assert.True(t, isValidation(err), "got %v", err)
		})
	}
}

func TestTransactionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		req := transactionRequest{AccountID: 3, Amount: decimal.NewFromInt(-12000), Date: "2024-05-02"}
		txn, err := req.toTransaction(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryEtc, txn.Type)
		assert.Equal(t, models.CategoryEtc.RequiresDetail(), txn.RequiresDetail)
		assert.Equal(t, 2024, txn.Date.Year())
	})

	t.Run("explicit requires detail", func(t *testing.T) {
		no := false
		req := transactionRequest{AccountID: 3, Date: "2024-05-02", Type: models.CategoryGrocery, RequiresDetail: &no}
		txn, err := req.toTransaction(ctx, nil)
		require.NoError(t, err)
		assert.False(t, txn.RequiresDetail)
	})

	for name, req := range map[string]transactionRequest{
		"no account":   {Date: "2024-05-02"},
		"bad date":     {AccountID: 3, Date: "05/02/2024"},
		"bad category": {AccountID: 3, Date: "2024-05-02", Type: "GAMBLING"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := req.toTransaction(ctx, nil)
			assert.True(t, isValidation(err), "got %v", err)
		})
	}
}

func TestTransactionFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/transactions?account_id=4&reviewed=false&category=GROCERY&currency=USD&month=2024-03&unlinked=true&asc=1&search=mart", nil)
	f, err := transactionFilter(r)
	require.NoError(t, err)
	require.NotNil(t, f.AccountID)
	assert.Equal(t, int64(4), *f.AccountID)
	require.NotNil(t, f.Reviewed)
	assert.False(t, *f.Reviewed)
	require.NotNil(t, f.Category)
	assert.Equal(t, models.CategoryGrocery, *f.Category)
	require.NotNil(t, f.Currency)
	assert.Equal(t, models.USD, *f.Currency)
	require.NotNil(t, f.Month)
	assert.Equal(t, 3, int(f.Month.Month()))
	assert.True(t, f.Unlinked)
	assert.True(t, f.Ascending)
	assert.Equal(t, "mart", f.Search)
	assert.Nil(t, f.IsInternal)

	for _, q := range []string{"account_id=x", "reviewed=maybe", "category=NOPE", "currency=EUR", "month=2024-13", "year=twenty"} {
		t.Run(q, func(t *testing.T) {
			_, err := transactionFilter(httptest.NewRequest(http.MethodGet, "/api/transactions?"+q, nil))
			assert.True(t, isValidation(err), "got %v", err)
		})
	}
}

func TestMonthFilterDefaultsToCurrentMonth(t *testing.T) {
	m, err := monthFilter(httptest.NewRequest(http.MethodGet, "/api/categories/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Day())

	m, err = monthFilter(httptest.NewRequest(http.MethodGet, "/api/categories/summary?month=2023-11", nil))
	require.NoError(t, err)
	assert.Equal(t, 2023, m.Year())
	assert.Equal(t, 11, int(m.Month()))
}

func TestBudgetRequest(t *testing.T) {
	b, err := budgetRequest{Amount: decimal.NewFromInt(300000), Category: models.CategoryGrocery}.toBudget()
	require.NoError(t, err)
	assert.Equal(t, models.KRW, b.Currency)

	_, err = budgetRequest{Amount: decimal.Zero, Category: models.CategoryGrocery}.toBudget()
	assert.True(t, isValidation(err))
	_, err = budgetRequest{Amount: decimal.NewFromInt(1), Category: "RENT"}.toBudget()
	assert.True(t, isValidation(err))
}

func TestRuleRequest(t *testing.T) {
	cond := json.RawMessage(`{"and":[{"field":"note","op":"contains","value":"coupang"},{"field":"amount","op":"lt","value":0}]}`)
	rule, err := ruleRequest{Name: "Coupang", Conditions: cond, Category: models.CategoryDailyNecessity}.toRule()
	require.NoError(t, err)
	assert.Equal(t, "Coupang", rule.Name)

	tests := map[string]ruleRequest{
		"no name":       {Conditions: cond},
		"bad category":  {Name: "x", Conditions: cond, Category: "RENT"},
		"bad json":      {Name: "x", Conditions: json.RawMessage(`{`)},
		"unknown field": {Name: "x", Conditions: json.RawMessage(`{"field":"color","op":"equals","value":"red"}`)},
		"unknown op":    {Name: "x", Conditions: json.RawMessage(`{"field":"note","op":"like","value":"a"}`)},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := req.toRule()
			assert.True(t, isValidation(err), "got %v", err)
		})
	}
}

func TestStockTransactionRequestDerivesAmount(t *testing.T) {
	req := stockTransactionRequest{
		Date:      "2024-02-01",
		AccountID: 1,
		StockID:   2,
		Price:     decimal.RequireFromString("187.333"),
		Shares:    decimal.NewFromInt(3),
	}
	st, err := req.toStockTransaction()
	require.NoError(t, err)
	assert.True(t, st.Amount.Equal(decimal.RequireFromString("-562")), st.Amount.String())

	req.Amount = decimal.NewFromInt(-560)
	st, err = req.toStockTransaction()
	require.NoError(t, err)
	assert.True(t, st.Amount.Equal(decimal.NewFromInt(-560)))

	req.Shares = decimal.Zero
	_, err = req.toStockTransaction()
	assert.True(t, isValidation(err))
}

func TestRetailerSummaryFilter(t *testing.T) {
	tests := []struct {
		query   string
		year    int
		month   string
		wantErr bool
	}{
		{query: "year=2023", year: 2023},
		{query: "month=2024-02", month: "2024-02"},
		{query: "year=2023&month=2024-02", year: 2023},
		{query: "year=abc", wantErr: true},
		{query: "month=2024-13", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := retailerSummaryFilter(httptest.NewRequest(http.MethodGet, "/api/retailers/summary?"+tt.query, nil))
			if tt.wantErr {
				assert.True(t, isValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, f.IsInternal)
			assert.False(t, *f.IsInternal, "internal transfers are excluded")
			if tt.year != 0 {
				require.NotNil(t, f.Year)
				assert.Equal(t, tt.year, *f.Year)
				assert.Nil(t, f.Month)
			} else {
				require.NotNil(t, f.Month)
				assert.Equal(t, tt.month, f.Month.Format("2006-01"))
			}
		})
	}
}

func TestCategoryFilters(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/categories/GROCERY?month=2024-04", nil)
	all, listed, err := categoryFilters(r, models.CategoryGrocery)
	require.NoError(t, err)

	for name, f := range map[string]struct {
		category *models.TransactionCategory
		internal *bool
	}{
		"history": {all.Category, all.IsInternal},
		"listed":  {listed.Category, listed.IsInternal},
	} {
		require.NotNil(t, f.category, name)
		assert.Equal(t, models.CategoryGrocery, *f.category, name)
		require.NotNil(t, f.internal, name)
		assert.False(t, *f.internal, name)
	}
	assert.True(t, all.Ascending)
	assert.Nil(t, all.Month, "the history spans every month")
	require.NotNil(t, listed.Month)
	assert.Equal(t, "2024-04", listed.Month.Format("2006-01"))

	_, _, err = categoryFilters(httptest.NewRequest(http.MethodGet, "/api/categories/GROCERY?month=april", nil), models.CategoryGrocery)
	assert.True(t, isValidation(err), "got %v", err)
}
