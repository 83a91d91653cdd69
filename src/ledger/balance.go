package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"money-server/src/models"
)

// Tolerance is the largest difference still treated as equal for amounts.
var Tolerance = decimal.New(1, -2)

func nearlyZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}

// SortForBalance orders transactions by date, then larger amounts first so
// deposits land before withdrawals on the same day, then by id.
func SortForBalance(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.ID < b.ID
	})
}

type BalanceResult struct {
	Total decimal.Decimal
	First *time.Time
	Last  *time.Time
}

// RunningBalances sorts txns in place and sets each Balance to the
// cumulative sum up to and including it.
func RunningBalances(txns []models.Transaction) BalanceResult {
	SortForBalance(txns)

	var res BalanceResult
	total := decimal.Zero
	for i := range txns {
		total = total.Add(txns[i].Amount)
		txns[i].Balance = decimal.NullDecimal{Decimal: total, Valid: true}
		if i == 0 {
			d := txns[i].Date
			res.First = &d
		}
		d := txns[i].Date
		res.Last = &d
	}
	res.Total = total
	return res
}

// TradeAmount is the cash effect of buying shares at price. Buying costs
// money, so the result is negative for a purchase.
func TradeAmount(price, shares decimal.Decimal) decimal.Decimal {
	return price.Mul(shares).Neg().Round(2)
}

// StockShareBalances sorts stock transactions in place and sets each Balance
// to the share count held of that stock after it.
func StockShareBalances(txns []models.StockTransaction) map[int64]decimal.Decimal {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.ID < b.ID
	})

	shares := make(map[int64]decimal.Decimal)
	for i := range txns {
		s := shares[txns[i].StockID].Add(txns[i].Shares)
		shares[txns[i].StockID] = s
		txns[i].Balance = decimal.NullDecimal{Decimal: s, Valid: true}
	}
	return shares
}
