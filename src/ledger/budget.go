package ledger

import (
	"github.com/shopspring/decimal"

	"money-server/src/models"
)

type BudgetKey struct {
	Category models.TransactionCategory
	Currency models.Currency
}

// SpentByCategory nets external transactions per category and currency,
// outflows positive.
func SpentByCategory(txns []models.Transaction) map[BudgetKey]decimal.Decimal {
	out := make(map[BudgetKey]decimal.Decimal)
	for _, t := range txns {
		if t.IsInternal {
			continue
		}
		k := BudgetKey{t.Type, t.Currency}
		out[k] = out[k].Sub(t.Amount)
	}
	return out
}

type BudgetStatus struct {
	Budget      models.Budget   `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percent_used"`
	Over        bool            `json:"over"`
}

func BudgetStatuses(budgets []models.Budget, spent map[BudgetKey]decimal.Decimal) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[BudgetKey{b.Category, b.Currency}]
		st := BudgetStatus{
			Budget:    b,
			Spent:     s,
			Remaining: b.Amount.Sub(s),
			Over:      s.GreaterThan(b.Amount),
		}
		if b.Amount.IsPositive() {
			st.PercentUsed = s.Div(b.Amount).Mul(hundred).Round(2)
		}
		out = append(out, st)
	}
	return out
}
