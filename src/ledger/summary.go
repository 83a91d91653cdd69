package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"money-server/src/models"
)

const monthLayout = "2006-01"

type CurrencyTotal struct {
	Currency models.Currency `json:"currency"`
	Current  decimal.Decimal `json:"current"`
	Prev     decimal.Decimal `json:"prev"`
	Diff     decimal.Decimal `json:"diff"`
	Ratio    decimal.Decimal `json:"ratio"`
}

var hundred = decimal.NewFromInt(100)

// CurrencySummary totals account amounts per currency and compares them with
// the balances at the end of the previous month, keyed by account id.
// Every known currency is present, sorted by code.
func CurrencySummary(accounts []models.Account, prev map[int64]decimal.Decimal) []CurrencyTotal {
	byCurrency := make(map[models.Currency]*CurrencyTotal)
	for _, c := range models.AllCurrencies() {
		byCurrency[c] = &CurrencyTotal{Currency: c}
	}

	for _, a := range accounts {
		ct, ok := byCurrency[a.Currency]
		if !ok {
			ct = &CurrencyTotal{Currency: a.Currency}
			byCurrency[a.Currency] = ct
		}
		ct.Current = ct.Current.Add(a.Amount)
		if p, ok := prev[a.ID]; ok {
			ct.Prev = ct.Prev.Add(p)
		}
	}

	out := make([]CurrencyTotal, 0, len(byCurrency))
	for _, ct := range byCurrency {
		ct.Diff = ct.Current.Sub(ct.Prev)
		base := ct.Prev
		if base.IsZero() {
			base = decimal.NewFromInt(1)
		}
		ct.Ratio = ct.Diff.Div(base).Mul(hundred).Round(2)
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ParseMonth reads a YYYY-MM month selector.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t, nil
}

type Month struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthList lists every month from start to end inclusive.
func MonthList(start, end time.Time) []Month {
	var out []Month
	for m := MonthStart(start); !m.After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, Month{Value: m.Format(monthLayout), Label: m.Format("January 2006")})
	}
	return out
}

type MonthTotal struct {
	Month    string          `json:"month"`
	Currency models.Currency `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlyTotals sums transaction amounts by month and currency, ordered by
// month then currency.
func MonthlyTotals(txns []models.Transaction) []MonthTotal {
	type key struct {
		month    string
		currency models.Currency
	}
	sums := make(map[key]decimal.Decimal)
	for _, t := range txns {
		k := key{t.Date.Format(monthLayout), t.Currency}
		sums[k] = sums[k].Add(t.Amount)
	}

	out := make([]MonthTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, MonthTotal{Month: k.month, Currency: k.currency, Total: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

type CategoryTotal struct {
	Category models.TransactionCategory `json:"category"`
	Currency models.Currency            `json:"currency"`
	Total    decimal.Decimal            `json:"total"`
}

type CategoryBreakdown struct {
	Currency models.Currency `json:"currency"`
	Spent    []CategoryTotal `json:"spent"`
	Income   []CategoryTotal `json:"income"`
}

// CategorySummary nets transactions per category and currency. The total is
// the negated sum so spending is positive; categories with a positive total
// are spent, the rest income. Lists are ordered by total descending.
func CategorySummary(txns []models.Transaction) []CategoryBreakdown {
	type key struct {
		category models.TransactionCategory
		currency models.Currency
	}
	sums := make(map[key]decimal.Decimal)
	for _, t := range txns {
		k := key{t.Type, t.Currency}
		sums[k] = sums[k].Sub(t.Amount)
	}

	byCurrency := make(map[models.Currency]*CategoryBreakdown)
	for k, v := range sums {
		b, ok := byCurrency[k.currency]
		if !ok {
			b = &CategoryBreakdown{Currency: k.currency}
			byCurrency[k.currency] = b
		}
		ct := CategoryTotal{Category: k.category, Currency: k.currency, Total: v}
		if v.IsPositive() {
			b.Spent = append(b.Spent, ct)
		} else {
			b.Income = append(b.Income, ct)
		}
	}

	out := make([]CategoryBreakdown, 0, len(byCurrency))
	for _, b := range byCurrency {
		sortCategoryTotals(b.Spent)
		sortCategoryTotals(b.Income)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

func sortCategoryTotals(list []CategoryTotal) {
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Total.Cmp(list[j].Total); c != 0 {
			return c > 0
		}
		return list[i].Category < list[j].Category
	})
}

type RetailerTotal struct {
	RetailerID *int64                     `json:"retailer_id"`
	Name       string                     `json:"name"`
	Type       models.RetailerType        `json:"type,omitempty"`
	Category   models.TransactionCategory `json:"category,omitempty"`
	Currency   models.Currency            `json:"currency"`
	MinusSum   decimal.Decimal            `json:"minus_sum"`
	PlusSum    decimal.Decimal            `json:"plus_sum"`
	Count      int                        `json:"count"`
}

// RetailerChart holds the spending per retailer, labels and data aligned.
type RetailerChart struct {
	Labels map[models.Currency][]string          `json:"labels"`
	Data   map[models.Currency][]decimal.Decimal `json:"data"`
}

// RetailerSummary splits each retailer's transactions into outgoing and
// incoming sums per currency, ordered by outgoing sum, biggest spend first.
// Transactions without a retailer are grouped under an empty name. Internal
// transfers are left out. The chart plots spending as positive amounts.
func RetailerSummary(txns []models.Transaction, retailers map[int64]models.Retailer) ([]RetailerTotal, RetailerChart) {
	type key struct {
		retailer int64
		currency models.Currency
	}
	totals := make(map[key]*RetailerTotal)
	for _, t := range txns {
		if t.IsInternal {
			continue
		}
		var id int64
		if t.RetailerID != nil {
			id = *t.RetailerID
		}
		k := key{id, t.Currency}
		rt, ok := totals[k]
		if !ok {
			rt = &RetailerTotal{Currency: t.Currency}
			if t.RetailerID != nil {
				rid := *t.RetailerID
				rt.RetailerID = &rid
				if r, ok := retailers[rid]; ok {
					rt.Name, rt.Type, rt.Category = r.Name, r.Type, r.Category
				} else if t.RetailerName != nil {
					rt.Name = *t.RetailerName
				}
			}
			totals[k] = rt
		}
		if t.Amount.IsNegative() {
			rt.MinusSum = rt.MinusSum.Add(t.Amount)
		} else {
			rt.PlusSum = rt.PlusSum.Add(t.Amount)
		}
		rt.Count++
	}

	out := make([]RetailerTotal, 0, len(totals))
	for _, rt := range totals {
		out = append(out, *rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].MinusSum.Cmp(out[j].MinusSum); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})

	chart := RetailerChart{
		Labels: make(map[models.Currency][]string),
		Data:   make(map[models.Currency][]decimal.Decimal),
	}
	for _, c := range models.AllCurrencies() {
		chart.Labels[c] = []string{}
		chart.Data[c] = []decimal.Decimal{}
	}
	for _, rt := range out {
		if rt.MinusSum.IsZero() {
			continue
		}
		chart.Labels[rt.Currency] = append(chart.Labels[rt.Currency], rt.Name)
		chart.Data[rt.Currency] = append(chart.Data[rt.Currency], rt.MinusSum.Neg())
	}
	return out, chart
}
