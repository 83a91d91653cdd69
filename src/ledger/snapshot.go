package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"money-server/src/models"
)

// SnapshotEntry is one transaction as seen by the daily snapshot job.
type SnapshotEntry struct {
	Date    time.Time
	Account string
	Amount  decimal.Decimal
}

// DailySnapshots replays entries of a single currency in date order and
// returns the closing total of every day that has activity. Summary holds
// the per-account closing values; accounts at exactly zero are left out.
func DailySnapshots(currency models.Currency, entries []SnapshotEntry) []models.AmountSnapshot {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]SnapshotEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var out []models.AmountSnapshot
	history := make(map[string]decimal.Decimal)
	total := decimal.Zero
	prev := sorted[0].Date

	emit := func(date time.Time) {
		summary := make(map[string]decimal.Decimal, len(history))
		for k, v := range history {
			summary[k] = v
		}
		out = append(out, models.AmountSnapshot{
			Date:     date,
			Currency: currency,
			Amount:   total,
			Summary:  summary,
		})
	}

	for _, e := range sorted {
		if !e.Date.Equal(prev) {
			emit(prev)
			prev = e.Date
		}
		v := history[e.Account].Add(e.Amount)
		if v.IsZero() {
			delete(history, e.Account)
		} else {
			history[e.Account] = v
		}
		total = total.Add(e.Amount)
	}
	emit(prev)

	return out
}

// StockEntry is one stock trade as seen by the holdings replay.
type StockEntry struct {
	Date   time.Time
	Stock  string
	Shares decimal.Decimal
	Price  decimal.Decimal
}

type StockSnapshot struct {
	Date    time.Time                  `json:"date"`
	Balance map[string]decimal.Decimal `json:"balance"`
	Price   map[string]decimal.Decimal `json:"price"`
	Total   decimal.Decimal            `json:"total"`
}

var shareRounding int32 = 5

// StockSnapshots replays trades ordered by date then shares and values the
// open positions at the last traded price at the end of every trading day.
// It also returns the sorted names of every stock seen.
func StockSnapshots(entries []StockEntry) ([]StockSnapshot, []string) {
	if len(entries) == 0 {
		return nil, nil
	}
	sorted := make([]StockEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Shares.LessThan(b.Shares)
	})

	names := make(map[string]struct{})
	balance := make(map[string]decimal.Decimal)
	price := make(map[string]decimal.Decimal)
	var out []StockSnapshot
	prev := sorted[0].Date

	emit := func(date time.Time) {
		total := decimal.Zero
		b := make(map[string]decimal.Decimal, len(balance))
		p := make(map[string]decimal.Decimal, len(price))
		for name, shares := range balance {
			total = total.Add(shares.Mul(price[name]))
			b[name] = shares
			p[name] = price[name]
		}
		out = append(out, StockSnapshot{Date: date, Balance: b, Price: p, Total: total.Round(2)})
	}

	for _, e := range sorted {
		names[e.Stock] = struct{}{}
		if !e.Date.Equal(prev) {
			emit(prev)
			prev = e.Date
		}
		shares := balance[e.Stock].Add(e.Shares).Round(shareRounding)
		if shares.IsZero() {
			delete(balance, e.Stock)
			delete(price, e.Stock)
		} else {
			balance[e.Stock] = shares
			price[e.Stock] = e.Price
		}
	}
	emit(prev)

	list := make([]string, 0, len(names))
	for n := range names {
		list = append(list, n)
	}
	sort.Strings(list)
	return out, list
}
