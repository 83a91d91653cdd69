package ledger

import (
	"github.com/shopspring/decimal"

	"money-server/src/models"
)

const dateLayout = "2006-01-02"

// Point is one sample of a time series, x formatted as YYYY-MM-DD.
type Point struct {
	X string          `json:"x"`
	Y decimal.Decimal `json:"y"`
}

type ChartOptions struct {
	// Recalculate plots the running sum instead of the stored balances.
	Recalculate bool
	Reverse     bool
	// Above SampleThreshold points only every SampleRatio-th point is kept.
	SampleThreshold int
	SampleRatio     int
}

// TransactionChart turns date-ordered transactions into a balance series.
func TransactionChart(txns []models.Transaction, opt ChartOptions) []Point {
	sampling := opt.SampleThreshold > 0 && opt.SampleRatio > 0 && len(txns) > opt.SampleThreshold

	out := make([]Point, 0, len(txns))
	total := decimal.Zero
	for i, t := range txns {
		total = total.Add(t.Amount)
		if sampling && (i+1)%opt.SampleRatio != 0 {
			continue
		}
		y := t.Balance.Decimal
		if opt.Recalculate {
			y = total
		}
		out = append(out, Point{X: t.Date.Format(dateLayout), Y: y})
	}

	if opt.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// SnapshotChart plots date-ordered snapshots of one currency.
func SnapshotChart(snaps []models.AmountSnapshot, currency models.Currency) []Point {
	var out []Point
	for _, s := range snaps {
		if s.Currency != currency {
			continue
		}
		out = append(out, Point{X: s.Date.Format(dateLayout), Y: s.Amount})
	}
	return out
}

// StockCurrency is the currency of the brokerage accounts whose holdings
// are valued.
const StockCurrency = models.USD

// PortfolioChart adds the valued holdings to the StockCurrency cash series.
func PortfolioChart(snaps []models.AmountSnapshot, stocks []StockSnapshot) []Point {
	return MergeCharts(SnapshotChart(snaps, StockCurrency), StockChart(stocks))
}

// StockChart plots the valued holdings of each stock snapshot.
func StockChart(snaps []StockSnapshot) []Point {
	out := make([]Point, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, Point{X: s.Date.Format(dateLayout), Y: s.Total})
	}
	return out
}

// MergeCharts adds two x-ordered series. Each series keeps its last value
// until its next point, so a gap in one series does not drop its total.
// Points sharing an x collapse into one.
func MergeCharts(a, b []Point) []Point {
	out := make([]Point, 0, len(a)+len(b))
	var curA, curB decimal.Decimal
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var x string
		switch {
		case j >= len(b) || (i < len(a) && a[i].X < b[j].X):
			x = a[i].X
			curA = a[i].Y
			i++
		case i >= len(a) || b[j].X < a[i].X:
			x = b[j].X
			curB = b[j].Y
			j++
		default:
			x = a[i].X
			curA = a[i].Y
			curB = b[j].Y
			i++
			j++
		}
		out = append(out, Point{X: x, Y: curA.Add(curB)})
	}
	return out
}

