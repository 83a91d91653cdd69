package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"money-server/src/models"
)

func points(ps []Point) [][2]string {
	out := make([][2]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, [2]string{p.X, p.Y.String()})
	}
	return out
}

func chartTxns() []models.Transaction {
	var txns []models.Transaction
	for i, a := range []string{"10", "20", "-5", "40", "1"} {
		txns = append(txns, models.Transaction{
			ID:      int64(i + 1),
			Date:    day("2024-01-01").AddDate(0, 0, i),
			Amount:  dec(a),
			Balance: decimal.NullDecimal{Decimal: dec("1000"), Valid: true},
		})
	}
	return txns
}

func TestTransactionChart(t *testing.T) {
	tests := []struct {
		name string
		opt  ChartOptions
		want [][2]string
	}{
		{
			name: "stored balance",
			opt:  ChartOptions{SampleThreshold: 1000, SampleRatio: 50},
			want: [][2]string{
				{"2024-01-01", "1000"}, {"2024-01-02", "1000"}, {"2024-01-03", "1000"},
				{"2024-01-04", "1000"}, {"2024-01-05", "1000"},
			},
		},
		{
			name: "recalculated and sampled",
			opt:  ChartOptions{Recalculate: true, SampleThreshold: 3, SampleRatio: 2},
			want: [][2]string{{"2024-01-02", "30"}, {"2024-01-04", "65"}},
		},
		{
			name: "reversed",
			opt:  ChartOptions{Recalculate: true, Reverse: true, SampleThreshold: 3, SampleRatio: 2},
			want: [][2]string{{"2024-01-04", "65"}, {"2024-01-02", "30"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, points(TransactionChart(chartTxns(), tt.opt)))
		})
	}
}

func TestSnapshotChart(t *testing.T) {
	snaps := []models.AmountSnapshot{
		{Date: day("2024-01-01"), Currency: models.KRW, Amount: dec("5")},
		{Date: day("2024-01-01"), Currency: models.USD, Amount: dec("7")},
		{Date: day("2024-01-02"), Currency: models.KRW, Amount: dec("6")},
	}
	assert.Equal(t, [][2]string{{"2024-01-01", "5"}, {"2024-01-02", "6"}}, points(SnapshotChart(snaps, models.KRW)))
}

func TestMergeCharts(t *testing.T) {
	a := []Point{{X: "2024-01-01", Y: dec("1")}, {X: "2024-01-03", Y: dec("3")}}
	b := []Point{{X: "2024-01-02", Y: dec("10")}, {X: "2024-01-03", Y: dec("20")}, {X: "2024-01-04", Y: dec("30")}}

	want := [][2]string{
		{"2024-01-01", "1"},
		{"2024-01-02", "11"},
		{"2024-01-03", "23"},
		{"2024-01-04", "33"},
	}
	assert.Equal(t, want, points(MergeCharts(a, b)))
	assert.Equal(t, want, points(MergeCharts(b, a)))
	assert.Empty(t, MergeCharts(nil, nil))
}

func TestPortfolioChart(t *testing.T) {
	snaps := []models.AmountSnapshot{
		{Date: day("2024-01-01"), Currency: models.KRW, Amount: dec("1000000")},
		{Date: day("2024-01-01"), Currency: models.USD, Amount: dec("500")},
		{Date: day("2024-01-03"), Currency: models.USD, Amount: dec("400")},
	}
	stocks := []StockSnapshot{
		{Date: day("2024-01-02"), Total: dec("1000")},
		{Date: day("2024-01-03"), Total: dec("1100")},
	}
	want := [][2]string{
		{"2024-01-01", "500"},
		{"2024-01-02", "1500"},
		{"2024-01-03", "1500"},
	}
	assert.Equal(t, want, points(PortfolioChart(snaps, stocks)))
	assert.Equal(t, models.USD, StockCurrency)
}
