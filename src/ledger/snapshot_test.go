package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func TestDailySnapshots(t *testing.T) {
	entries := []SnapshotEntry{
		{Date: day("2024-01-01"), Account: "A", Amount: dec("100")},
		{Date: day("2024-01-01"), Account: "B", Amount: dec("50")},
		{Date: day("2024-01-03"), Account: "B", Amount: dec("10")},
		{Date: day("2024-01-02"), Account: "A", Amount: dec("-100")},
	}

	snaps := DailySnapshots(models.KRW, entries)
	require.Len(t, snaps, 3)

	assert.Equal(t, day("2024-01-01"), snaps[0].Date)
	assert.Equal(t, "150", snaps[0].Amount.String())
	assert.Equal(t, map[string]string{"A": "100", "B": "50"}, strMap(snaps[0].Summary))

	assert.Equal(t, "50", snaps[1].Amount.String())
	assert.Equal(t, map[string]string{"B": "50"}, strMap(snaps[1].Summary))

	assert.Equal(t, "60", snaps[2].Amount.String())
	assert.Equal(t, models.KRW, snaps[2].Currency)

	for _, s := range snaps {
		sum := dec("0")
		for _, v := range s.Summary {
			sum = sum.Add(v)
		}
		assert.True(t, sum.Equal(s.Amount), "breakdown of %s", s.Date)
	}
}

func TestDailySnapshotsEmpty(t *testing.T) {
	assert.Nil(t, DailySnapshots(models.USD, nil))
}

func TestStockSnapshots(t *testing.T) {
	entries := []StockEntry{
		{Date: day("2024-01-01"), Stock: "AAPL", Shares: dec("10"), Price: dec("150")},
		{Date: day("2024-01-01"), Stock: "MSFT", Shares: dec("5"), Price: dec("300")},
		{Date: day("2024-01-02"), Stock: "AAPL", Shares: dec("-10"), Price: dec("160")},
		{Date: day("2024-01-03"), Stock: "MSFT", Shares: dec("0.333333333"), Price: dec("310")},
	}

	snaps, names := StockSnapshots(entries)
	assert.Equal(t, []string{"AAPL", "MSFT"}, names)
	require.Len(t, snaps, 3)

	assert.Equal(t, "3000", snaps[0].Total.String())
	assert.Equal(t, "1500", snaps[1].Total.String())
	assert.NotContains(t, snaps[1].Balance, "AAPL")
	assert.Equal(t, "5.33333", snaps[2].Balance["MSFT"].String())
	assert.Equal(t, "1653.33", snaps[2].Total.String())

	chart := StockChart(snaps)
	require.Len(t, chart, 3)
	assert.Equal(t, "2024-01-03", chart[2].X)
}
