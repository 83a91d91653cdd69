package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

const profilesYAML = `
profiles:
  - name: kakao
    date_column: 0
    amount_column: 2
    balance_column: 3
    note_columns:
      type: 1
      note: 4
      retailer: 5
  - name: kb
    skip_rows: 1
    date_column: 0
    withdraw_column: 4
    deposit_column: 5
    note_columns:
      retailer: 2
  - name: card
    delimiter: ","
    date_column: 0
    date_layout: "01-02-2006"
    amount_column: 1
    negate: true
`

func loadTestProfiles(t *testing.T) Profiles {
	t.Helper()
	ps, err := ParseProfiles(strings.NewReader(profilesYAML))
	require.NoError(t, err)
	return ps
}

func TestParseProfiles(t *testing.T) {
	ps := loadTestProfiles(t)
	assert.Equal(t, []string{"card", "kakao", "kb"}, ps.Names())

	kb, err := ps.Get("kb")
	require.NoError(t, err)
	assert.Equal(t, '\t', kb.delimiter())
	assert.Equal(t, 1, kb.SkipRows)

	_, err = ps.Get("missing")
	assert.Error(t, err)
}

func TestParseProfilesInvalid(t *testing.T) {
	tests := map[string]string{
		"no name":      "profiles:\n  - amount_column: 1\n",
		"no amount":    "profiles:\n  - name: x\n",
		"both amounts": "profiles:\n  - name: x\n    amount_column: 1\n    withdraw_column: 2\n    deposit_column: 3\n",
		"duplicate":    "profiles:\n  - name: x\n    amount_column: 1\n  - name: x\n    amount_column: 1\n",
		"delimiter":    "profiles:\n  - name: x\n    amount_column: 1\n    delimiter: ';;'\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProfiles(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	ps, err := LoadProfiles(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestLoadProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profilesYAML), 0o600))
	ps, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Len(t, ps, 3)
}

func TestParseSingleAmountColumn(t *testing.T) {
	input := "2024.05.01 13:22:10\tTransfer\t-1,500\t98,500\tlunch\t Cafe \n" +
		"\n" +
		"2024.05.02 09:00:00\tDeposit\t100,000\t198,500\t\tPayroll\n"

	rows, err := Parse(strings.NewReader(input), loadTestProfiles(t)["kakao"])
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "-1500", rows[0].Amount.String())
	assert.True(t, rows[0].Balance.Valid)
	assert.Equal(t, "98500", rows[0].Balance.Decimal.String())
	assert.Equal(t, `{"balance":"98500","note":"lunch","retailer":"Cafe","type":"Transfer"}`, rows[0].Note)

	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "100000", rows[1].Amount.String())
}

func TestParseWithdrawDeposit(t *testing.T) {
	input := "date\ttype\tretailer\tx\twithdraw\tdeposit\n" +
		"2024-01-03\tcard\tMart\t\t12,000\t0\n" +
		"2024-01-04\tpay\tCompany\t\t0\t3,000,000\n"

	rows, err := Parse(strings.NewReader(input), loadTestProfiles(t)["kb"])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "-12000", rows[0].Amount.String())
	assert.Equal(t, "3000000", rows[1].Amount.String())
	assert.False(t, rows[1].Balance.Valid)
	assert.Equal(t, `{"retailer":"Company"}`, rows[1].Note)
}

func TestParseNegateAndLayout(t *testing.T) {
	rows, err := Parse(strings.NewReader("01-15-2024,42.50\n01-16-2024,-10\n"), loadTestProfiles(t)["card"])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "-42.5", rows[0].Amount.String())
	assert.Equal(t, "10", rows[1].Amount.String())
	assert.Empty(t, rows[0].Note)
}

func TestParseDate(t *testing.T) {
	may1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		value  string
		layout string
	}{
		{"2024-05-01", "2006-01-02"},
		{"2024.05.01", "2006-01-02"},
		{"2024.05.01 13:22:10", "2006-01-02"},
		{"2024.05.01", "2006.01.02"},
		{"2024.05.01 13:22", "2006.01.02"},
		{"05/01/2024", "01/02/2006"},
		{"05/01/2024 08:15:00", "01/02/2006"},
		{"01.05.2024", "02.01.2006"},
	}
	for _, tt := range tests {
		t.Run(tt.value+" "+tt.layout, func(t *testing.T) {
			got, err := parseDate(tt.value, tt.layout)
			require.NoError(t, err)
			assert.Equal(t, may1, got)
		})
	}

	_, err := parseDate("2024/05/01", "2006.01.02")
	assert.ErrorContains(t, err, "invalid date")
}

func TestParseBundledProfiles(t *testing.T) {
	ps, err := LoadProfiles(filepath.Join("..", "..", "import_profiles.yaml"))
	require.NoError(t, err)
	require.Equal(t, []string{"chase", "shinhan"}, ps.Names())

	shinhan := "date\ttime\tmemo\twithdraw\tdeposit\tbalance\tbranch\n" +
		"2024.05.01 13:22:10\tx\tlunch\t12,000\t0\t88,000\tGangnam\n" +
		"2024.05.02\tx\tsalary\t0\t3,000,000\t3,088,000\tHQ\n"
	rows, err := Parse(strings.NewReader(shinhan), ps["shinhan"])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "-12000", rows[0].Amount.String())
	assert.Equal(t, "88000", rows[0].Balance.Decimal.String())
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), rows[1].Date)
	assert.Equal(t, "3000000", rows[1].Amount.String())

	chase := "Type,Posting Date,Description,Amount\n" +
		"Sale,05/01/2024,BLUE BOTTLE,-6.75\n"
	rows, err = Parse(strings.NewReader(chase), ps["chase"])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "-6.75", rows[0].Amount.String())
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	input := "2024-01-01,10\nnot-a-date,5\n2024-01-03,abc\n2024-01-04,0\n"
	p := Profile{Name: "t", Delimiter: ",", AmountColumn: intPtr(1)}

	rows, err := Parse(strings.NewReader(input), p)
	assert.Nil(t, rows)

	var pe ParseErrors
	require.True(t, errors.As(err, &pe))
	require.Len(t, pe, 3)
	assert.Equal(t, 2, pe[0].Line)
	assert.Equal(t, 3, pe[1].Line)
	assert.Equal(t, 4, pe[2].Line)
	assert.ErrorIs(t, pe[2], errEmptyAmount)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseMissingColumn(t *testing.T) {
	p := Profile{Name: "t", Delimiter: ",", AmountColumn: intPtr(3)}
	_, err := Parse(strings.NewReader("2024-01-01,10\n"), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column 3")
}

func TestToTransaction(t *testing.T) {
	row := Row{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: dec("-5"), Note: `{"a":"b"}`}
	tx := ToTransaction(row, 7, "batch-1")
	assert.Equal(t, int64(7), tx.AccountID)
	assert.Equal(t, models.CategoryEtc, tx.Type)
	require.NotNil(t, tx.ImportBatch)
	assert.Equal(t, "batch-1", *tx.ImportBatch)
	require.NotNil(t, tx.Note)
	assert.False(t, tx.Reviewed)

	assert.Nil(t, ToTransaction(Row{Amount: dec("1")}, 7, "b").Note)
}
