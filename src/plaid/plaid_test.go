package plaid

import (
	"testing"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func plaidTransaction(id, date, name, merchant string, amount float64) plaid.Transaction {
	var t plaid.Transaction
	t.SetTransactionId(id)
	t.SetDate(date)
	t.SetName(name)
	t.SetAmount(amount)
	if merchant != "" {
		t.SetMerchantName(merchant)
	}
	return t
}

func TestToTransaction(t *testing.T) {
	tests := []struct {
		name   string
		in     plaid.Transaction
		amount string
		note   string
	}{
		{"outflow", plaidTransaction("tx-1", "2024-04-03", "SQ *BLUE BOTTLE", "Blue Bottle", 6.75), "-6.75", "Blue Bottle"},
		{"refund", plaidTransaction("tx-2", "2024-04-04", "AMAZON REFUND", "", -25), "25", "AMAZON REFUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTransaction(tt.in, 9)
			require.NoError(t, err)
			assert.Equal(t, int64(9), got.AccountID)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.amount)), got.Amount.String())
			require.NotNil(t, got.Note)
			assert.Equal(t, tt.note, *got.Note)
			require.NotNil(t, got.ExternalID)
			assert.Equal(t, tt.in.GetTransactionId(), *got.ExternalID)
			assert.Equal(t, models.CategoryEtc, got.Type)
			assert.False(t, got.Reviewed)
		})
	}
}

func TestToTransactionBadDate(t *testing.T) {
	_, err := ToTransaction(plaidTransaction("tx-3", "04/03/2024", "X", "", 1), 1)
	assert.ErrorContains(t, err, "invalid date")
}

func TestNewPlaidClientEnvironment(t *testing.T) {
	_, err := NewPlaidClient("id", "secret", "sandbox")
	assert.NoError(t, err)
	_, err = NewPlaidClient("id", "secret", "development")
	assert.Error(t, err)
}
