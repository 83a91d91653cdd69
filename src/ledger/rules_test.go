package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func cond(t *testing.T, raw string) models.Condition {
	t.Helper()
	var c models.Condition
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return c
}

func TestEvaluate(t *testing.T) {
	subj := RuleSubject{
		Note:     `{"retailer": "GS25 Gangnam", "memo": "card"}`,
		Retailer: "GS25",
		Amount:   -4500,
		Account:  "Woori Checking",
		Currency: "KRW",
	}

	tests := []struct {
		name string
		cond string
		want bool
	}{
		{"equals ignores case", `{"field": "retailer", "op": "equals", "value": "gs25"}`, true},
		{"equals number", `{"field": "amount", "op": "equals", "value": -4500}`, true},
		{"contains", `{"field": "account", "op": "contains", "value": "checking"}`, true},
		{"lt", `{"field": "amount", "op": "lt", "value": 0}`, true},
		{"gte", `{"field": "amount", "op": "gte", "value": 0}`, false},
		{"in", `{"field": "currency", "op": "in", "value": ["USD", "krw"]}`, true},
		{"note key", `{"field": "note.retailer", "op": "contains", "value": "gangnam"}`, true},
		{"missing note key", `{"field": "note.branch", "op": "equals", "value": "x"}`, false},
		{"unknown field", `{"field": "merchant", "op": "equals", "value": "GS25"}`, false},
		{"type mismatch", `{"field": "amount", "op": "contains", "value": "45"}`, false},
		{"and", `{"and": [{"field": "retailer", "op": "equals", "value": "GS25"}, {"field": "amount", "op": "gt", "value": -1000}]}`, false},
		{"or", `{"or": [{"field": "retailer", "op": "equals", "value": "CU"}, {"field": "amount", "op": "lte", "value": -4500}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(cond(t, tt.cond), subj))
		})
	}
}

func TestValidateCondition(t *testing.T) {
	assert.NoError(t, ValidateCondition(cond(t, `{"and": [{"field": "note", "op": "contains", "value": "x"}, {"field": "note.retailer", "op": "in", "value": ["a"]}]}`)))
	assert.Error(t, ValidateCondition(cond(t, `{"field": "name", "op": "equals", "value": "x"}`)))
	assert.Error(t, ValidateCondition(cond(t, `{"or": [{"field": "note", "op": "matches", "value": "x"}]}`)))
}

func TestApplyRules(t *testing.T) {
	internal := true
	rules := []models.TransactionRule{
		{ID: 1, Conditions: json.RawMessage(`{"field": "retailer", "op": "equals", "value": "Mart"}`), Category: models.CategoryGrocery, MarkReview: true},
		{ID: 2, Conditions: json.RawMessage(`not json`), Category: models.CategoryEtc},
		{ID: 3, Conditions: json.RawMessage(`{"field": "note", "op": "contains", "value": "transfer"}`), Category: models.CategoryTransfer, IsInternal: &internal},
		{ID: 4, Conditions: json.RawMessage(`{"field": "amount", "op": "lt", "value": 0}`), Category: models.CategoryEtc},
	}
	txns := []models.Transaction{
		{ID: 10, RetailerName: str("Mart"), Amount: dec("-20"), Type: models.CategoryEtc},
		{ID: 11, Note: str("Transfer to savings"), Amount: dec("-500"), Type: models.CategoryEtc},
		{ID: 12, Amount: dec("-5"), Type: models.CategoryEtc},
		{ID: 13, Amount: dec("5"), Type: models.CategoryEtc},
	}

	changes := ApplyRules(rules, txns)
	require.Len(t, changes, 2)

	assert.Equal(t, int64(10), changes[0].TransactionID)
	assert.Equal(t, int64(1), changes[0].RuleID)
	assert.Equal(t, models.CategoryGrocery, changes[0].Category)
	assert.True(t, changes[0].Reviewed)

	assert.Equal(t, int64(11), changes[1].TransactionID)
	assert.Equal(t, models.CategoryTransfer, changes[1].Category)
	require.NotNil(t, changes[1].IsInternal)
	assert.True(t, *changes[1].IsInternal)
}
