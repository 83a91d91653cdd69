package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Salary is one pay statement. Detail maps hold line items by label; their
// sums should match the corresponding totals.
type Salary struct {
	ID               int64                      `json:"id"`
	Date             time.Time                  `json:"date"`
	GrossPay         decimal.Decimal            `json:"gross_pay"`
	TotalAdjustment  decimal.Decimal            `json:"total_adjustment"`
	TotalWithheld    decimal.Decimal            `json:"total_withheld"`
	TotalDeduction   decimal.Decimal            `json:"total_deduction"`
	NetPay           decimal.Decimal            `json:"net_pay"`
	PayDetail        map[string]decimal.Decimal `json:"pay_detail"`
	AdjustmentDetail map[string]decimal.Decimal `json:"adjustment_detail"`
	TaxDetail        map[string]decimal.Decimal `json:"tax_detail"`
	DeductionDetail  map[string]decimal.Decimal `json:"deduction_detail"`
	TransactionID    int64                      `json:"transaction_id"`
}
