package ledger

import (
	"github.com/shopspring/decimal"

	"money-server/src/models"
)

// Check is one consistency test of a salary statement.
type Check struct {
	Name  string          `json:"name"`
	Diff  decimal.Decimal `json:"diff"`
	Valid bool            `json:"valid"`
}

func sumDetail(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// SalaryValidity compares a statement's detail lines with its totals, the
// totals with the net pay, and the net pay with the deposit transaction.
// Withheld and deduction totals are stored negative.
func SalaryValidity(s models.Salary, depositAmount decimal.Decimal) []Check {
	check := func(name string, diff decimal.Decimal) Check {
		return Check{Name: name, Diff: diff, Valid: nearlyZero(diff)}
	}
	summary := s.NetPay.Sub(s.GrossPay.Add(s.TotalAdjustment).Add(s.TotalWithheld).Add(s.TotalDeduction))

	return []Check{
		check("Gross", s.GrossPay.Sub(sumDetail(s.PayDetail))),
		check("Adjustment", s.TotalAdjustment.Sub(sumDetail(s.AdjustmentDetail))),
		check("Tax", s.TotalWithheld.Sub(sumDetail(s.TaxDetail))),
		check("Deduction", s.TotalDeduction.Sub(sumDetail(s.DeductionDetail))),
		check("Summary", summary),
		check("Transaction", depositAmount.Sub(s.NetPay)),
	}
}

// SalaryValid reports whether every check passes.
func SalaryValid(checks []Check) bool {
	for _, c := range checks {
		if !c.Valid {
			return false
		}
	}
	return true
}
