package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"money-server/src/models"
)

type AccountYear struct {
	Account   models.Account  `json:"account"`
	MaxValue  decimal.Decimal `json:"max_value"`
	MaxDate   *time.Time      `json:"max_date"`
	LastValue decimal.Decimal `json:"last_value"`
	// Unbalanced counts transactions skipped because their balance is unset.
	Unbalanced int `json:"unbalanced"`
}

type CurrencyYear struct {
	Currency          models.Currency `json:"currency"`
	Accounts          []AccountYear   `json:"accounts"`
	TotalLastPositive decimal.Decimal `json:"total_last_value_positive"`
	TotalMaxPositive  decimal.Decimal `json:"total_max_value_positive"`
	Count             int             `json:"count"`
}

type InterestTax struct {
	Account       models.Account  `json:"account"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	AfterTax      decimal.Decimal `json:"after_tax"`
}

type BankInterest struct {
	RetailerID int64           `json:"retailer_id"`
	Retailer   string          `json:"retailer"`
	Total      decimal.Decimal `json:"total"`
}

type SalaryTotals struct {
	Count            int                        `json:"count"`
	GrossPay         decimal.Decimal            `json:"gross_pay"`
	NetPay           decimal.Decimal            `json:"net_pay"`
	Adjustment       decimal.Decimal            `json:"total_adjustment"`
	Withheld         decimal.Decimal            `json:"total_withheld"`
	Deduction        decimal.Decimal            `json:"total_deduction"`
	PayDetail        map[string]decimal.Decimal `json:"pay_detail"`
	AdjustmentDetail map[string]decimal.Decimal `json:"adjustment_detail"`
	TaxDetail        map[string]decimal.Decimal `json:"tax_detail"`
	DeductionDetail  map[string]decimal.Decimal `json:"deduction_detail"`
}

type YearSummary struct {
	Year         int            `json:"year"`
	Currencies   []CurrencyYear `json:"currencies"`
	InterestTax  []InterestTax  `json:"saving_interest_tax"`
	BankInterest []BankInterest `json:"bank_interest"`
	Salary       SalaryTotals   `json:"salary"`
}

// BuildYearSummary aggregates one calendar year. txns are the year's
// transactions of every account, accounts and retailers are lookups for the
// ids they reference.
func BuildYearSummary(year int, txns []models.Transaction, accounts map[int64]models.Account, retailers map[int64]models.Retailer, salaries []models.Salary) YearSummary {
	ordered := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Date.Year() == year {
			ordered = append(ordered, t)
		}
	}
	SortForBalance(ordered)

	summary := YearSummary{Year: year}
	summary.Currencies = accountYears(ordered, accounts)
	summary.InterestTax = interestTax(ordered, accounts)
	summary.BankInterest = bankInterest(ordered, retailers)
	summary.Salary = SumSalaries(year, salaries)
	return summary
}

func accountYears(ordered []models.Transaction, accounts map[int64]models.Account) []CurrencyYear {
	perAccount := make(map[int64]*AccountYear)
	for _, t := range ordered {
		ay, ok := perAccount[t.AccountID]
		if !ok {
			ay = &AccountYear{Account: accounts[t.AccountID]}
			perAccount[t.AccountID] = ay
		}
		if !t.Balance.Valid {
			ay.Unbalanced++
			continue
		}
		if ay.MaxValue.LessThan(t.Balance.Decimal) {
			ay.MaxValue = t.Balance.Decimal
			d := t.Date
			ay.MaxDate = &d
		}
		ay.LastValue = t.Balance.Decimal
	}

	byCurrency := make(map[models.Currency]*CurrencyYear)
	for _, c := range models.AllCurrencies() {
		byCurrency[c] = &CurrencyYear{Currency: c, Accounts: []AccountYear{}}
	}
	for _, ay := range perAccount {
		cy, ok := byCurrency[ay.Account.Currency]
		if !ok {
			cy = &CurrencyYear{Currency: ay.Account.Currency}
			byCurrency[ay.Account.Currency] = cy
		}
		cy.Accounts = append(cy.Accounts, *ay)
		if ay.LastValue.IsPositive() {
			cy.TotalLastPositive = cy.TotalLastPositive.Add(ay.LastValue)
		}
		if ay.MaxValue.IsPositive() {
			cy.TotalMaxPositive = cy.TotalMaxPositive.Add(ay.MaxValue)
		}
		cy.Count++
	}

	out := make([]CurrencyYear, 0, len(byCurrency))
	for _, cy := range byCurrency {
		// Accounts without a first transaction sort last, then by id.
		sort.Slice(cy.Accounts, func(i, j int) bool {
			a, b := cy.Accounts[i].Account, cy.Accounts[j].Account
			switch {
			case a.FirstTransaction == nil && b.FirstTransaction == nil:
				return a.ID < b.ID
			case a.FirstTransaction == nil:
				return false
			case b.FirstTransaction == nil:
				return true
			case !a.FirstTransaction.Equal(*b.FirstTransaction):
				return a.FirstTransaction.Before(*b.FirstTransaction)
			}
			return a.ID < b.ID
		})
		out = append(out, *cy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// interestTax covers installment savings, where retailer-tagged entries are
// bank interest (positive) and withheld tax (negative).
func interestTax(ordered []models.Transaction, accounts map[int64]models.Account) []InterestTax {
	perAccount := make(map[int64]*InterestTax)
	for _, t := range ordered {
		acc, ok := accounts[t.AccountID]
		if !ok || acc.Type != models.AccountInstallmentSaving || t.RetailerID == nil {
			continue
		}
		it, ok := perAccount[acc.ID]
		if !ok {
			it = &InterestTax{Account: acc}
			perAccount[acc.ID] = it
		}
		it.AfterTax = it.AfterTax.Add(t.Amount)
		if t.Amount.IsPositive() {
			it.TotalInterest = it.TotalInterest.Add(t.Amount)
		} else {
			it.TotalTax = it.TotalTax.Add(t.Amount)
		}
	}

	out := make([]InterestTax, 0, len(perAccount))
	for _, it := range perAccount {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account.Name != out[j].Account.Name {
			return out[i].Account.Name < out[j].Account.Name
		}
		return out[i].Account.ID < out[j].Account.ID
	})
	return out
}

func bankInterest(ordered []models.Transaction, retailers map[int64]models.Retailer) []BankInterest {
	perRetailer := make(map[int64]*BankInterest)
	for _, t := range ordered {
		if t.RetailerID == nil {
			continue
		}
		r, ok := retailers[*t.RetailerID]
		if !ok || r.Type != models.RetailerBank {
			continue
		}
		bi, ok := perRetailer[r.ID]
		if !ok {
			bi = &BankInterest{RetailerID: r.ID, Retailer: r.Name}
			perRetailer[r.ID] = bi
		}
		bi.Total = bi.Total.Add(t.Amount)
	}

	out := make([]BankInterest, 0, len(perRetailer))
	for _, bi := range perRetailer {
		out = append(out, *bi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RetailerID < out[j].RetailerID })
	return out
}

// SumSalaries totals the statements dated in year, detail lines by label.
func SumSalaries(year int, salaries []models.Salary) SalaryTotals {
	st := SalaryTotals{
		PayDetail:        map[string]decimal.Decimal{},
		AdjustmentDetail: map[string]decimal.Decimal{},
		TaxDetail:        map[string]decimal.Decimal{},
		DeductionDetail:  map[string]decimal.Decimal{},
	}
	for _, s := range salaries {
		if s.Date.Year() != year {
			continue
		}
		st.Count++
		st.GrossPay = st.GrossPay.Add(s.GrossPay)
		st.NetPay = st.NetPay.Add(s.NetPay)
		st.Adjustment = st.Adjustment.Add(s.TotalAdjustment)
		st.Withheld = st.Withheld.Add(s.TotalWithheld)
		st.Deduction = st.Deduction.Add(s.TotalDeduction)
		addDetail(st.PayDetail, s.PayDetail)
		addDetail(st.AdjustmentDetail, s.AdjustmentDetail)
		addDetail(st.TaxDetail, s.TaxDetail)
		addDetail(st.DeductionDetail, s.DeductionDetail)
	}
	return st
}

func addDetail(dst, src map[string]decimal.Decimal) {
	for k, v := range src {
		dst[k] = dst[k].Add(v)
	}
}
