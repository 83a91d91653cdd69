package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type salaryRequest struct {
	Date             string                     `json:"date"`
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

func (req salaryRequest) toSalary() (models.Salary, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.Salary{}, invalid("invalid date %q", req.Date)
	}
	if req.TransactionID <= 0 {
		return models.Salary{}, invalid("transaction_id is required")
	}
	orEmpty := func(m map[string]decimal.Decimal) map[string]decimal.Decimal {
		if m == nil {
			return map[string]decimal.Decimal{}
		}
		return m
	}
	return models.Salary{
		Date:             date,
		GrossPay:         req.GrossPay,
		TotalAdjustment:  req.TotalAdjustment,
		TotalWithheld:    req.TotalWithheld,
		TotalDeduction:   req.TotalDeduction,
		NetPay:           req.NetPay,
		PayDetail:        orEmpty(req.PayDetail),
		AdjustmentDetail: orEmpty(req.AdjustmentDetail),
		TaxDetail:        orEmpty(req.TaxDetail),
		DeductionDetail:  orEmpty(req.DeductionDetail),
		TransactionID:    req.TransactionID,
	}, nil
}

// salaryChart plots gross and net pay per statement.
func salaryChart(salaries []models.Salary) map[string][]ledger.Point {
	gross := make([]ledger.Point, 0, len(salaries))
	net := make([]ledger.Point, 0, len(salaries))
	for _, s := range salaries {
		x := s.Date.Format("2006-01-02")
		gross = append(gross, ledger.Point{X: x, Y: s.GrossPay})
		net = append(net, ledger.Point{X: x, Y: s.NetPay})
	}
	return map[string][]ledger.Point{"gross_pay": gross, "net_pay": net}
}

// ListSalaries returns the statements of ?year, every year when absent,
// with the years on record, yearly totals and chart data.
func ListSalaries(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := 0
		if raw := r.URL.Query().Get("year"); raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, r, invalid("invalid year %q", raw), "list salaries")
				return
			}
			year = y
		}
		ctx := r.Context()
		salaries, err := db.ListSalaries(ctx, env.Pool, year)
		if err != nil {
			writeError(w, r, err, "list salaries")
			return
		}
		years, err := db.SalaryYears(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "list salary years")
			return
		}
		if salaries == nil {
			salaries = []models.Salary{}
		}
		if years == nil {
			years = []int{}
		}
		out := map[string]any{
			"salaries": salaries,
			"years":    years,
			"chart":    salaryChart(salaries),
		}
		if year != 0 {
			out["totals"] = ledger.SumSalaries(year, salaries)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetSalary returns the statement with its consistency checks against the
// deposit transaction.
func GetSalary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "salary_id")
		if err != nil {
			writeError(w, r, err, "get salary")
			return
		}
		ctx := r.Context()
		s, err := db.GetSalary(ctx, env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get salary")
			return
		}
		deposit, err := db.GetTransaction(ctx, env.Pool, s.TransactionID)
		if err != nil {
			writeError(w, r, err, "get salary transaction")
			return
		}
		checks := ledger.SalaryValidity(*s, deposit.Amount)
		writeJSON(w, http.StatusOK, map[string]any{
			"salary":      s,
			"transaction": deposit,
			"checks":      checks,
			"valid":       ledger.SalaryValid(checks),
		})
	}
}

func CreateSalary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req salaryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create salary")
			return
		}
		s, err := req.toSalary()
		if err != nil {
			writeError(w, r, err, "create salary")
			return
		}
		if _, err := db.GetTransaction(r.Context(), env.Pool, s.TransactionID); err != nil {
			writeError(w, r, invalid("unknown transaction %d", s.TransactionID), "create salary")
			return
		}
		created, err := db.CreateSalary(r.Context(), env.Pool, s)
		if err != nil {
			writeError(w, r, err, "create salary")
			return
		}
		logger.Log.Info().Int64("salary_id", created.ID).Str("date", req.Date).Msg("Created salary")
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateSalary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "salary_id")
		if err != nil {
			writeError(w, r, err, "update salary")
			return
		}
		var req salaryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update salary")
			return
		}
		s, err := req.toSalary()
		if err != nil {
			writeError(w, r, err, "update salary")
			return
		}
		s.ID = id
		updated, err := db.UpdateSalary(r.Context(), env.Pool, s)
		if err != nil {
			writeError(w, r, err, "update salary")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteSalary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "salary_id")
		if err != nil {
			writeError(w, r, err, "delete salary")
			return
		}
		if err := db.DeleteSalary(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete salary")
			return
		}
		writeMessage(w, "salary deleted")
	}
}
