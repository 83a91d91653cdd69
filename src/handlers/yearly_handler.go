package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
)

// TransactionYears lists the years with transactions, newest first.
func TransactionYears(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := db.TransactionYears(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "list years")
			return
		}
		if years == nil {
			years = []int{}
		}
		writeJSON(w, http.StatusOK, years)
	}
}

// YearSummary aggregates balances, interest and salary for one year.
func YearSummary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "year")
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1900 || year > time.Now().Year()+1 {
			writeError(w, r, invalid("invalid year %q", raw), "summarize year")
			return
		}
		ctx := r.Context()

		var f db.TransactionFilter
		f.Year = &year
		f.Ascending = true
		txns, err := db.AllTransactions(ctx, env.Pool, f)
		if err != nil {
			writeError(w, r, err, "summarize year")
			return
		}
		accounts, err := accountsByID(env, r)
		if err != nil {
			writeError(w, r, err, "summarize year")
			return
		}
		retailers, err := db.RetailerMap(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "summarize year")
			return
		}
		salaries, err := db.ListSalaries(ctx, env.Pool, year)
		if err != nil {
			writeError(w, r, err, "summarize year")
			return
		}
		writeJSON(w, http.StatusOK, ledger.BuildYearSummary(year, txns, accounts, retailers, salaries))
	}
}
