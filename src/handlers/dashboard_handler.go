package handlers

import (
	"net/http"
	"time"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/models"
)

type dashboard struct {
	Accounts         []models.AccountOverview `json:"accounts"`
	Currencies       []ledger.CurrencyTotal   `json:"currencies"`
	Unreviewed       int                      `json:"unreviewed"`
	UnlinkedInternal int                      `json:"unlinked_internal"`
	MissingDetail    int                      `json:"missing_detail"`
}

const dashboardKey = "summary"

// Dashboard returns active accounts with per-currency totals compared to the
// end of the previous month and the sizes of the review queues.
func Dashboard(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v, ok := env.Cache.Get(store.DashboardCache, dashboardKey); ok {
			if d, ok := v.(dashboard); ok {
				writeJSON(w, http.StatusOK, d)
				return
			}
		}

		ctx := r.Context()
		overviews, err := db.ListAccountOverviews(ctx, env.Pool, true)
		if err != nil {
			writeError(w, r, err, "list accounts")
			return
		}
		prev, err := db.PrevMonthBalances(ctx, env.Pool, time.Now())
		if err != nil {
			writeError(w, r, err, "load previous balances")
			return
		}
		accounts := make([]models.Account, len(overviews))
		for i, o := range overviews {
			accounts[i] = o.Account
		}

		d := dashboard{
			Accounts:   overviews,
			Currencies: ledger.CurrencySummary(accounts, prev),
		}
		for _, q := range []struct {
			filter db.TransactionFilter
			dst    *int
		}{
			{unreviewedFilter(), &d.Unreviewed},
			{unlinkedInternalFilter(), &d.UnlinkedInternal},
			{missingDetailFilter(), &d.MissingDetail},
		} {
			if *q.dst, err = db.CountTransactions(ctx, env.Pool, q.filter); err != nil {
				writeError(w, r, err, "count review queue")
				return
			}
		}

		env.Cache.Set(store.DashboardCache, dashboardKey, d)
		writeJSON(w, http.StatusOK, d)
	}
}
