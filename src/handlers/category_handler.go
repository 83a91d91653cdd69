package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/models"
)

// monthFilter selects the month given as ?month=YYYY-MM, the current month
// when absent.
func monthFilter(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return ledger.MonthStart(time.Now()), nil
	}
	m, err := ledger.ParseMonth(raw)
	if err != nil {
		return time.Time{}, invalid("%v", err)
	}
	return m, nil
}

// CategorySummary splits one month of external transactions into spending
// and income per category.
func CategorySummary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := monthFilter(r)
		if err != nil {
			writeError(w, r, err, "summarize categories")
			return
		}
		internal := false
		var f db.TransactionFilter
		f.Month = &month
		f.IsInternal = &internal
		txns, err := db.AllTransactions(r.Context(), env.Pool, f)
		if err != nil {
			writeError(w, r, err, "summarize categories")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"month":      month.Format("2006-01"),
			"categories": ledger.CategorySummary(txns),
		})
	}
}

type categoryDetail struct {
	Category     models.TransactionCategory       `json:"category"`
	Months       []ledger.Month                   `json:"months"`
	Totals       []ledger.MonthTotal              `json:"monthly_totals"`
	Transactions pageResponse[models.Transaction] `json:"transactions"`
}

// CategoryDetail returns monthly totals over the whole history of a category
// and one page of its transactions, optionally limited to ?month.
// categoryFilters returns the filter for the whole history of category c and
// the one for the listed page, narrowed to ?month. Internal transfers are
// excluded from both.
func categoryFilters(r *http.Request, c models.TransactionCategory) (all, listed db.TransactionFilter, err error) {
	internal := false
	all.Category = &c
	all.IsInternal = &internal
	all.Ascending = true

	listed.Category = &c
	listed.IsInternal = &internal
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := ledger.ParseMonth(raw)
		if err != nil {
			return all, listed, invalid("%v", err)
		}
		listed.Month = &m
	}
	return all, listed, nil
}

func CategoryDetail(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := models.TransactionCategory(chi.URLParam(r, "category"))
		if !c.Valid() {
			writeError(w, r, invalid("invalid category %q", c), "get category")
			return
		}
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "get category")
			return
		}
		ctx := r.Context()

		all, listed, err := categoryFilters(r, c)
		if err != nil {
			writeError(w, r, err, "get category")
			return
		}
		history, err := db.AllTransactions(ctx, env.Pool, all)
		if err != nil {
			writeError(w, r, err, "get category")
			return
		}
		out := categoryDetail{Category: c, Totals: ledger.MonthlyTotals(history), Months: []ledger.Month{}}
		if len(history) > 0 {
			out.Months = ledger.MonthList(history[0].Date, history[len(history)-1].Date)
		}

		txns, total, err := db.ListTransactions(ctx, env.Pool, listed, page)
		if err != nil {
			writeError(w, r, err, "list category transactions")
			return
		}
		out.Transactions = paged(txns, total, page)
		writeJSON(w, http.StatusOK, out)
	}
}

// ListCategories returns every category with whether it is itemized.
func ListCategories(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type category struct {
			Name           models.TransactionCategory `json:"name"`
			RequiresDetail bool                       `json:"requires_detail"`
		}
		all := models.AllTransactionCategories()
		out := make([]category, len(all))
		for i, c := range all {
			out[i] = category{c, c.RequiresDetail()}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
