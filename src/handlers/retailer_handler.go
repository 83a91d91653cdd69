package handlers

import (
	"net/http"
	"strconv"
	"strings"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type retailerRequest struct {
	Name     string                     `json:"name"`
	Type     models.RetailerType        `json:"type"`
	Category models.TransactionCategory `json:"category"`
}

func (req retailerRequest) toRetailer() (models.Retailer, error) {
	rt := models.Retailer{
		Name:     strings.TrimSpace(req.Name),
		Type:     req.Type,
		Category: req.Category,
	}
	if rt.Type == "" {
		rt.Type = models.RetailerEtc
	}
	if rt.Category == "" {
		rt.Category = models.CategoryEtc
	}
	switch {
	case rt.Name == "":
		return rt, invalid("retailer name is required")
	case !rt.Type.Valid():
		return rt, invalid("invalid retailer type %q", rt.Type)
	case !rt.Category.Valid():
		return rt, invalid("invalid category %q", rt.Category)
	}
	return rt, nil
}

// ListRetailers pages retailers by name, optionally matching ?search.
func ListRetailers(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list retailers")
			return
		}
		list, total, err := db.ListRetailers(r.Context(), env.Pool, strings.TrimSpace(r.URL.Query().Get("search")), page)
		if err != nil {
			writeError(w, r, err, "list retailers")
			return
		}
		writeJSON(w, http.StatusOK, paged(list, total, page))
	}
}

func CreateRetailer(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req retailerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create retailer")
			return
		}
		rt, err := req.toRetailer()
		if err != nil {
			writeError(w, r, err, "create retailer")
			return
		}
		created, err := db.CreateRetailer(r.Context(), env.Pool, rt)
		if err != nil {
			writeError(w, r, err, "create retailer")
			return
		}
		env.Cache.Invalidate(store.RetailerCache)
		writeJSON(w, http.StatusCreated, created)
	}
}

type retailerDetail struct {
	*models.Retailer
	Totals       []ledger.MonthTotal              `json:"monthly_totals"`
	Transactions pageResponse[models.Transaction] `json:"transactions"`
}

// GetRetailer returns the retailer with monthly totals over all of its
// transactions and one page of them, newest first.
func GetRetailer(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "retailer_id")
		if err != nil {
			writeError(w, r, err, "get retailer")
			return
		}
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "get retailer")
			return
		}
		ctx := r.Context()

		rt, ok := env.Cache.Retailer(id)
		if !ok {
			if rt, err = db.GetRetailer(ctx, env.Pool, id); err != nil {
				writeError(w, r, err, "get retailer")
				return
			}
			env.Cache.SetRetailer(rt)
		}

		var f db.TransactionFilter
		f.RetailerID = &id
		all, err := db.AllTransactions(ctx, env.Pool, f)
		if err != nil {
			writeError(w, r, err, "get retailer")
			return
		}
		txns, total, err := db.ListTransactions(ctx, env.Pool, f, page)
		if err != nil {
			writeError(w, r, err, "list retailer transactions")
			return
		}
		writeJSON(w, http.StatusOK, retailerDetail{
			Retailer:     rt,
			Totals:       ledger.MonthlyTotals(all),
			Transactions: paged(txns, total, page),
		})
	}
}

func UpdateRetailer(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "retailer_id")
		if err != nil {
			writeError(w, r, err, "update retailer")
			return
		}
		var req retailerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update retailer")
			return
		}
		rt, err := req.toRetailer()
		if err != nil {
			writeError(w, r, err, "update retailer")
			return
		}
		rt.ID = id
		updated, err := db.UpdateRetailer(r.Context(), env.Pool, rt)
		if err != nil {
			writeError(w, r, err, "update retailer")
			return
		}
		env.Cache.Invalidate(store.RetailerCache)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteRetailer(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "retailer_id")
		if err != nil {
			writeError(w, r, err, "delete retailer")
			return
		}
		if err := db.DeleteRetailer(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete retailer")
			return
		}
		logger.Log.Info().Int64("retailer_id", id).Msg("Deleted retailer")
		env.Cache.Invalidate(store.RetailerCache)
		writeMessage(w, "retailer deleted")
	}
}

// RetailerSummary totals one month of transactions, or ?year, per retailer.
// retailerSummaryFilter selects the external transactions of ?year, or of
// ?month when no year is given.
func retailerSummaryFilter(r *http.Request) (db.TransactionFilter, error) {
	internal := false
	f := db.TransactionFilter{}
	f.IsInternal = &internal
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalid("invalid year %q", raw)
		}
		f.Year = &y
		return f, nil
	}
	month, err := monthFilter(r)
	if err != nil {
		return f, err
	}
	f.Month = &month
	return f, nil
}

func RetailerSummary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := retailerSummaryFilter(r)
		if err != nil {
			writeError(w, r, err, "summarize retailers")
			return
		}
		ctx := r.Context()
		txns, err := db.AllTransactions(ctx, env.Pool, f)
		if err != nil {
			writeError(w, r, err, "summarize retailers")
			return
		}
		retailers, err := db.RetailerMap(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "summarize retailers")
			return
		}
		totals, chart := ledger.RetailerSummary(txns, retailers)
		writeJSON(w, http.StatusOK, map[string]any{"retailers": totals, "chart": chart})
	}
}

// RecategorizeRetailers sets every retailer's category to the one its
// transactions use most.
func RecategorizeRetailers(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := db.RecategorizeRetailers(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "recategorize retailers")
			return
		}
		logger.Log.Info().Int("updated", n).Msg("Recategorized retailers")
		env.Cache.Invalidate(store.RetailerCache)
		writeJSON(w, http.StatusOK, map[string]int{"updated": n})
	}
}
