package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type transactionRequest struct {
	AccountID      int64                      `json:"account_id"`
	RetailerID     *int64                     `json:"retailer_id"`
	Amount         decimal.Decimal            `json:"amount"`
	Date           string                     `json:"date"`
	Note           *string                    `json:"note"`
	Type           models.TransactionCategory `json:"type"`
	IsInternal     bool                       `json:"is_internal"`
	RequiresDetail *bool                      `json:"requires_detail"`
	Reviewed       bool                       `json:"reviewed"`
}

// toTransaction validates the request. An empty type falls back to the
// retailer's category, and itemized categories require detail unless told
// otherwise.
func (req transactionRequest) toTransaction(ctx context.Context, q store.Querier) (models.Transaction, error) {
	if req.AccountID <= 0 {
		return models.Transaction{}, invalid("account_id is required")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.Transaction{}, invalid("invalid date %q", req.Date)
	}
	t := models.Transaction{
		AccountID:  req.AccountID,
		RetailerID: req.RetailerID,
		Amount:     req.Amount,
		Date:       date,
		Note:       req.Note,
		Type:       req.Type,
		IsInternal: req.IsInternal,
		Reviewed:   req.Reviewed,
	}
	if t.Type == "" {
		t.Type = models.CategoryEtc
		if t.RetailerID != nil {
			rt, err := db.GetRetailer(ctx, q, *t.RetailerID)
			if err != nil {
				return t, invalid("unknown retailer %d", *t.RetailerID)
			}
			t.Type = rt.Category
		}
	}
	if !t.Type.Valid() {
		return t, invalid("invalid category %q", t.Type)
	}
	if req.RequiresDetail != nil {
		t.RequiresDetail = *req.RequiresDetail
	} else {
		t.RequiresDetail = t.Type.RequiresDetail()
	}
	return t, nil
}

func transactionFilter(r *http.Request) (db.TransactionFilter, error) {
	var f db.TransactionFilter
	var err error
	q := r.URL.Query()

	if f.AccountID, err = queryInt64(r, "account_id"); err != nil {
		return f, err
	}
	if f.RetailerID, err = queryInt64(r, "retailer_id"); err != nil {
		return f, err
	}
	if f.Reviewed, err = queryBool(r, "reviewed"); err != nil {
		return f, err
	}
	if f.IsInternal, err = queryBool(r, "internal"); err != nil {
		return f, err
	}
	if f.RequiresDetail, err = queryBool(r, "requires_detail"); err != nil {
		return f, err
	}
	if raw := q.Get("category"); raw != "" {
		c := models.TransactionCategory(raw)
		if !c.Valid() {
			return f, invalid("invalid category %q", raw)
		}
		f.Category = &c
	}
	c, err := queryCurrency(r)
	if err != nil {
		return f, err
	}
	if c != "" {
		f.Currency = &c
	}
	if raw := q.Get("month"); raw != "" {
		m, err := ledger.ParseMonth(raw)
		if err != nil {
			return f, invalid("%v", err)
		}
		f.Month = &m
	}
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalid("invalid year %q", raw)
		}
		f.Year = &y
	}
	unlinked, err := queryBool(r, "unlinked")
	if err != nil {
		return f, err
	}
	f.Unlinked = unlinked != nil && *unlinked
	asc, err := queryBool(r, "asc")
	if err != nil {
		return f, err
	}
	f.Ascending = asc != nil && *asc
	f.Search = q.Get("search")
	return f, nil
}

func ListTransactions(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := transactionFilter(r)
		if err != nil {
			writeError(w, r, err, "list transactions")
			return
		}
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list transactions")
			return
		}
		txns, total, err := db.ListTransactions(r.Context(), env.Pool, f, page)
		if err != nil {
			writeError(w, r, err, "list transactions")
			return
		}
		writeJSON(w, http.StatusOK, paged(txns, total, page))
	}
}

// CreateTransaction stores the transaction and recalculates its account in
// the same database transaction.
func CreateTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create transaction")
			return
		}
		ctx := r.Context()
		t, err := req.toTransaction(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "create transaction")
			return
		}

		created, err := db.AddTransaction(ctx, env.Pool, t)
		if err != nil {
			writeError(w, r, err, "create transaction")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusCreated, created)
	}
}

type transactionDetail struct {
	*models.Transaction
	Details  []models.TransactionDetail `json:"details"`
	Leftover decimal.Decimal            `json:"leftover"`
	Balanced bool                       `json:"balanced"`
	Related  *models.Transaction        `json:"related_transaction,omitempty"`
}

// GetTransaction returns the transaction with its items, the amount the items
// do not yet cover and its linked partner.
func GetTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "get transaction")
			return
		}
		ctx := r.Context()
		t, err := db.GetTransaction(ctx, env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get transaction")
			return
		}
		details, err := db.ListTransactionDetails(ctx, env.Pool, id)
		if err != nil {
			writeError(w, r, err, "list transaction details")
			return
		}
		out := transactionDetail{
			Transaction: t,
			Details:     details,
			Leftover:    ledger.DetailLeftover(t.Amount, details),
			Balanced:    ledger.DetailsBalanced(t.Amount, details),
		}
		if out.Details == nil {
			out.Details = []models.TransactionDetail{}
		}
		if t.RelatedTransactionID != nil {
			if out.Related, err = db.GetTransaction(ctx, env.Pool, *t.RelatedTransactionID); err != nil {
				writeError(w, r, err, "get related transaction")
				return
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func UpdateTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "update transaction")
			return
		}
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update transaction")
			return
		}
		ctx := r.Context()
		t, err := req.toTransaction(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "update transaction")
			return
		}
		t.ID = id

		var updated *models.Transaction
		err = store.WithTx(ctx, env.Pool, func(tx pgx.Tx) error {
			old, err := db.GetTransaction(ctx, tx, id)
			if err != nil {
				return err
			}
			if _, err := db.UpdateTransaction(ctx, tx, t); err != nil {
				return err
			}
			if old.AccountID != t.AccountID {
				if err := db.Recalculate(ctx, tx, old.AccountID); err != nil {
					return err
				}
			}
			if err := db.Recalculate(ctx, tx, t.AccountID); err != nil {
				return err
			}
			updated, err = db.GetTransaction(ctx, tx, id)
			return err
		})
		if err != nil {
			writeError(w, r, err, "update transaction")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "delete transaction")
			return
		}
		ctx := r.Context()
		err = store.WithTx(ctx, env.Pool, func(tx pgx.Tx) error {
			t, err := db.GetTransaction(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := db.DeleteTransaction(ctx, tx, id); err != nil {
				return err
			}
			return db.Recalculate(ctx, tx, t.AccountID)
		})
		if err != nil {
			writeError(w, r, err, "delete transaction")
			return
		}
		logger.Log.Info().Int64("transaction_id", id).Msg("Deleted transaction")
		env.ledgerChanged()
		writeMessage(w, "transaction deleted")
	}
}

func ToggleReviewed(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "toggle reviewed")
			return
		}
		reviewed, err := db.ToggleReviewed(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "toggle reviewed")
			return
		}
		env.Cache.Invalidate(store.DashboardCache)
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "reviewed": reviewed})
	}
}

// LinkTransaction pairs the transaction with target_id as a transfer or
// currency exchange.
func LinkTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "link transactions")
			return
		}
		var req struct {
			TargetID int64 `json:"target_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "link transactions")
			return
		}
		if req.TargetID <= 0 {
			writeError(w, r, invalid("target_id is required"), "link transactions")
			return
		}
		ex, err := db.LinkTransactions(r.Context(), env.Pool, id, req.TargetID, env.bounds())
		if err != nil {
			writeError(w, r, err, "link transactions")
			return
		}
		logger.Log.Info().Int64("source", id).Int64("target", req.TargetID).Bool("exchange", ex != nil).Msg("Linked transactions")
		env.Cache.Invalidate(store.DashboardCache)
		writeJSON(w, http.StatusOK, map[string]any{
			"source_id": id,
			"target_id": req.TargetID,
			"exchange":  ex,
		})
	}
}

func UnlinkTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "unlink transaction")
			return
		}
		if err := db.UnlinkTransaction(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "unlink transaction")
			return
		}
		env.Cache.Invalidate(store.DashboardCache)
		writeMessage(w, "transaction unlinked")
	}
}

// MatchSuggestions lists proposed transfer and exchange pairs.
func MatchSuggestions(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := db.SuggestLinks(r.Context(), env.Pool, env.Config.MatchWindowDays, env.bounds())
		if err != nil {
			writeError(w, r, err, "suggest matches")
			return
		}
		if pairs == nil {
			pairs = []ledger.Pair{}
		}
		writeJSON(w, http.StatusOK, pairs)
	}
}

// ApplyMatches links every current suggestion.
func ApplyMatches(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		pairs, err := db.SuggestLinks(ctx, env.Pool, env.Config.MatchWindowDays, env.bounds())
		if err != nil {
			writeError(w, r, err, "suggest matches")
			return
		}
		linked, err := db.ApplySuggestions(ctx, env.Pool, pairs, env.bounds())
		if err != nil {
			writeError(w, r, err, "apply matches")
			return
		}
		logger.Log.Info().Int("suggested", len(pairs)).Int("linked", linked).Msg("Applied match suggestions")
		env.Cache.Invalidate(store.DashboardCache)
		writeJSON(w, http.StatusOK, map[string]int{"suggested": len(pairs), "linked": linked})
	}
}

// MarkRequireDetail flags unreviewed transactions of itemized categories.
func MarkRequireDetail(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := db.MarkRequiresDetail(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "mark transactions")
			return
		}
		env.Cache.Invalidate(store.DashboardCache)
		writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
	}
}

type detailRequest struct {
	ItemID int64            `json:"item_id"`
	Amount decimal.Decimal  `json:"amount"`
	Count  *decimal.Decimal `json:"count"`
	Note   *string          `json:"note"`
}

// AddTransactionDetail adds a line item. The transaction is marked reviewed
// once its items cover the amount.
func AddTransactionDetail(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, r, err, "add transaction detail")
			return
		}
		var req detailRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "add transaction detail")
			return
		}
		if req.ItemID <= 0 {
			writeError(w, r, invalid("item_id is required"), "add transaction detail")
			return
		}
		d := models.TransactionDetail{
			TransactionID: id,
			ItemID:        req.ItemID,
			Amount:        req.Amount,
			Count:         decimal.NewFromInt(1),
			Note:          req.Note,
		}
		if req.Count != nil {
			d.Count = *req.Count
		}
		created, balanced, err := db.AddTransactionDetail(r.Context(), env.Pool, d)
		if err != nil {
			writeError(w, r, err, "add transaction detail")
			return
		}
		if balanced {
			env.Cache.Invalidate(store.DashboardCache)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"detail": created, "balanced": balanced})
	}
}

func DeleteTransactionDetail(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "detail_id")
		if err != nil {
			writeError(w, r, err, "delete transaction detail")
			return
		}
		txnID, err := db.DeleteTransactionDetail(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "delete transaction detail")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "detail deleted", "transaction_id": txnID})
	}
}
