package handlers

import (
	"net/http"
	"strings"
	"time"

	db "money-server/src/db/sql"
	"money-server/src/models"
)

type amazonOrderRequest struct {
	Date                string `json:"date"`
	Item                string `json:"item"`
	IsReturned          bool   `json:"is_returned"`
	TransactionID       *int64 `json:"transaction_id"`
	ReturnTransactionID *int64 `json:"return_transaction_id"`
}

func (req amazonOrderRequest) toOrder() (models.AmazonOrder, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.AmazonOrder{}, invalid("invalid date %q", req.Date)
	}
	o := models.AmazonOrder{
		Date:                date,
		Item:                strings.TrimSpace(req.Item),
		IsReturned:          req.IsReturned,
		TransactionID:       req.TransactionID,
		ReturnTransactionID: req.ReturnTransactionID,
	}
	if o.Item == "" {
		return o, invalid("item is required")
	}
	return o, nil
}

// ListAmazonOrders pages orders, newest first. unlinked=true keeps orders
// without a charge transaction.
func ListAmazonOrders(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list amazon orders")
			return
		}
		unlinked, err := queryBool(r, "unlinked")
		if err != nil {
			writeError(w, r, err, "list amazon orders")
			return
		}
		orders, total, err := db.ListAmazonOrders(r.Context(), env.Pool, unlinked != nil && *unlinked, page)
		if err != nil {
			writeError(w, r, err, "list amazon orders")
			return
		}
		writeJSON(w, http.StatusOK, paged(orders, total, page))
	}
}

func CreateAmazonOrder(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req amazonOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create amazon order")
			return
		}
		o, err := req.toOrder()
		if err != nil {
			writeError(w, r, err, "create amazon order")
			return
		}
		created, err := db.CreateAmazonOrder(r.Context(), env.Pool, o)
		if err != nil {
			writeError(w, r, err, "create amazon order")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetAmazonOrder(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			writeError(w, r, err, "get amazon order")
			return
		}
		o, err := db.GetAmazonOrder(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get amazon order")
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func UpdateAmazonOrder(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			writeError(w, r, err, "update amazon order")
			return
		}
		var req amazonOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update amazon order")
			return
		}
		o, err := req.toOrder()
		if err != nil {
			writeError(w, r, err, "update amazon order")
			return
		}
		o.ID = id
		updated, err := db.UpdateAmazonOrder(r.Context(), env.Pool, o)
		if err != nil {
			writeError(w, r, err, "update amazon order")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteAmazonOrder(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			writeError(w, r, err, "delete amazon order")
			return
		}
		if err := db.DeleteAmazonOrder(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete amazon order")
			return
		}
		writeMessage(w, "amazon order deleted")
	}
}

// LinkAmazonOrder attaches the card charge, or with returned=true the
// refund, to the order.
func LinkAmazonOrder(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			writeError(w, r, err, "link amazon order")
			return
		}
		var req struct {
			TransactionID int64 `json:"transaction_id"`
			Returned      bool  `json:"returned"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "link amazon order")
			return
		}
		if req.TransactionID <= 0 {
			writeError(w, r, invalid("transaction_id is required"), "link amazon order")
			return
		}
		if _, err := db.GetTransaction(r.Context(), env.Pool, req.TransactionID); err != nil {
			writeError(w, r, invalid("unknown transaction %d", req.TransactionID), "link amazon order")
			return
		}
		o, err := db.LinkAmazonOrder(r.Context(), env.Pool, id, req.TransactionID, req.Returned)
		if err != nil {
			writeError(w, r, err, "link amazon order")
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}
