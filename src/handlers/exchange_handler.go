package handlers

import (
	"net/http"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/models"
)

func ListExchanges(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list exchanges")
			return
		}
		list, total, err := db.ListExchanges(r.Context(), env.Pool, page)
		if err != nil {
			writeError(w, r, err, "list exchanges")
			return
		}
		writeJSON(w, http.StatusOK, paged(list, total, page))
	}
}

// UpdateExchangeType records where the exchange happened.
func UpdateExchangeType(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "exchange_id")
		if err != nil {
			writeError(w, r, err, "update exchange")
			return
		}
		var req struct {
			ExchangeType models.ExchangeType `json:"exchange_type"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update exchange")
			return
		}
		if !req.ExchangeType.Valid() {
			writeError(w, r, invalid("invalid exchange type %q", req.ExchangeType), "update exchange")
			return
		}
		updated, err := db.UpdateExchangeType(r.Context(), env.Pool, id, req.ExchangeType)
		if err != nil {
			writeError(w, r, err, "update exchange")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteExchange removes the exchange and unlinks both legs.
func DeleteExchange(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "exchange_id")
		if err != nil {
			writeError(w, r, err, "delete exchange")
			return
		}
		if err := db.DeleteExchange(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete exchange")
			return
		}
		env.Cache.Invalidate(store.DashboardCache)
		writeMessage(w, "exchange deleted")
	}
}
