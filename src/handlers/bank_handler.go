package handlers

import (
	"net/http"
	"strings"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/models"
)

type bankRequest struct {
	Name string `json:"name"`
}

func (b *bankRequest) validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return invalid("bank name is required")
	}
	return nil
}

func ListBanks(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list banks")
			return
		}
		banks, total, err := db.ListBanks(r.Context(), env.Pool, page)
		if err != nil {
			writeError(w, r, err, "list banks")
			return
		}
		writeJSON(w, http.StatusOK, paged(banks, total, page))
	}
}

func CreateBank(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bankRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create bank")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, r, err, "create bank")
			return
		}
		created, err := db.CreateBank(r.Context(), env.Pool, req.Name)
		if err != nil {
			writeError(w, r, err, "create bank")
			return
		}
		logger.Log.Info().Int64("bank_id", created.ID).Str("name", created.Name).Msg("Created bank")
		writeJSON(w, http.StatusCreated, created)
	}
}

// GetBank returns the bank with its accounts.
func GetBank(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "bank_id")
		if err != nil {
			writeError(w, r, err, "get bank")
			return
		}
		bank, err := db.GetBank(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get bank")
			return
		}
		accounts, _, err := db.ListAccounts(r.Context(), env.Pool, db.AccountFilter{BankID: &id}, store.Page{})
		if err != nil {
			writeError(w, r, err, "list bank accounts")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			*models.Bank
			Accounts []models.Account `json:"accounts"`
		}{bank, accounts})
	}
}

func UpdateBank(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "bank_id")
		if err != nil {
			writeError(w, r, err, "update bank")
			return
		}
		var req bankRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update bank")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, r, err, "update bank")
			return
		}
		updated, err := db.UpdateBank(r.Context(), env.Pool, id, req.Name)
		if err != nil {
			writeError(w, r, err, "update bank")
			return
		}
		env.Cache.Invalidate(store.AccountCache, store.DashboardCache)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteBank(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "bank_id")
		if err != nil {
			writeError(w, r, err, "delete bank")
			return
		}
		if err := db.DeleteBank(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete bank")
			return
		}
		logger.Log.Info().Int64("bank_id", id).Msg("Deleted bank")
		env.Cache.Invalidate(store.AccountCache, store.DashboardCache)
		writeMessage(w, "bank deleted")
	}
}
