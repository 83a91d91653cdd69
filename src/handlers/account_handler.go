package handlers

import (
	"net/http"
	"strings"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type accountRequest struct {
	BankID         int64              `json:"bank_id"`
	Name           string             `json:"name"`
	Alias          *string            `json:"alias"`
	Type           models.AccountType `json:"type"`
	Currency       models.Currency    `json:"currency"`
	IsActive       *bool              `json:"is_active"`
	PlaidAccountID *string            `json:"plaid_account_id"`
}

func (req accountRequest) toAccount() (models.Account, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case req.BankID <= 0:
		return models.Account{}, invalid("bank_id is required")
	case name == "":
		return models.Account{}, invalid("account name is required")
	case !req.Type.Valid():
		return models.Account{}, invalid("invalid account type %q", req.Type)
	case !req.Currency.Valid():
		return models.Account{}, invalid("invalid currency %q", req.Currency)
	}
	return models.Account{
		BankID:         req.BankID,
		Name:           name,
		Alias:          req.Alias,
		Type:           req.Type,
		Currency:       req.Currency,
		IsActive:       req.IsActive == nil || *req.IsActive,
		PlaidAccountID: req.PlaidAccountID,
	}, nil
}

func accountFilter(r *http.Request) (db.AccountFilter, error) {
	var f db.AccountFilter
	var err error
	if f.BankID, err = queryInt64(r, "bank_id"); err != nil {
		return f, err
	}
	if f.IsActive, err = queryBool(r, "is_active"); err != nil {
		return f, err
	}
	c, err := queryCurrency(r)
	if err != nil {
		return f, err
	}
	if c != "" {
		f.Currency = &c
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := models.AccountType(raw)
		if !t.Valid() {
			return f, invalid("invalid account type %q", raw)
		}
		f.Type = &t
	}
	return f, nil
}

func ListAccounts(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := accountFilter(r)
		if err != nil {
			writeError(w, r, err, "list accounts")
			return
		}
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "list accounts")
			return
		}
		accounts, total, err := db.ListAccounts(r.Context(), env.Pool, f, page)
		if err != nil {
			writeError(w, r, err, "list accounts")
			return
		}
		writeJSON(w, http.StatusOK, paged(accounts, total, page))
	}
}

func CreateAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create account")
			return
		}
		a, err := req.toAccount()
		if err != nil {
			writeError(w, r, err, "create account")
			return
		}
		created, err := db.CreateAccount(r.Context(), env.Pool, a)
		if err != nil {
			writeError(w, r, err, "create account")
			return
		}
		logger.Log.Info().Int64("account_id", created.ID).Str("name", created.DisplayName()).Msg("Created account")
		env.ledgerChanged()
		writeJSON(w, http.StatusCreated, created)
	}
}

type accountDetail struct {
	*models.Account
	Transactions pageResponse[models.Transaction] `json:"transactions"`
	Holdings     []models.StockHolding            `json:"holdings,omitempty"`
}

// GetAccount returns the account with one page of its transactions, newest
// first, and its stock holdings for brokerage accounts.
func GetAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "account_id")
		if err != nil {
			writeError(w, r, err, "get account")
			return
		}
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, "get account")
			return
		}
		ctx := r.Context()
		a, err := db.GetAccount(ctx, env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get account")
			return
		}

		var f db.TransactionFilter
		f.AccountID = &id
		txns, total, err := db.ListTransactions(ctx, env.Pool, f, page)
		if err != nil {
			writeError(w, r, err, "list account transactions")
			return
		}
		detail := accountDetail{Account: a, Transactions: paged(txns, total, page)}

		if a.Type == models.AccountStock {
			if detail.Holdings, err = db.ListHoldings(ctx, env.Pool, id); err != nil {
				writeError(w, r, err, "list holdings")
				return
			}
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// AccountChart plots the account balance over time. recalculate=true plots
// the running sum instead of stored balances.
func AccountChart(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "account_id")
		if err != nil {
			writeError(w, r, err, "chart account")
			return
		}
		recalc, err := queryBool(r, "recalculate")
		if err != nil {
			writeError(w, r, err, "chart account")
			return
		}
		var f db.TransactionFilter
		f.AccountID = &id
		f.Ascending = true
		txns, err := db.AllTransactions(r.Context(), env.Pool, f)
		if err != nil {
			writeError(w, r, err, "chart account")
			return
		}
		opt := env.chartOptions()
		opt.Recalculate = recalc != nil && *recalc
		writeJSON(w, http.StatusOK, ledger.TransactionChart(txns, opt))
	}
}

func UpdateAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "account_id")
		if err != nil {
			writeError(w, r, err, "update account")
			return
		}
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update account")
			return
		}
		a, err := req.toAccount()
		if err != nil {
			writeError(w, r, err, "update account")
			return
		}
		a.ID = id
		updated, err := db.UpdateAccount(r.Context(), env.Pool, a)
		if err != nil {
			writeError(w, r, err, "update account")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "account_id")
		if err != nil {
			writeError(w, r, err, "delete account")
			return
		}
		if err := db.DeleteAccount(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete account")
			return
		}
		logger.Log.Info().Int64("account_id", id).Msg("Deleted account")
		env.ledgerChanged()
		writeMessage(w, "account deleted")
	}
}

func RecalculateAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "account_id")
		if err != nil {
			writeError(w, r, err, "recalculate account")
			return
		}
		a, err := db.RecalculateAccountBalance(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "recalculate account")
			return
		}
		logger.Log.Info().Int64("account_id", id).Str("amount", a.Amount.String()).Msg("Recalculated account balance")
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, a)
	}
}

func RecalculateAllAccounts(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := db.RecalculateAll(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "recalculate accounts")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, map[string]int{"accounts": n})
	}
}

func accountsByID(env *Env, r *http.Request) (map[int64]models.Account, error) {
	list, _, err := db.ListAccounts(r.Context(), env.Pool, db.AccountFilter{}, store.Page{})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.Account, len(list))
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}
