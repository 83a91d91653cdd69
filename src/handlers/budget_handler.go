package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type budgetRequest struct {
	Amount   decimal.Decimal            `json:"amount"`
	Category models.TransactionCategory `json:"category"`
	Currency models.Currency            `json:"currency"`
}

func (req budgetRequest) toBudget() (models.Budget, error) {
	b := models.Budget{Amount: req.Amount, Category: req.Category, Currency: req.Currency}
	if b.Currency == "" {
		b.Currency = models.KRW
	}
	switch {
	case !b.Category.Valid():
		return b, invalid("invalid category %q", b.Category)
	case !b.Currency.Valid():
		return b, invalid("invalid currency %q", b.Currency)
	case !b.Amount.IsPositive():
		return b, invalid("amount must be positive")
	}
	return b, nil
}

func CreateBudget(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create budget")
			return
		}
		b, err := req.toBudget()
		if err != nil {
			writeError(w, r, err, "create budget")
			return
		}
		created, err := db.CreateBudget(r.Context(), env.Pool, b)
		if err != nil {
			writeError(w, r, err, "create budget")
			return
		}
		logger.Log.Info().Int64("budget_id", created.ID).Str("category", string(created.Category)).Msg("Created budget")
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetBudgetByID(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "budget_id")
		if err != nil {
			writeError(w, r, err, "get budget")
			return
		}
		b, err := db.GetBudgetByID(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get budget")
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func GetAllBudgets(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		budgets, err := db.GetAllBudgets(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "get budgets")
			return
		}
		if budgets == nil {
			budgets = []models.Budget{}
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func UpdateBudget(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "budget_id")
		if err != nil {
			writeError(w, r, err, "update budget")
			return
		}
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update budget")
			return
		}
		b, err := req.toBudget()
		if err != nil {
			writeError(w, r, err, "update budget")
			return
		}
		b.ID = id
		updated, err := db.UpdateBudget(r.Context(), env.Pool, b)
		if err != nil {
			writeError(w, r, err, "update budget")
			return
		}
		logger.Log.Info().Int64("budget_id", id).Msg("Updated budget")
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteBudget(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "budget_id")
		if err != nil {
			writeError(w, r, err, "delete budget")
			return
		}
		if err := db.DeleteBudget(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete budget")
			return
		}
		logger.Log.Info().Int64("budget_id", id).Msg("Deleted budget")
		writeMessage(w, "budget deleted")
	}
}

// BudgetStatus compares every budget with what was spent in ?month.
func BudgetStatus(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := monthFilter(r)
		if err != nil {
			writeError(w, r, err, "get budget status")
			return
		}
		ctx := r.Context()
		budgets, err := db.GetAllBudgets(ctx, env.Pool)
		if err != nil {
			writeError(w, r, err, "get budget status")
			return
		}
		var f db.TransactionFilter
		f.Month = &month
		txns, err := db.AllTransactions(ctx, env.Pool, f)
		if err != nil {
			writeError(w, r, err, "get budget status")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"month":    month.Format("2006-01"),
			"statuses": ledger.BudgetStatuses(budgets, ledger.SpentByCategory(txns)),
		})
	}
}
