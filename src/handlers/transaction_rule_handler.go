package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type ruleRequest struct {
	Name       string                     `json:"name"`
	Priority   int                        `json:"priority"`
	Conditions json.RawMessage            `json:"conditions"`
	Category   models.TransactionCategory `json:"category"`
	RetailerID *int64                     `json:"retailer_id"`
	IsInternal *bool                      `json:"is_internal"`
	MarkReview bool                       `json:"mark_reviewed"`
}

// toRule checks that the conditions parse into a tree of known fields and
// operators. An empty category leaves the transaction's category alone.
func (req ruleRequest) toRule() (models.TransactionRule, error) {
	rule := models.TransactionRule{
		Name:       strings.TrimSpace(req.Name),
		Priority:   req.Priority,
		Conditions: req.Conditions,
		Category:   req.Category,
		RetailerID: req.RetailerID,
		IsInternal: req.IsInternal,
		MarkReview: req.MarkReview,
	}
	if rule.Name == "" {
		return rule, invalid("rule name is required")
	}
	if rule.Category != "" && !rule.Category.Valid() {
		return rule, invalid("invalid category %q", rule.Category)
	}
	var cond models.Condition
	if err := json.Unmarshal(req.Conditions, &cond); err != nil {
		return rule, invalid("invalid conditions: %v", err)
	}
	if err := ledger.ValidateCondition(cond); err != nil {
		return rule, invalid("%v", err)
	}
	return rule, nil
}

func CreateTransactionRule(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ruleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create transaction rule")
			return
		}
		rule, err := req.toRule()
		if err != nil {
			writeError(w, r, err, "create transaction rule")
			return
		}
		created, err := db.CreateTransactionRule(r.Context(), env.Pool, rule)
		if err != nil {
			writeError(w, r, err, "create transaction rule")
			return
		}
		logger.Log.Info().Int64("rule_id", created.ID).Str("name", created.Name).Msg("Created transaction rule")
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetTransactionRuleByID(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "rule_id")
		if err != nil {
			writeError(w, r, err, "get transaction rule")
			return
		}
		rule, err := db.GetTransactionRuleByID(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get transaction rule")
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func GetAllTransactionRules(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := db.GetAllTransactionRules(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "get transaction rules")
			return
		}
		if rules == nil {
			rules = []models.TransactionRule{}
		}
		writeJSON(w, http.StatusOK, rules)
	}
}

func UpdateTransactionRule(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "rule_id")
		if err != nil {
			writeError(w, r, err, "update transaction rule")
			return
		}
		var req ruleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update transaction rule")
			return
		}
		rule, err := req.toRule()
		if err != nil {
			writeError(w, r, err, "update transaction rule")
			return
		}
		rule.ID = id
		updated, err := db.UpdateTransactionRule(r.Context(), env.Pool, rule)
		if err != nil {
			writeError(w, r, err, "update transaction rule")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransactionRule(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "rule_id")
		if err != nil {
			writeError(w, r, err, "delete transaction rule")
			return
		}
		if err := db.DeleteTransactionRule(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete transaction rule")
			return
		}
		logger.Log.Info().Int64("rule_id", id).Msg("Deleted transaction rule")
		writeMessage(w, "transaction rule deleted")
	}
}

// TriggerTransactionRules applies the rules to every unreviewed transaction
// and returns the changes made.
func TriggerTransactionRules(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := db.ApplyTransactionRules(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "trigger transaction rules")
			return
		}
		if changes == nil {
			changes = []ledger.RuleChange{}
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, map[string]any{"changed": len(changes), "changes": changes})
	}
}
