package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"money-server/src/models"
)

// RuleSubject is the view of a transaction that rule conditions match on.
type RuleSubject struct {
	Note     string
	Retailer string
	Amount   float64
	Account  string
	Currency string
}

func SubjectOf(t models.Transaction) RuleSubject {
	s := RuleSubject{
		Amount:   t.Amount.InexactFloat64(),
		Account:  t.AccountName,
		Currency: string(t.Currency),
	}
	if t.Note != nil {
		s.Note = *t.Note
	}
	if t.RetailerName != nil {
		s.Retailer = *t.RetailerName
	}
	return s
}

// noteField reads key from a JSON object note, as written by the statement
// importer. Plain text notes have no keys.
func (s RuleSubject) noteField(key string) string {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(s.Note), &fields); err != nil {
		return ""
	}
	if v, ok := fields[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func (s RuleSubject) field(name string) (interface{}, bool) {
	switch name {
	case "note":
		return s.Note, true
	case "retailer":
		return s.Retailer, true
	case "amount":
		return s.Amount, true
	case "account":
		return s.Account, true
	case "currency":
		return s.Currency, true
	}
	if key, ok := strings.CutPrefix(name, "note."); ok && key != "" {
		return s.noteField(key), true
	}
	return nil, false
}

var ruleOps = map[string]bool{
	"equals": true, "contains": true, "gt": true, "gte": true, "lt": true, "lte": true, "in": true,
}

// ValidateCondition rejects trees with unknown fields or operators.
func ValidateCondition(cond models.Condition) error {
	if cond.IsGroup() {
		for _, c := range append(append([]models.Condition{}, cond.And...), cond.Or...) {
			if err := ValidateCondition(c); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := (RuleSubject{}).field(cond.Field); !ok {
		return fmt.Errorf("unknown condition field %q", cond.Field)
	}
	if !ruleOps[cond.Op] {
		return fmt.Errorf("unknown condition operator %q", cond.Op)
	}
	return nil
}

// Evaluate reports whether subj satisfies cond.
func Evaluate(cond models.Condition, subj RuleSubject) bool {
	// Logical AND
	if len(cond.And) > 0 {
		for _, c := range cond.And {
			if !Evaluate(c, subj) {
				return false
			}
		}
		return true
	}
	// Logical OR
	if len(cond.Or) > 0 {
		for _, c := range cond.Or {
			if Evaluate(c, subj) {
				return true
			}
		}
		return false
	}

	fieldValue, ok := subj.field(cond.Field)
	if !ok {
		return false
	}
	switch cond.Op {
	case "equals":
		switch v := fieldValue.(type) {
		case string:
			val, ok := cond.Value.(string)
			return ok && strings.EqualFold(v, val)
		case float64:
			val, ok := cond.Value.(float64)
			return ok && v == val
		}
		return false
	case "contains":
		s, ok := fieldValue.(string)
		val, ok2 := cond.Value.(string)
		return ok && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(val))
	case "gt", "gte", "lt", "lte":
		f, ok := fieldValue.(float64)
		val, ok2 := cond.Value.(float64)
		if !ok || !ok2 {
			return false
		}
		switch cond.Op {
		case "gt":
			return f > val
		case "gte":
			return f >= val
		case "lt":
			return f < val
		}
		return f <= val
	case "in":
		s, ok := fieldValue.(string)
		arr, ok2 := cond.Value.([]interface{})
		if ok && ok2 {
			for _, v := range arr {
				if str, ok := v.(string); ok && strings.EqualFold(s, str) {
					return true
				}
			}
		}
		return false
	}
	return false
}

// RuleChange is the update a matching rule makes to one transaction.
type RuleChange struct {
	TransactionID int64                      `json:"transaction_id"`
	RuleID        int64                      `json:"rule_id"`
	OldCategory   models.TransactionCategory `json:"old_category"`
	Category      models.TransactionCategory `json:"category"`
	RetailerID    *int64                     `json:"retailer_id,omitempty"`
	IsInternal    *bool                      `json:"is_internal,omitempty"`
	Reviewed      bool                       `json:"reviewed"`
}

// ApplyRules runs rules in the given order against each transaction; the
// first matching rule wins. Only transactions the rule would actually change
// are returned. Rules whose conditions do not parse are skipped.
func ApplyRules(rules []models.TransactionRule, txns []models.Transaction) []RuleChange {
	type parsed struct {
		rule models.TransactionRule
		cond models.Condition
	}
	var usable []parsed
	for _, r := range rules {
		var cond models.Condition
		if err := json.Unmarshal(r.Conditions, &cond); err != nil {
			continue
		}
		usable = append(usable, parsed{r, cond})
	}

	var changes []RuleChange
	for _, t := range txns {
		subj := SubjectOf(t)
		for _, p := range usable {
			if !Evaluate(p.cond, subj) {
				continue
			}
			if ch, changed := ruleChange(p.rule, t); changed {
				changes = append(changes, ch)
			}
			break
		}
	}
	return changes
}

func ruleChange(r models.TransactionRule, t models.Transaction) (RuleChange, bool) {
	ch := RuleChange{
		TransactionID: t.ID,
		RuleID:        r.ID,
		OldCategory:   t.Type,
		Category:      t.Type,
		Reviewed:      t.Reviewed,
	}
	changed := false
	if r.Category != "" && r.Category != t.Type {
		ch.Category = r.Category
		changed = true
	}
	if r.RetailerID != nil && (t.RetailerID == nil || *t.RetailerID != *r.RetailerID) {
		ch.RetailerID = r.RetailerID
		changed = true
	}
	if r.IsInternal != nil && *r.IsInternal != t.IsInternal {
		ch.IsInternal = r.IsInternal
		changed = true
	}
	if r.MarkReview && !t.Reviewed {
		ch.Reviewed = true
		changed = true
	}
	return ch, changed
}
