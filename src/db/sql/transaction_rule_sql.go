package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/models"
)

const ruleColumns = `id, name, priority, conditions, category, retailer_id, is_internal, mark_reviewed, created_at, updated_at`

func scanRule(row pgx.Row, r *models.TransactionRule) error {
	return row.Scan(&r.ID, &r.Name, &r.Priority, &r.Conditions, &r.Category, &r.RetailerID, &r.IsInternal, &r.MarkReview, &r.CreatedAt, &r.UpdatedAt)
}

func CreateTransactionRule(ctx context.Context, q db.Querier, rule models.TransactionRule) (*models.TransactionRule, error) {
	query := `
		INSERT INTO transaction_rules (name, priority, conditions, category, retailer_id, is_internal, mark_reviewed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + ruleColumns
	var r models.TransactionRule
	err := scanRule(q.QueryRow(ctx, query, rule.Name, rule.Priority, rule.Conditions, rule.Category,
		rule.RetailerID, rule.IsInternal, rule.MarkReview), &r)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction rule: %w", err)
	}
	return &r, nil
}

func GetTransactionRuleByID(ctx context.Context, q db.Querier, ruleID int64) (*models.TransactionRule, error) {
	var r models.TransactionRule
	if err := scanRule(q.QueryRow(ctx, `SELECT `+ruleColumns+` FROM transaction_rules WHERE id = $1`, ruleID), &r); err != nil {
		return nil, db.NotFound(err)
	}
	return &r, nil
}

// GetAllTransactionRules returns rules in evaluation order, highest priority
// first.
func GetAllTransactionRules(ctx context.Context, q db.Querier) ([]models.TransactionRule, error) {
	rows, err := q.Query(ctx, `SELECT `+ruleColumns+` FROM transaction_rules ORDER BY priority DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.TransactionRule
	for rows.Next() {
		var r models.TransactionRule
		if err := scanRule(rows, &r); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func UpdateTransactionRule(ctx context.Context, q db.Querier, rule models.TransactionRule) (*models.TransactionRule, error) {
	query := `
		UPDATE transaction_rules
		SET name = $1, priority = $2, conditions = $3, category = $4, retailer_id = $5,
			is_internal = $6, mark_reviewed = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + ruleColumns
	var r models.TransactionRule
	err := scanRule(q.QueryRow(ctx, query, rule.Name, rule.Priority, rule.Conditions, rule.Category,
		rule.RetailerID, rule.IsInternal, rule.MarkReview, rule.ID), &r)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &r, nil
}

func DeleteTransactionRule(ctx context.Context, q db.Querier, ruleID int64) error {
	return deleteByID(ctx, q, "transaction_rules", ruleID)
}
