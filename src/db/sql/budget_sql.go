package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

func CreateBudget(ctx context.Context, q db.Querier, budget models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (amount, category, currency)
		VALUES ($1, $2, $3)
		RETURNING id, amount, category, currency, created_at, updated_at
	`
	var b models.Budget
	err := q.QueryRow(ctx, query, budget.Amount, budget.Category, budget.Currency).
		Scan(&b.ID, &b.Amount, &b.Category, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return &b, nil
}

func GetBudgetByID(ctx context.Context, q db.Querier, budgetID int64) (*models.Budget, error) {
	query := `
		SELECT id, amount, category, currency, created_at, updated_at
		FROM budgets WHERE id = $1
	`
	var b models.Budget
	err := q.QueryRow(ctx, query, budgetID).
		Scan(&b.ID, &b.Amount, &b.Category, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &b, nil
}

func GetAllBudgets(ctx context.Context, q db.Querier) ([]models.Budget, error) {
	query := `
		SELECT id, amount, category, currency, created_at, updated_at
		FROM budgets
		ORDER BY currency, category
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		err := rows.Scan(&b.ID, &b.Amount, &b.Category, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func UpdateBudget(ctx context.Context, q db.Querier, budget models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET amount = $1, category = $2, currency = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, amount, category, currency, created_at, updated_at
	`
	var b models.Budget
	err := q.QueryRow(ctx, query, budget.Amount, budget.Category, budget.Currency, budget.ID).
		Scan(&b.ID, &b.Amount, &b.Category, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &b, nil
}

func DeleteBudget(ctx context.Context, q db.Querier, budgetID int64) error {
	return deleteByID(ctx, q, "budgets", budgetID)
}
