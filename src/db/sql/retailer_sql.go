package db

import (
	"context"
	"fmt"

	"money-server/src/db"
	"money-server/src/models"
)

func CreateRetailer(ctx context.Context, q db.Querier, r models.Retailer) (*models.Retailer, error) {
	query := `
		INSERT INTO retailers (name, type, category)
		VALUES ($1, $2, $3)
		RETURNING id, name, type, category
	`
	var out models.Retailer
	err := q.QueryRow(ctx, query, r.Name, r.Type, r.Category).Scan(&out.ID, &out.Name, &out.Type, &out.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to create retailer: %w", err)
	}
	return &out, nil
}

func GetRetailer(ctx context.Context, q db.Querier, id int64) (*models.Retailer, error) {
	var r models.Retailer
	err := q.QueryRow(ctx, `SELECT id, name, type, category FROM retailers WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.Type, &r.Category)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &r, nil
}

// ListRetailers filters by a case-insensitive name fragment when search is
// not empty. A zero page returns every match.
func ListRetailers(ctx context.Context, q db.Querier, search string, page db.Page) ([]models.Retailer, int, error) {
	w := newWhere()
	if search != "" {
		w.add("name ILIKE ?", "%"+search+"%")
	}
	query := `SELECT id, name, type, category, COUNT(*) OVER () FROM retailers ` + w.sql() + ` ORDER BY name, id`
	if page.Limit > 0 {
		page = page.Normalize()
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, page.Offset)
	}
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Retailer
	total := 0
	for rows.Next() {
		var r models.Retailer
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Category, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// RetailerMap loads every retailer keyed by id.
func RetailerMap(ctx context.Context, q db.Querier) (map[int64]models.Retailer, error) {
	list, _, err := ListRetailers(ctx, q, "", db.Page{})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.Retailer, len(list))
	for _, r := range list {
		out[r.ID] = r
	}
	return out, nil
}

func UpdateRetailer(ctx context.Context, q db.Querier, r models.Retailer) (*models.Retailer, error) {
	query := `
		UPDATE retailers SET name = $1, type = $2, category = $3
		WHERE id = $4
		RETURNING id, name, type, category
	`
	var out models.Retailer
	err := q.QueryRow(ctx, query, r.Name, r.Type, r.Category, r.ID).Scan(&out.ID, &out.Name, &out.Type, &out.Category)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func SetRetailerCategory(ctx context.Context, q db.Querier, id int64, category models.TransactionCategory) error {
	_, err := q.Exec(ctx, `UPDATE retailers SET category = $1 WHERE id = $2`, category, id)
	return err
}

func DeleteRetailer(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "retailers", id)
}
