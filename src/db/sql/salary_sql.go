package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"money-server/src/db"
	"money-server/src/models"
)

const salaryColumns = `
	id, date, gross_pay, total_adjustment, total_withheld, total_deduction, net_pay,
	pay_detail, adjustment_detail, tax_detail, deduction_detail, transaction_id
`

func scanSalary(row pgx.Row, s *models.Salary) error {
	return row.Scan(&s.ID, &s.Date, &s.GrossPay, &s.TotalAdjustment, &s.TotalWithheld, &s.TotalDeduction, &s.NetPay,
		&s.PayDetail, &s.AdjustmentDetail, &s.TaxDetail, &s.DeductionDetail, &s.TransactionID)
}

func CreateSalary(ctx context.Context, q db.Querier, s models.Salary) (*models.Salary, error) {
	query := `
		INSERT INTO salaries (
			date, gross_pay, total_adjustment, total_withheld, total_deduction, net_pay,
			pay_detail, adjustment_detail, tax_detail, deduction_detail, transaction_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + salaryColumns
	var out models.Salary
	err := scanSalary(q.QueryRow(ctx, query,
		s.Date, s.GrossPay, s.TotalAdjustment, s.TotalWithheld, s.TotalDeduction, s.NetPay,
		s.PayDetail, s.AdjustmentDetail, s.TaxDetail, s.DeductionDetail, s.TransactionID,
	), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to create salary: %w", err)
	}
	return &out, nil
}

func GetSalary(ctx context.Context, q db.Querier, id int64) (*models.Salary, error) {
	var s models.Salary
	if err := scanSalary(q.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salaries WHERE id = $1`, id), &s); err != nil {
		return nil, db.NotFound(err)
	}
	return &s, nil
}

// ListSalaries returns statements oldest first, limited to year when year is
// not zero.
func ListSalaries(ctx context.Context, q db.Querier, year int) ([]models.Salary, error) {
	query := `SELECT ` + salaryColumns + ` FROM salaries
		WHERE $1 = 0 OR EXTRACT(YEAR FROM date)::int = $1
		ORDER BY date, id
	`
	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Salary
	for rows.Next() {
		var s models.Salary
		if err := scanSalary(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func SalaryYears(ctx context.Context, q db.Querier) ([]int, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT EXTRACT(YEAR FROM date)::int AS y FROM salaries ORDER BY y DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func UpdateSalary(ctx context.Context, q db.Querier, s models.Salary) (*models.Salary, error) {
	query := `
		UPDATE salaries
		SET date = $1, gross_pay = $2, total_adjustment = $3, total_withheld = $4, total_deduction = $5,
			net_pay = $6, pay_detail = $7, adjustment_detail = $8, tax_detail = $9, deduction_detail = $10,
			transaction_id = $11
		WHERE id = $12
		RETURNING ` + salaryColumns
	var out models.Salary
	err := scanSalary(q.QueryRow(ctx, query,
		s.Date, s.GrossPay, s.TotalAdjustment, s.TotalWithheld, s.TotalDeduction,
		s.NetPay, s.PayDetail, s.AdjustmentDetail, s.TaxDetail, s.DeductionDetail,
		s.TransactionID, s.ID,
	), &out)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &out, nil
}

func DeleteSalary(ctx context.Context, q db.Querier, id int64) error {
	return deleteByID(ctx, q, "salaries", id)
}
