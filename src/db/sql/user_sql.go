package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"money-server/src/db"
	"money-server/src/models"
)

var ErrUserExists = errors.New("username or email already registered")

const userColumns = `id, username, email, first_name, last_name, password_hash, super_admin, last_login, created_at`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.SuperAdmin, &u.LastLogin, &u.CreatedAt)
}

func GetUserByID(ctx context.Context, q db.Querier, id int64) (*models.User, error) {
	var user models.User
	if err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &user); err != nil {
		return nil, db.NotFound(err)
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, q db.Querier, username string) (*models.User, error) {
	var user models.User
	err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username), &user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}

// CreateUser stores a new user. The first user registered becomes a super
// admin.
func CreateUser(ctx context.Context, q db.Querier, req models.RegisterRequest, hashedPassword []byte) (*models.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash, super_admin)
		VALUES ($1, $2, $3, $4, $5, NOT EXISTS (SELECT 1 FROM users))
		RETURNING ` + userColumns

	var user models.User
	err := scanUser(q.QueryRow(ctx, query, req.FirstName, req.LastName, req.Username, req.Email, hashedPassword), &user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func UpdateUserLastLogin(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

func UpdateUserPassword(ctx context.Context, q db.Querier, id int64, hashedPassword []byte) error {
	cmd, err := q.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func DeleteUser(ctx context.Context, q db.Querier, userID int64) error {
	return deleteByID(ctx, q, "users", userID)
}
