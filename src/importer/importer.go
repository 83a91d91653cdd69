// Package importer loads bank statement exports into an account.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"money-server/src/db"
	dbsql "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/models"
)

// ErrEmpty is returned for a statement without any transaction rows.
var ErrEmpty = errors.New("no transactions found")

// Result describes a finished import.
type Result struct {
	Batch   models.ImportBatch `json:"batch"`
	Account models.Account     `json:"account"`
}

// Import parses r with the named profile and inserts every row into the
// account in one transaction tagged with a new batch id. The account balance
// is recalculated before the transaction commits.
func Import(ctx context.Context, pool *pgxpool.Pool, profiles Profiles, accountID int64, profileName, fileName string, r io.Reader) (*Result, error) {
	profile, err := profiles.Get(profileName)
	if err != nil {
		return nil, err
	}
	rows, err := Parse(r, profile)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmpty)
	}

	batchID := uuid.New().String()
	var result Result
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := dbsql.GetAccount(ctx, tx, accountID); err != nil {
			return err
		}
		batch, err := dbsql.CreateImportBatch(ctx, tx, models.ImportBatch{
			ID:        batchID,
			AccountID: accountID,
			Profile:   profile.Name,
			FileName:  fileName,
			RowCount:  len(rows),
		})
		if err != nil {
			return err
		}
		result.Batch = *batch

		for _, row := range rows {
			t := ToTransaction(row, accountID, batchID)
			if _, err := dbsql.CreateTransaction(ctx, tx, t); err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
		}
		if err := dbsql.Recalculate(ctx, tx, accountID); err != nil {
			return err
		}
		account, err := dbsql.GetAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		result.Account = *account
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("batch", batchID).
		Int64("account", accountID).
		Str("profile", profile.Name).
		Int("rows", len(rows)).
		Msg("statement imported")
	return &result, nil
}

// ToTransaction maps a parsed row to a new unreviewed transaction.
func ToTransaction(row Row, accountID int64, batchID string) models.Transaction {
	t := models.Transaction{
		AccountID:   accountID,
		Amount:      row.Amount,
		Date:        row.Date,
		Type:        models.CategoryEtc,
		ImportBatch: &batchID,
	}
	if row.Note != "" {
		note := row.Note
		t.Note = &note
	}
	return t
}
