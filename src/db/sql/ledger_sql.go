package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"money-server/src/db"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

// RecalculateAccountBalance rewrites the running balance of every transaction
// in the account and stores the final balance and date range on the account.
// Share balances of stock trades in the account are refreshed as well.
func RecalculateAccountBalance(ctx context.Context, pool *pgxpool.Pool, accountID int64) (*models.Account, error) {
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return Recalculate(ctx, tx, accountID)
	})
	if err != nil {
		return nil, err
	}
	return GetAccount(ctx, pool, accountID)
}

// Recalculate is RecalculateAccountBalance for callers already inside a
// transaction.
func Recalculate(ctx context.Context, q db.Querier, accountID int64) error {
	txns, err := AccountLedger(ctx, q, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account %d: %w", accountID, err)
	}
	res := ledger.RunningBalances(txns)
	if err := SetBalances(ctx, q, txns); err != nil {
		return err
	}
	if err := SetAccountTotals(ctx, q, accountID, res.Total, res.First, res.Last); err != nil {
		return err
	}

	trades, err := ListStockTransactions(ctx, q, accountID)
	if err != nil {
		return err
	}
	ledger.StockShareBalances(trades)
	return SetStockBalances(ctx, q, trades)
}

// AddTransaction stores t and recalculates its account in the same database
// transaction. The returned row carries its running balance.
func AddTransaction(ctx context.Context, pool *pgxpool.Pool, t models.Transaction) (*models.Transaction, error) {
	var id int64
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		created, err := CreateTransaction(ctx, tx, t)
		if err != nil {
			return err
		}
		id = created.ID
		return Recalculate(ctx, tx, t.AccountID)
	})
	if err != nil {
		return nil, err
	}
	return GetTransaction(ctx, pool, id)
}

// AddStockTransaction stores the trade and refreshes the balances of its
// account in the same database transaction.
func AddStockTransaction(ctx context.Context, pool *pgxpool.Pool, st models.StockTransaction) (*models.StockTransaction, error) {
	var created *models.StockTransaction
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		var err error
		if created, err = CreateStockTransaction(ctx, tx, st); err != nil {
			return err
		}
		if err := Recalculate(ctx, tx, st.AccountID); err != nil {
			return err
		}
		created, err = GetStockTransaction(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecalculateAll recalculates every account and returns how many were done.
func RecalculateAll(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	accounts, _, err := ListAccounts(ctx, pool, AccountFilter{}, db.Page{})
	if err != nil {
		return 0, err
	}
	for _, a := range accounts {
		if _, err := RecalculateAccountBalance(ctx, pool, a.ID); err != nil {
			return 0, fmt.Errorf("account %d: %w", a.ID, err)
		}
	}
	logger.Log.Info().Int("accounts", len(accounts)).Msg("recalculated balances")
	return len(accounts), nil
}

// RebuildSnapshots replays all transactions of each currency and upserts one
// snapshot per day with activity.
func RebuildSnapshots(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	written := 0
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, c := range models.AllCurrencies() {
			rows, err := SnapshotRows(ctx, tx, c)
			if err != nil {
				return err
			}
			snaps := ledger.DailySnapshots(c, rows)
			if err := UpsertSnapshots(ctx, tx, snaps); err != nil {
				return err
			}
			written += len(snaps)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Log.Info().Int("snapshots", written).Msg("rebuilt snapshots")
	return written, nil
}

// LinkTransactions pairs source and target as an internal transfer, or as a
// currency exchange when their currencies differ, in which case the exchange
// record is created and returned. Rule violations are ledger errors.
func LinkTransactions(ctx context.Context, pool *pgxpool.Pool, sourceID, targetID int64, bounds ledger.RatioBounds) (*models.Exchange, error) {
	var created *models.Exchange
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM transactions WHERE id IN ($1, $2) FOR UPDATE`, sourceID, targetID); err != nil {
			return err
		}
		source, err := GetTransaction(ctx, tx, sourceID)
		if err != nil {
			return err
		}
		target, err := GetTransaction(ctx, tx, targetID)
		if err != nil {
			return err
		}

		ex, err := ledger.CheckLink(*source, *target, bounds)
		if err != nil {
			return err
		}
		if err := SetRelated(ctx, tx, sourceID, targetID); err != nil {
			return err
		}
		if ex != nil {
			created, err = CreateExchange(ctx, tx, *ex)
			return err
		}
		return nil
	})
	return created, err
}

// IsRuleViolation reports whether err is a rejected link rather than a
// storage failure.
func IsRuleViolation(err error) bool {
	for _, e := range []error{
		ledger.ErrSameTransaction, ledger.ErrSameAccount, ledger.ErrNotInternal,
		ledger.ErrAlreadyLinked, ledger.ErrAmountMismatch, ledger.ErrDateMismatch,
		ledger.ErrCurrencyMismatch, ledger.ErrUnsupportedPair, ledger.ErrRatioOutOfRange,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// SuggestLinks proposes pairs among unlinked internal transactions.
func SuggestLinks(ctx context.Context, q db.Querier, windowDays int, bounds ledger.RatioBounds) ([]ledger.Pair, error) {
	internal := true
	f := TransactionFilter{Unlinked: true, Ascending: true}
	f.IsInternal = &internal
	txns, err := AllTransactions(ctx, q, f)
	if err != nil {
		return nil, err
	}
	return ledger.SuggestPairs(txns, windowDays, bounds), nil
}

// ApplySuggestions links every suggested pair and returns how many were
// linked. Pairs that no longer pass the checks are skipped.
func ApplySuggestions(ctx context.Context, pool *pgxpool.Pool, pairs []ledger.Pair, bounds ledger.RatioBounds) (int, error) {
	linked := 0
	for _, p := range pairs {
		_, err := LinkTransactions(ctx, pool, p.Source.ID, p.Target.ID, bounds)
		if err != nil {
			if IsRuleViolation(err) {
				logger.Log.Warn().Err(err).Int64("source", p.Source.ID).Int64("target", p.Target.ID).Msg("skipping suggested link")
				continue
			}
			return linked, err
		}
		linked++
	}
	return linked, nil
}

// ApplyTransactionRules runs the rules over unreviewed transactions and writes
// the changes they make.
func ApplyTransactionRules(ctx context.Context, pool *pgxpool.Pool) ([]ledger.RuleChange, error) {
	rules, err := GetAllTransactionRules(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	reviewed := false
	f := TransactionFilter{}
	f.Reviewed = &reviewed
	txns, err := AllTransactions(ctx, pool, f)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	changes := ledger.ApplyRules(rules, txns)
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, ch := range changes {
			if err := ApplyRuleChange(ctx, tx, ch.TransactionID, ch.Category, ch.RetailerID, ch.IsInternal, ch.Reviewed); err != nil {
				return fmt.Errorf("failed to update transaction %d: %w", ch.TransactionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		logger.Log.Info().Int("changed", len(changes)).Msg("transaction rules applied")
		for _, ch := range changes {
			logger.Log.Debug().
				Int64("transaction", ch.TransactionID).
				Int64("rule", ch.RuleID).
				Str("from", string(ch.OldCategory)).
				Str("to", string(ch.Category)).
				Msg("rule matched")
		}
	} else {
		logger.Log.Info().Msg("no transactions adjusted by rules")
	}
	return changes, nil
}

// RecategorizeRetailers sets each retailer's category to the one its
// transactions use most and returns how many retailers changed.
func RecategorizeRetailers(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	counts, err := CategoryCounts(ctx, pool)
	if err != nil {
		return 0, err
	}
	retailers, err := RetailerMap(ctx, pool)
	if err != nil {
		return 0, err
	}

	changed := 0
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for id, category := range ledger.MostFrequentCategory(counts) {
			r, ok := retailers[id]
			if !ok || r.Category == category {
				continue
			}
			if err := SetRetailerCategory(ctx, tx, id, category); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}

// AddTransactionDetail stores a line item and marks the transaction reviewed
// once its items account for the whole amount.
func AddTransactionDetail(ctx context.Context, pool *pgxpool.Pool, d models.TransactionDetail) (*models.TransactionDetail, bool, error) {
	var created *models.TransactionDetail
	balanced := false
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		txn, err := GetTransaction(ctx, tx, d.TransactionID)
		if err != nil {
			return err
		}
		if _, err := GetDetailItem(ctx, tx, d.ItemID); err != nil {
			return err
		}
		if created, err = CreateTransactionDetail(ctx, tx, d); err != nil {
			return err
		}
		details, err := ListTransactionDetails(ctx, tx, d.TransactionID)
		if err != nil {
			return err
		}
		if ledger.DetailsBalanced(txn.Amount, details) {
			balanced = true
			return SetReviewed(ctx, tx, txn.ID, true)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return created, balanced, nil
}
