package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"money-server/src/db"
	dbsql "money-server/src/db/sql"
	"money-server/src/importer"
	"money-server/src/logger"
	"money-server/src/plaid"
)

var (
	recalculateAll bool
	matchApply     bool
	importAccount  int64
	importProfile  string
)

var recalculateCmd = &cobra.Command{
	Use:   "recalculate [account-id]",
	Short: "Recompute running balances",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !recalculateAll && len(args) == 0 {
			return errors.New("an account id or --all is required")
		}
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if recalculateAll {
			n, err := dbsql.RecalculateAll(ctx, a.pool)
			if err != nil {
				return err
			}
			logger.Log.Info().Int("accounts", n).Msg("Recalculated all accounts")
			return nil
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid account id %q", args[0])
		}
		if err := db.WithTx(ctx, a.pool, func(tx pgx.Tx) error {
			return dbsql.Recalculate(ctx, tx, id)
		}); err != nil {
			return err
		}
		logger.Log.Info().Int64("account_id", id).Msg("Recalculated account")
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Rebuild daily balance snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := dbsql.RebuildSnapshots(ctx, a.pool)
		if err != nil {
			return err
		}
		logger.Log.Info().Int("snapshots", n).Msg("Rebuilt snapshots")
		return nil
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Suggest links between internal transfers and exchanges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		pairs, err := dbsql.SuggestLinks(ctx, a.pool, a.cfg.MatchWindowDays, a.bounds())
		if err != nil {
			return err
		}
		for _, p := range pairs {
			ev := logger.Log.Info().
				Int64("source", p.Source.ID).
				Int64("target", p.Target.ID).
				Str("amount", p.Source.Amount.String()).
				Int("days_apart", p.DaysApart)
			if p.Exchange != nil && p.Exchange.RatioPerKRW != nil {
				ev = ev.Str("ratio", p.Exchange.RatioPerKRW.String())
			}
			ev.Msg("Suggested link")
		}
		if !matchApply {
			logger.Log.Info().Int("suggested", len(pairs)).Msg("Dry run, pass --apply to link")
			return nil
		}
		linked, err := dbsql.ApplySuggestions(ctx, a.pool, pairs, a.bounds())
		if err != nil {
			return err
		}
		logger.Log.Info().Int("suggested", len(pairs)).Int("linked", linked).Msg("Applied match suggestions")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a bank statement export into an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := importer.LoadProfiles(a.cfg.ImportProfiles)
		if err != nil {
			return fmt.Errorf("failed to load import profiles: %w", err)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := importer.Import(ctx, a.pool, profiles, importAccount, importProfile, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		logger.Log.Info().
			Str("batch", res.Batch.ID).
			Int("rows", res.Batch.RowCount).
			Str("amount", res.Account.Amount.String()).
			Msg("Imported statement")
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Transaction rule jobs",
}

var rulesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply every active rule to unreviewed transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		changes, err := dbsql.ApplyTransactionRules(ctx, a.pool)
		if err != nil {
			return err
		}
		for _, c := range changes {
			logger.Log.Debug().
				Int64("transaction_id", c.TransactionID).
				Int64("rule_id", c.RuleID).
				Str("from", string(c.OldCategory)).
				Str("to", string(c.Category)).
				Msg("Rule applied")
		}
		logger.Log.Info().Int("changed", len(changes)).Msg("Applied transaction rules")
		return nil
	},
}

var retailersCmd = &cobra.Command{
	Use:   "retailers",
	Short: "Retailer jobs",
}

var retailersRecategorizeCmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Copy each retailer's category onto its unreviewed transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := dbsql.RecategorizeRetailers(ctx, a.pool)
		if err != nil {
			return err
		}
		logger.Log.Info().Int("updated", n).Msg("Recategorized retailers")
		return nil
	},
}

var plaidCmd = &cobra.Command{
	Use:   "plaid",
	Short: "Plaid jobs",
}

var plaidSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync transactions of every linked Plaid item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.PlaidEnabled() {
			return errors.New("plaid is not configured")
		}
		client, err := plaid.NewPlaidClient(a.cfg.PlaidClientID, a.cfg.PlaidSecret, a.cfg.PlaidEnv)
		if err != nil {
			return err
		}
		res, err := plaid.SyncAll(ctx, client, a.pool)
		if err != nil {
			return err
		}
		logger.Log.Info().
			Int("added", res.Added).
			Int("modified", res.Modified).
			Int("removed", res.Removed).
			Int("accounts", len(res.Accounts)).
			Msg("Plaid sync finished for all items")
		return nil
	},
}

func init() {
	recalculateCmd.Flags().BoolVar(&recalculateAll, "all", false, "recalculate every account")
	matchCmd.Flags().BoolVar(&matchApply, "apply", false, "link the suggested pairs")

	importCmd.Flags().Int64Var(&importAccount, "account", 0, "account id to import into")
	importCmd.Flags().StringVar(&importProfile, "profile", "", "import profile name")
	_ = importCmd.MarkFlagRequired("account")
	_ = importCmd.MarkFlagRequired("profile")

	rulesCmd.AddCommand(rulesApplyCmd)
	retailersCmd.AddCommand(retailersRecategorizeCmd)
	plaidCmd.AddCommand(plaidSyncCmd)
}
