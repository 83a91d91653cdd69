// Package cmd holds the money-server command line: the HTTP server and the
// batch jobs that maintain balances, snapshots and links.
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"money-server/src/config"
	"money-server/src/db"
	"money-server/src/ledger"
	"money-server/src/logger"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "money-server",
	Short: "Personal finance tracker",
	Long: `money-server tracks bank accounts, transactions, stocks, salary and
currency exchanges, and serves them over a JSON and GraphQL API.

Example:
  money-server serve
  money-server recalculate --all
  money-server match --apply`,
	SilenceUsage: true,
}

// Execute runs the command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recalculateCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(retailersCmd)
	rootCmd.AddCommand(plaidCmd)
}

// app is what every command needs once configuration is loaded.
type app struct {
	cfg  config.Config
	pool *pgxpool.Pool
}

func (a *app) bounds() ledger.RatioBounds {
	return ledger.NewRatioBounds(a.cfg.ExchangeRatioMin, a.cfg.ExchangeRatioMax)
}

func (a *app) Close() {
	a.pool.Close()
}

// setup loads configuration, initializes logging and opens a migrated pool.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger.Init(level, cfg.LogPretty)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &app{cfg: cfg, pool: pool}, nil
}
