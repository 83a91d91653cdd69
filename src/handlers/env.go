package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"

	"money-server/src/config"
	store "money-server/src/db"
	"money-server/src/importer"
	"money-server/src/ledger"
)

// Env is what handlers share: the pool, the read cache, configuration and
// the optional Plaid client.
type Env struct {
	Pool     *pgxpool.Pool
	Cache    *store.Cache
	Config   config.Config
	Plaid    *plaid.APIClient
	Profiles importer.Profiles
}

func (e *Env) bounds() ledger.RatioBounds {
	return ledger.NewRatioBounds(e.Config.ExchangeRatioMin, e.Config.ExchangeRatioMax)
}

func (e *Env) chartOptions() ledger.ChartOptions {
	return ledger.ChartOptions{
		SampleThreshold: e.Config.ChartSampleThreshold,
		SampleRatio:     e.Config.ChartSampleRatio,
	}
}

// ledgerChanged drops cached reads that depend on transactions or balances.
func (e *Env) ledgerChanged() {
	e.Cache.Invalidate(store.AccountCache, store.DashboardCache)
}
