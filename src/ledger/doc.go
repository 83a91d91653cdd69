// Package ledger holds the bookkeeping computations behind the dashboards:
// running balances, daily snapshots, chart series, monthly and yearly
// aggregation, salary checks and the pairing of internal transfers and
// currency exchanges. Functions here take rows already fetched from storage
// and never touch the database.
package ledger
