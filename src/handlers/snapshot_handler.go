package handlers

import (
	"net/http"

	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

// ListSnapshots returns daily snapshots oldest first, filtered by ?currency
// and ?since.
func ListSnapshots(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := queryCurrency(r)
		if err != nil {
			writeError(w, r, err, "list snapshots")
			return
		}
		since, err := queryDate(r, "since")
		if err != nil {
			writeError(w, r, err, "list snapshots")
			return
		}
		snaps, err := db.ListSnapshots(r.Context(), env.Pool, c, since)
		if err != nil {
			writeError(w, r, err, "list snapshots")
			return
		}
		if snaps == nil {
			snaps = []models.AmountSnapshot{}
		}
		writeJSON(w, http.StatusOK, snaps)
	}
}

// SnapshotCharts plots the snapshot series of every currency, plus the
// brokerage cash series merged with the valued stock holdings.
func SnapshotCharts(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, err := queryDate(r, "since")
		if err != nil {
			writeError(w, r, err, "chart snapshots")
			return
		}
		ctx := r.Context()
		snaps, err := db.ListSnapshots(ctx, env.Pool, "", since)
		if err != nil {
			writeError(w, r, err, "chart snapshots")
			return
		}
		entries, err := db.StockEntries(ctx, env.Pool, ledger.StockCurrency)
		if err != nil {
			writeError(w, r, err, "chart snapshots")
			return
		}

		charts := make(map[models.Currency][]ledger.Point)
		for _, c := range models.AllCurrencies() {
			points := ledger.SnapshotChart(snaps, c)
			if points == nil {
				points = []ledger.Point{}
			}
			charts[c] = points
		}
		stocks, _ := ledger.StockSnapshots(entries)
		writeJSON(w, http.StatusOK, map[string]any{
			"currencies":      charts,
			"stocks":          ledger.StockChart(stocks),
			"merged":          ledger.PortfolioChart(snaps, stocks),
			"merged_currency": ledger.StockCurrency,
		})
	}
}

// RebuildSnapshots recomputes the daily snapshots of every currency.
func RebuildSnapshots(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := db.RebuildSnapshots(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "rebuild snapshots")
			return
		}
		logger.Log.Info().Int("snapshots", n).Msg("Rebuilt snapshots")
		writeJSON(w, http.StatusOK, map[string]int{"snapshots": n})
	}
}

func DeleteSnapshot(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "snapshot_id")
		if err != nil {
			writeError(w, r, err, "delete snapshot")
			return
		}
		if err := db.DeleteSnapshot(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete snapshot")
			return
		}
		writeMessage(w, "snapshot deleted")
	}
}
