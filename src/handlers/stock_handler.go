package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type stockRequest struct {
	Name     string          `json:"name"`
	Ticker   *string         `json:"ticker"`
	Currency models.Currency `json:"currency"`
}

func (req stockRequest) toStock() (models.Stock, error) {
	s := models.Stock{Name: strings.TrimSpace(req.Name), Ticker: req.Ticker, Currency: req.Currency}
	if s.Name == "" {
		return s, invalid("stock name is required")
	}
	if !s.Currency.Valid() {
		return s, invalid("invalid currency %q", s.Currency)
	}
	return s, nil
}

func ListStocks(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stocks, err := db.ListStocks(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "list stocks")
			return
		}
		if stocks == nil {
			stocks = []models.Stock{}
		}
		writeJSON(w, http.StatusOK, stocks)
	}
}

func CreateStock(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create stock")
			return
		}
		s, err := req.toStock()
		if err != nil {
			writeError(w, r, err, "create stock")
			return
		}
		created, err := db.CreateStock(r.Context(), env.Pool, s)
		if err != nil {
			writeError(w, r, err, "create stock")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GetStock returns the stock with its recorded prices.
func GetStock(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_id")
		if err != nil {
			writeError(w, r, err, "get stock")
			return
		}
		s, err := db.GetStock(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get stock")
			return
		}
		prices, err := db.ListStockPrices(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "list stock prices")
			return
		}
		if prices == nil {
			prices = []models.StockPrice{}
		}
		writeJSON(w, http.StatusOK, struct {
			*models.Stock
			Prices []models.StockPrice `json:"prices"`
		}{s, prices})
	}
}

func UpdateStock(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_id")
		if err != nil {
			writeError(w, r, err, "update stock")
			return
		}
		var req stockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update stock")
			return
		}
		s, err := req.toStock()
		if err != nil {
			writeError(w, r, err, "update stock")
			return
		}
		s.ID = id
		updated, err := db.UpdateStock(r.Context(), env.Pool, s)
		if err != nil {
			writeError(w, r, err, "update stock")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteStock(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_id")
		if err != nil {
			writeError(w, r, err, "delete stock")
			return
		}
		if err := db.DeleteStock(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete stock")
			return
		}
		writeMessage(w, "stock deleted")
	}
}

// SaveStockPrice records the closing price of a stock for a day.
func SaveStockPrice(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_id")
		if err != nil {
			writeError(w, r, err, "save stock price")
			return
		}
		var req struct {
			Date  string          `json:"date"`
			Price decimal.Decimal `json:"price"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "save stock price")
			return
		}
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, r, invalid("invalid date %q", req.Date), "save stock price")
			return
		}
		if !req.Price.IsPositive() {
			writeError(w, r, invalid("price must be positive"), "save stock price")
			return
		}
		p, err := db.UpsertStockPrice(r.Context(), env.Pool, models.StockPrice{StockID: id, Date: date, Price: req.Price})
		if err != nil {
			writeError(w, r, err, "save stock price")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type stockTransactionRequest struct {
	Date                 string          `json:"date"`
	AccountID            int64           `json:"account_id"`
	StockID              int64           `json:"stock_id"`
	RelatedTransactionID *int64          `json:"related_transaction_id"`
	Price                decimal.Decimal `json:"price"`
	Shares               decimal.Decimal `json:"shares"`
	Amount               decimal.Decimal `json:"amount"`
	Note                 string          `json:"note"`
}

// toStockTransaction validates the trade. A zero amount is derived as
// -(price x shares), buying shares costs money.
func (req stockTransactionRequest) toStockTransaction() (models.StockTransaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.StockTransaction{}, invalid("invalid date %q", req.Date)
	}
	switch {
	case req.AccountID <= 0:
		return models.StockTransaction{}, invalid("account_id is required")
	case req.StockID <= 0:
		return models.StockTransaction{}, invalid("stock_id is required")
	case req.Shares.IsZero():
		return models.StockTransaction{}, invalid("shares must not be zero")
	}
	st := models.StockTransaction{
		Date:                 date,
		AccountID:            req.AccountID,
		StockID:              req.StockID,
		RelatedTransactionID: req.RelatedTransactionID,
		Price:                req.Price,
		Shares:               req.Shares,
		Amount:               req.Amount,
		Note:                 req.Note,
	}
	if st.Amount.IsZero() {
		st.Amount = ledger.TradeAmount(st.Price, st.Shares)
	}
	return st, nil
}

func ListStockTransactions(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := queryInt64(r, "account_id")
		if err != nil {
			writeError(w, r, err, "list stock transactions")
			return
		}
		var id int64
		if accountID != nil {
			id = *accountID
		}
		trades, err := db.ListStockTransactions(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "list stock transactions")
			return
		}
		if trades == nil {
			trades = []models.StockTransaction{}
		}
		writeJSON(w, http.StatusOK, trades)
	}
}

// CreateStockTransaction stores the trade and refreshes the share balances
// of its account.
func CreateStockTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockTransactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create stock transaction")
			return
		}
		st, err := req.toStockTransaction()
		if err != nil {
			writeError(w, r, err, "create stock transaction")
			return
		}
		ctx := r.Context()
		created, err := db.AddStockTransaction(ctx, env.Pool, st)
		if err != nil {
			writeError(w, r, err, "create stock transaction")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateStockTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_transaction_id")
		if err != nil {
			writeError(w, r, err, "update stock transaction")
			return
		}
		var req stockTransactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update stock transaction")
			return
		}
		st, err := req.toStockTransaction()
		if err != nil {
			writeError(w, r, err, "update stock transaction")
			return
		}
		st.ID = id
		ctx := r.Context()
		var updated *models.StockTransaction
		err = store.WithTx(ctx, env.Pool, func(tx pgx.Tx) error {
			old, err := db.GetStockTransaction(ctx, tx, id)
			if err != nil {
				return err
			}
			if _, err := db.UpdateStockTransaction(ctx, tx, st); err != nil {
				return err
			}
			if old.AccountID != st.AccountID {
				if err := db.Recalculate(ctx, tx, old.AccountID); err != nil {
					return err
				}
			}
			if err := db.Recalculate(ctx, tx, st.AccountID); err != nil {
				return err
			}
			updated, err = db.GetStockTransaction(ctx, tx, id)
			return err
		})
		if err != nil {
			writeError(w, r, err, "update stock transaction")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteStockTransaction(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "stock_transaction_id")
		if err != nil {
			writeError(w, r, err, "delete stock transaction")
			return
		}
		ctx := r.Context()
		err = store.WithTx(ctx, env.Pool, func(tx pgx.Tx) error {
			st, err := db.GetStockTransaction(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := db.DeleteStockTransaction(ctx, tx, id); err != nil {
				return err
			}
			return db.Recalculate(ctx, tx, st.AccountID)
		})
		if err != nil {
			writeError(w, r, err, "delete stock transaction")
			return
		}
		logger.Log.Info().Int64("stock_transaction_id", id).Msg("Deleted stock transaction")
		env.ledgerChanged()
		writeMessage(w, "stock transaction deleted")
	}
}

// StockSnapshot replays every trade and returns per-day holdings, the stock
// names seen and the chart of total value.
func StockSnapshot(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := db.StockEntries(r.Context(), env.Pool, ledger.StockCurrency)
		if err != nil {
			writeError(w, r, err, "build stock snapshot")
			return
		}
		snaps, names := ledger.StockSnapshots(entries)
		if snaps == nil {
			snaps = []ledger.StockSnapshot{}
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"snapshots": snaps,
			"stocks":    names,
			"chart":     ledger.StockChart(snaps),
		})
	}
}

func ListHoldings(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holdings, err := db.ListHoldings(r.Context(), env.Pool, 0)
		if err != nil {
			writeError(w, r, err, "list holdings")
			return
		}
		if holdings == nil {
			holdings = []models.StockHolding{}
		}
		writeJSON(w, http.StatusOK, holdings)
	}
}
