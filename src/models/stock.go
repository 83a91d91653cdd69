package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Ticker   *string  `json:"ticker"`
	Currency Currency `json:"currency"`
}

type StockTransaction struct {
	ID                   int64               `json:"id"`
	Date                 time.Time           `json:"date"`
	AccountID            int64               `json:"account_id"`
	StockID              int64               `json:"stock_id"`
	StockName            string              `json:"stock_name,omitempty"`
	RelatedTransactionID *int64              `json:"related_transaction_id"`
	Price                decimal.Decimal     `json:"price"`
	Shares               decimal.Decimal     `json:"shares"`
	Amount               decimal.Decimal     `json:"amount"`
	Balance              decimal.NullDecimal `json:"balance"`
	Note                 string              `json:"note"`
}

type StockPrice struct {
	ID      int64           `json:"id"`
	StockID int64           `json:"stock_id"`
	Date    time.Time       `json:"date"`
	Price   decimal.Decimal `json:"price"`
}

// StockHolding is the latest share balance of a stock in an account together
// with its latest known price.
type StockHolding struct {
	AccountID int64               `json:"account_id"`
	StockID   int64               `json:"stock_id"`
	StockName string              `json:"stock_name"`
	Shares    decimal.Decimal     `json:"shares"`
	Price     decimal.NullDecimal `json:"price"`
}
