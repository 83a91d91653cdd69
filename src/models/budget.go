package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit for one category in one currency.
type Budget struct {
	ID        int64               `json:"id"`
	Amount    decimal.Decimal     `json:"amount"`
	Category  TransactionCategory `json:"category"`
	Currency  Currency            `json:"currency"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
