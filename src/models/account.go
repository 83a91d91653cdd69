package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bank struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BankWithCount is a list row carrying the number of accounts at the bank.
type BankWithCount struct {
	Bank
	AccountCount int `json:"account_count"`
}

type Account struct {
	ID               int64           `json:"id"`
	BankID           int64           `json:"bank_id"`
	BankName         string          `json:"bank_name,omitempty"`
	Name             string          `json:"name"`
	Alias            *string         `json:"alias"`
	Type             AccountType     `json:"type"`
	Currency         Currency        `json:"currency"`
	Amount           decimal.Decimal `json:"amount"`
	LastUpdate       *time.Time      `json:"last_update"`
	FirstTransaction *time.Time      `json:"first_transaction"`
	LastTransaction  *time.Time      `json:"last_transaction"`
	IsActive         bool            `json:"is_active"`
	PlaidAccountID   *string         `json:"plaid_account_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DisplayName joins bank and account name the way lists show it.
func (a Account) DisplayName() string {
	if a.BankName == "" {
		return a.Name
	}
	return a.BankName + " " + a.Name
}

// AccountOverview is an account row on the dashboard with review counters.
type AccountOverview struct {
	Account
	NullBalanceCount int `json:"null_balance_count"`
	UnreviewedCount  int `json:"unreviewed_count"`
}

type AmountSnapshot struct {
	ID        int64                      `json:"id"`
	Date      time.Time                  `json:"date"`
	Currency  Currency                   `json:"currency"`
	Amount    decimal.Decimal            `json:"amount"`
	Summary   map[string]decimal.Decimal `json:"summary"`
	CreatedAt time.Time                  `json:"created_at"`
}
