package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                   int64               `json:"id"`
	AccountID            int64               `json:"account_id"`
	RetailerID           *int64              `json:"retailer_id"`
	Amount               decimal.Decimal     `json:"amount"`
	Balance              decimal.NullDecimal `json:"balance"`
	Date                 time.Time           `json:"date"`
	Note                 *string             `json:"note"`
	IsInternal           bool                `json:"is_internal"`
	RequiresDetail       bool                `json:"requires_detail"`
	Type                 TransactionCategory `json:"type"`
	Reviewed             bool                `json:"reviewed"`
	RelatedTransactionID *int64              `json:"related_transaction_id"`
	ExternalID           *string             `json:"external_id,omitempty"`
	ImportBatch          *string             `json:"import_batch,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`

	// Joined columns, filled by list queries.
	AccountName  string   `json:"account_name,omitempty"`
	Currency     Currency `json:"currency,omitempty"`
	RetailerName *string  `json:"retailer_name,omitempty"`
}

// SortingAmount is the balance signed by the direction of the transaction.
func (t Transaction) SortingAmount() decimal.Decimal {
	if !t.Balance.Valid {
		return decimal.Zero
	}
	if t.Amount.IsNegative() {
		return t.Balance.Decimal.Neg()
	}
	return t.Balance.Decimal
}

// TransactionFilter narrows transaction lists. Nil fields are ignored.
type TransactionFilter struct {
	AccountID      *int64
	RetailerID     *int64
	Category       *TransactionCategory
	Currency       *Currency
	Reviewed       *bool
	IsInternal     *bool
	RequiresDetail *bool
	Month          *time.Time
	Year           *int
}

type DetailItem struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Category DetailItemCategory `json:"category"`
}

type TransactionDetail struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"item_name,omitempty"`
	Note          *string         `json:"note"`
	Amount        decimal.Decimal `json:"amount"`
	Count         decimal.Decimal `json:"count"`
}

type Retailer struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	Type     RetailerType        `json:"type"`
	Category TransactionCategory `json:"category"`
}

type Exchange struct {
	ID              int64            `json:"id"`
	Date            time.Time        `json:"date"`
	FromTransaction int64            `json:"from_transaction_id"`
	ToTransaction   int64            `json:"to_transaction_id"`
	FromAmount      decimal.Decimal  `json:"from_amount"`
	ToAmount        decimal.Decimal  `json:"to_amount"`
	FromCurrency    Currency         `json:"from_currency"`
	ToCurrency      Currency         `json:"to_currency"`
	RatioPerKRW     *decimal.Decimal `json:"ratio_per_krw"`
	ExchangeType    ExchangeType     `json:"exchange_type"`
	CreatedAt       time.Time        `json:"created_at"`
}

type AmazonOrder struct {
	ID                  int64     `json:"id"`
	Date                time.Time `json:"date"`
	Item                string    `json:"item"`
	IsReturned          bool      `json:"is_returned"`
	TransactionID       *int64    `json:"transaction_id"`
	ReturnTransactionID *int64    `json:"return_transaction_id"`
}
