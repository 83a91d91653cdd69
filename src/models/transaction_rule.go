package models

import (
	"encoding/json"
	"time"
)

// TransactionRule assigns category, retailer and flags to unreviewed
// transactions whose fields satisfy Conditions.
type TransactionRule struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Priority   int                 `json:"priority"`
	Conditions json.RawMessage     `json:"conditions"` // JSONB
	Category   TransactionCategory `json:"category"`
	RetailerID *int64              `json:"retailer_id"`
	IsInternal *bool               `json:"is_internal"`
	MarkReview bool                `json:"mark_reviewed"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
