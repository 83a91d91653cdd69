package models

import "time"

type ImportBatch struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"account_id"`
	Profile   string    `json:"profile"`
	FileName  string    `json:"file_name"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}
