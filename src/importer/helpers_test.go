package importer

import "github.com/shopspring/decimal"

func intPtr(i int) *int { return &i }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
