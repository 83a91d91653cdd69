package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Decimal is the GraphQL Decimal scalar.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) ImplementsGraphQLType(name string) bool {
	return name == "Decimal"
}

func (d *Decimal) UnmarshalGraphQL(input interface{}) error {
	var err error
	switch v := input.(type) {
	case string:
		d.Decimal, err = decimal.NewFromString(v)
	case int32:
		d.Decimal = decimal.NewFromInt32(v)
	case int:
		d.Decimal = decimal.NewFromInt(int64(v))
	case int64:
		d.Decimal = decimal.NewFromInt(v)
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	default:
		err = fmt.Errorf("wrong type for Decimal: %T", v)
	}
	return err
}

func newDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

func nullDecimal(d decimal.NullDecimal) *Decimal {
	if !d.Valid {
		return nil
	}
	return &Decimal{Decimal: d.Decimal}
}

// Date is the GraphQL Date scalar.
type Date struct {
	time.Time
}

func (Date) ImplementsGraphQLType(name string) bool {
	return name == "Date"
}

func (d *Date) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("wrong type for Date: %T", input)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(dateLayout))
}

func newDate(t time.Time) Date {
	return Date{Time: t}
}

func optionalDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}
