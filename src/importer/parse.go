package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one parsed statement line.
type Row struct {
	Line    int
	Date    time.Time
	Amount  decimal.Decimal
	Balance decimal.NullDecimal
	Note    string
}

type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// ParseErrors collects every bad line of a file.
type ParseErrors []RowError

func (pe ParseErrors) Error() string {
	msgs := make([]string, 0, len(pe))
	for _, e := range pe {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

var errEmptyAmount = errors.New("no amount")

// Parse reads a statement export laid out as p describes. Blank lines are
// skipped. When any line fails, the returned error is ParseErrors and no
// rows are returned.
func Parse(r io.Reader, p Profile) ([]Row, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = p.delimiter()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var rows []Row
	var errs ParseErrors
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			errs = append(errs, RowError{Line: pe.Line, Err: pe.Err})
			continue
		}
		line, _ := cr.FieldPos(0)
		if line <= p.SkipRows || blank(record) {
			continue
		}
		row, err := parseRecord(record, p)
		if err != nil {
			errs = append(errs, RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func column(record []string, i int) (string, error) {
	if i < 0 || i >= len(record) {
		return "", fmt.Errorf("missing column %d", i)
	}
	return strings.TrimSpace(record[i]), nil
}

// parseAmount strips thousands separators. Empty cells are zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDate accepts dotted dates and trailing times, e.g. "2024.05.01 13:22".
// Dots are read as dashes in both the value and the layout.
func parseDate(s, layout string) (time.Time, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
	layout = strings.ReplaceAll(layout, ".", "-")
	t, err := time.Parse(layout, s)
	if err != nil && len(s) > len(layout) {
		t, err = time.Parse(layout, s[:len(layout)])
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func parseRecord(record []string, p Profile) (Row, error) {
	var row Row

	raw, err := column(record, p.DateColumn)
	if err != nil {
		return row, err
	}
	if row.Date, err = parseDate(raw, p.layout()); err != nil {
		return row, err
	}

	if p.AmountColumn != nil {
		raw, err := column(record, *p.AmountColumn)
		if err != nil {
			return row, err
		}
		if row.Amount, err = parseAmount(raw); err != nil {
			return row, err
		}
	} else {
		w, err := column(record, *p.WithdrawColumn)
		if err != nil {
			return row, err
		}
		d, err := column(record, *p.DepositColumn)
		if err != nil {
			return row, err
		}
		withdraw, err := parseAmount(w)
		if err != nil {
			return row, err
		}
		deposit, err := parseAmount(d)
		if err != nil {
			return row, err
		}
		if withdraw.IsZero() {
			row.Amount = deposit
		} else {
			row.Amount = withdraw.Abs().Neg()
		}
	}
	if p.Negate {
		row.Amount = row.Amount.Neg()
	}
	if row.Amount.IsZero() {
		return row, errEmptyAmount
	}

	note := make(map[string]any, len(p.NoteColumns)+1)
	for key, i := range p.NoteColumns {
		v, err := column(record, i)
		if err != nil {
			return row, err
		}
		note[key] = v
	}
	if p.BalanceColumn != nil {
		raw, err := column(record, *p.BalanceColumn)
		if err != nil {
			return row, err
		}
		b, err := parseAmount(raw)
		if err != nil {
			return row, err
		}
		row.Balance = decimal.NullDecimal{Decimal: b, Valid: true}
		note["balance"] = b
	}
	if len(note) > 0 {
		// Map keys are sorted by encoding/json.
		buf, err := json.Marshal(note)
		if err != nil {
			return row, err
		}
		row.Note = string(buf)
	}
	return row, nil
}
