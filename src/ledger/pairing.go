package ledger

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"money-server/src/models"
)

// Violations of the linking rules. Handlers report them as conflicts.
var (
	ErrSameTransaction  = errors.New("cannot link a transaction to itself")
	ErrSameAccount      = errors.New("linked transactions must be in different accounts")
	ErrNotInternal      = errors.New("both transactions must be internal")
	ErrAlreadyLinked    = errors.New("transaction is already linked")
	ErrAmountMismatch   = errors.New("transfer amounts do not cancel out")
	ErrDateMismatch     = errors.New("exchange legs must share a date")
	ErrCurrencyMismatch = errors.New("transfer legs must share a currency")
	ErrUnsupportedPair  = errors.New("exchange must involve KRW")
	ErrRatioOutOfRange  = errors.New("exchange ratio out of range")
)

// RatioBounds is the accepted KRW-per-unit range for exchanges.
type RatioBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func NewRatioBounds(min, max float64) RatioBounds {
	return RatioBounds{Min: decimal.NewFromFloat(min), Max: decimal.NewFromFloat(max)}
}

func (b RatioBounds) contains(r decimal.Decimal) bool {
	return !r.LessThan(b.Min) && !r.GreaterThan(b.Max)
}

// Transactions passed to the checks need Currency filled in.
func checkLinkable(a, b models.Transaction) error {
	switch {
	case a.ID == b.ID:
		return ErrSameTransaction
	case a.AccountID == b.AccountID:
		return ErrSameAccount
	case !a.IsInternal || !b.IsInternal:
		return ErrNotInternal
	case a.RelatedTransactionID != nil || b.RelatedTransactionID != nil:
		return ErrAlreadyLinked
	}
	return nil
}

// CheckTransfer validates a same-currency internal transfer.
func CheckTransfer(a, b models.Transaction) error {
	if err := checkLinkable(a, b); err != nil {
		return err
	}
	if a.Currency != b.Currency {
		return ErrCurrencyMismatch
	}
	if !nearlyZero(a.Amount.Add(b.Amount)) {
		return ErrAmountMismatch
	}
	return nil
}

// ExchangeRatio is the KRW amount per unit of the other currency.
func ExchangeRatio(source, target models.Transaction) (decimal.Decimal, error) {
	var krw, other decimal.Decimal
	switch {
	case source.Currency == models.KRW && target.Currency != models.KRW:
		krw, other = source.Amount, target.Amount
	case target.Currency == models.KRW && source.Currency != models.KRW:
		krw, other = target.Amount, source.Amount
	default:
		return decimal.Zero, ErrUnsupportedPair
	}
	if other.IsZero() {
		return decimal.Zero, ErrRatioOutOfRange
	}
	return krw.Div(other).Neg().Round(2), nil
}

// CheckExchange validates a currency exchange from source to target and
// returns the exchange record describing it.
func CheckExchange(source, target models.Transaction, bounds RatioBounds) (models.Exchange, error) {
	if err := checkLinkable(source, target); err != nil {
		return models.Exchange{}, err
	}
	if !source.Date.Equal(target.Date) {
		return models.Exchange{}, ErrDateMismatch
	}
	ratio, err := ExchangeRatio(source, target)
	if err != nil {
		return models.Exchange{}, err
	}
	if !bounds.contains(ratio) {
		return models.Exchange{}, ErrRatioOutOfRange
	}
	return models.Exchange{
		Date:            source.Date,
		FromTransaction: source.ID,
		ToTransaction:   target.ID,
		FromAmount:      source.Amount,
		ToAmount:        target.Amount,
		FromCurrency:    source.Currency,
		ToCurrency:      target.Currency,
		RatioPerKRW:     &ratio,
		ExchangeType:    models.ExchangeEtc,
	}, nil
}

// CheckLink validates linking source and target. A non-nil exchange is
// returned when the pair is a currency exchange.
func CheckLink(source, target models.Transaction, bounds RatioBounds) (*models.Exchange, error) {
	if source.Currency == target.Currency {
		return nil, CheckTransfer(source, target)
	}
	ex, err := CheckExchange(source, target, bounds)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// Pair is a suggested link between two transactions.
type Pair struct {
	Source    models.Transaction `json:"source"`
	Target    models.Transaction `json:"target"`
	Exchange  *models.Exchange   `json:"exchange,omitempty"`
	DaysApart int                `json:"days_apart"`
}

func daysApart(a, b models.Transaction) int {
	d := int(a.Date.Sub(b.Date).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// SuggestPairs proposes links among unlinked internal transactions. Walking
// in date order, each transaction takes the closest-dated compatible partner
// within windowDays; ties go to the lower id. Transfers are matched before
// exchanges, and a transaction appears in at most one pair.
func SuggestPairs(txns []models.Transaction, windowDays int, bounds RatioBounds) []Pair {
	candidates := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsInternal && t.RelatedTransactionID == nil {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date) {
			return candidates[i].Date.Before(candidates[j].Date)
		}
		return candidates[i].ID < candidates[j].ID
	})

	used := make(map[int64]bool)
	var pairs []Pair

	match := func(accept func(a, b models.Transaction) (*models.Exchange, bool)) {
		for i, a := range candidates {
			if used[a.ID] {
				continue
			}
			best := -1
			var bestEx *models.Exchange
			for j, b := range candidates {
				if i == j || used[b.ID] || daysApart(a, b) > windowDays {
					continue
				}
				ex, ok := accept(a, b)
				if !ok {
					continue
				}
				if best < 0 || daysApart(a, b) < daysApart(a, candidates[best]) ||
					(daysApart(a, b) == daysApart(a, candidates[best]) && b.ID < candidates[best].ID) {
					best, bestEx = j, ex
				}
			}
			if best < 0 {
				continue
			}
			b := candidates[best]
			used[a.ID], used[b.ID] = true, true
			src, dst := a, b
			if bestEx != nil && bestEx.FromTransaction != a.ID {
				src, dst = b, a
			}
			pairs = append(pairs, Pair{Source: src, Target: dst, Exchange: bestEx, DaysApart: daysApart(a, b)})
		}
	}

	match(func(a, b models.Transaction) (*models.Exchange, bool) {
		return nil, a.Currency == b.Currency && CheckTransfer(a, b) == nil
	})
	match(func(a, b models.Transaction) (*models.Exchange, bool) {
		if a.Currency == b.Currency {
			return nil, false
		}
		// The outgoing leg is the source of an exchange.
		src, dst := a, b
		if src.Amount.IsPositive() {
			src, dst = b, a
		}
		ex, err := CheckExchange(src, dst, bounds)
		if err != nil {
			return nil, false
		}
		return &ex, true
	})
	return pairs
}
