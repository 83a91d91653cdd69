package ledger

import (
	"github.com/shopspring/decimal"

	"money-server/src/models"
)

// DetailSum is the itemized total, amount times count per line.
func DetailSum(details []models.TransactionDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Amount.Mul(d.Count))
	}
	return total
}

// DetailLeftover is the part of a purchase not yet covered by items. Item
// amounts are positive while the purchase amount is negative.
func DetailLeftover(amount decimal.Decimal, details []models.TransactionDetail) decimal.Decimal {
	return amount.Neg().Sub(DetailSum(details))
}

// DetailsBalanced reports whether the items account for the whole amount.
func DetailsBalanced(amount decimal.Decimal, details []models.TransactionDetail) bool {
	return nearlyZero(amount.Add(DetailSum(details)))
}

// CategoryCount is how often a retailer's transactions carry a category.
type CategoryCount struct {
	RetailerID int64
	Category   models.TransactionCategory
	Count      int
}

// MostFrequentCategory picks each retailer's most used category. Ties go to
// the alphabetically first category.
func MostFrequentCategory(counts []CategoryCount) map[int64]models.TransactionCategory {
	best := make(map[int64]CategoryCount)
	for _, c := range counts {
		cur, ok := best[c.RetailerID]
		if !ok || c.Count > cur.Count || (c.Count == cur.Count && c.Category < cur.Category) {
			best[c.RetailerID] = c
		}
	}
	out := make(map[int64]models.TransactionCategory, len(best))
	for id, c := range best {
		out[id] = c.Category
	}
	return out
}
