package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	BRL Currency = "BRL"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is the currency every tenant books in
const DefaultCurrency = BRL

const (
	// MoneyPlaces is the scale of every stored monetary amount
	MoneyPlaces int32 = 2
	// QuantityPlaces is the scale of stock and recipe quantities
	QuantityPlaces int32 = 3
)

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -2)

	// PaymentTolerance absorbs sub-cent differences when comparing paid and total
	PaymentTolerance = cent
)

// RoundMoney rounds half away from zero to two places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundQuantity rounds a stock quantity to three places
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// NonNegative floors d at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percentage returns pct percent of amount, unrounded
func Percentage(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// WithinTolerance reports whether a and b differ by at most PaymentTolerance
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(PaymentTolerance)
}

// Allocate divides amount into parts that sum exactly to the rounded amount.
// Leftover cents go to the first parts.
func Allocate(amount decimal.Decimal, parts int) ([]decimal.Decimal, error) {
	if parts <= 0 {
		return nil, errors.New("parts must be positive")
	}
	total := RoundMoney(amount)
	if parts == 1 {
		return []decimal.Decimal{total}, nil
	}

	n := decimal.NewFromInt(int64(parts))
	base := total.Div(n).Truncate(MoneyPlaces)
	remainderCents := total.Sub(base.Mul(n)).Mul(hundred).IntPart()

	result := make([]decimal.Decimal, parts)
	for i := range parts {
		share := base
		if int64(i) < remainderCents {
			share = share.Add(cent)
		}
		result[i] = share
	}
	return result, nil
}

// Sum adds the given amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
