package ordering

import (
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var maxPercent = decimal.NewFromInt(100)

// OptionInput is one selected option on a line
type OptionInput struct {
	PriceAdjustment decimal.Decimal
	Quantity        int
}

// LineInput is one order line as seen by the calculator
type LineInput struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Options   []OptionInput
}

// TotalsInput carries everything the order total depends on
type TotalsInput struct {
	Lines           []LineInput
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	CouponDiscount  decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	ServiceCharge   decimal.Decimal
	DeliveryFee     decimal.Decimal
	PackagingFee    decimal.Decimal
}

// Totals is the calculator output, rounded to cents
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// LineTotal is (unit price + option adjustments) times quantity, unrounded
func LineTotal(l LineInput) decimal.Decimal {
	if l.Quantity <= 0 {
		return decimal.Zero
	}
	unit := l.UnitPrice
	for _, opt := range l.Options {
		if opt.Quantity <= 0 {
			continue
		}
		unit = unit.Add(opt.PriceAdjustment.Mul(decimal.NewFromInt(int64(opt.Quantity))))
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CalculateTotals is a total function: out-of-range inputs are clamped, never rejected.
// Percent discounts cap at 100%, amount discounts cap at the subtotal and the
// pre-fee amount floors at zero.
func CalculateTotals(in TotalsInput) Totals {
	raw := decimal.Zero
	for _, l := range in.Lines {
		raw = raw.Add(LineTotal(l))
	}
	subtotal := valueobject.RoundMoney(valueobject.NonNegative(raw))

	discountValue := valueobject.NonNegative(in.DiscountValue)
	var discount decimal.Decimal
	switch in.DiscountType {
	case DiscountTypePercent:
		discount = valueobject.Percentage(subtotal, decimal.Min(discountValue, maxPercent))
	default:
		discount = decimal.Min(discountValue, subtotal)
	}
	discount = valueobject.RoundMoney(discount)

	net := subtotal.
		Sub(discount).
		Sub(valueobject.NonNegative(in.CouponDiscount)).
		Sub(valueobject.NonNegative(in.LoyaltyDiscount))
	net = valueobject.NonNegative(net)

	fees := valueobject.Sum(
		valueobject.NonNegative(in.ServiceCharge),
		valueobject.NonNegative(in.DeliveryFee),
		valueobject.NonNegative(in.PackagingFee),
	)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          valueobject.RoundMoney(net.Add(fees)),
	}
}
