package ordering

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		in           TotalsInput
		wantSubtotal string
		wantDiscount string
		wantTotal    string
	}{
		{
			name: "percent discount plus service charge",
			in: TotalsInput{
				Lines:         []LineInput{{UnitPrice: dec("10.00"), Quantity: 1}},
				DiscountType:  DiscountTypePercent,
				DiscountValue: dec("10"),
				ServiceCharge: dec("1.00"),
			},
			wantSubtotal: "10.00",
			wantDiscount: "1.00",
			wantTotal:    "10.00",
		},
		{
			name: "options are multiplied by option and item quantity",
			in: TotalsInput{
				Lines: []LineInput{{
					UnitPrice: dec("20.00"),
					Quantity:  2,
					Options: []OptionInput{
						{PriceAdjustment: dec("2.50"), Quantity: 2},
						{PriceAdjustment: dec("1.00"), Quantity: 1},
					},
				}},
			},
			wantSubtotal: "52.00",
			wantDiscount: "0.00",
			wantTotal:    "52.00",
		},
		{
			name: "percent above one hundred is capped",
			in: TotalsInput{
				Lines:         []LineInput{{UnitPrice: dec("30.00"), Quantity: 1}},
				DiscountType:  DiscountTypePercent,
				DiscountValue: dec("150"),
				DeliveryFee:   dec("5.00"),
			},
			wantSubtotal: "30.00",
			wantDiscount: "30.00",
			wantTotal:    "5.00",
		},
		{
			name: "amount discount is capped at subtotal",
			in: TotalsInput{
				Lines:         []LineInput{{UnitPrice: dec("8.00"), Quantity: 1}},
				DiscountType:  DiscountTypeAmount,
				DiscountValue: dec("12.00"),
				PackagingFee:  dec("0.50"),
			},
			wantSubtotal: "8.00",
			wantDiscount: "8.00",
			wantTotal:    "0.50",
		},
		{
			name: "coupon and loyalty floor the pre-fee amount at zero",
			in: TotalsInput{
				Lines:           []LineInput{{UnitPrice: dec("15.00"), Quantity: 1}},
				CouponDiscount:  dec("10.00"),
				LoyaltyDiscount: dec("10.00"),
				ServiceCharge:   dec("1.50"),
			},
			wantSubtotal: "15.00",
			wantDiscount: "0.00",
			wantTotal:    "1.50",
		},
		{
			name: "rounds half away from zero",
			in: TotalsInput{
				Lines:         []LineInput{{UnitPrice: dec("3.33"), Quantity: 3}},
				DiscountType:  DiscountTypePercent,
				DiscountValue: dec("12.5"),
			},
			wantSubtotal: "9.99",
			wantDiscount: "1.25",
			wantTotal:    "8.74",
		},
		{
			name: "negative inputs are treated as zero",
			in: TotalsInput{
				Lines:         []LineInput{{UnitPrice: dec("5.00"), Quantity: -1}, {UnitPrice: dec("4.00"), Quantity: 1}},
				DiscountValue: dec("-3"),
				ServiceCharge: dec("-1"),
			},
			wantSubtotal: "4.00",
			wantDiscount: "0.00",
			wantTotal:    "4.00",
		},
		{
			name:         "empty order",
			in:           TotalsInput{},
			wantSubtotal: "0.00",
			wantDiscount: "0.00",
			wantTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.in)
			assert.Equal(t, tt.wantSubtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, got.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.Total.StringFixed(2))
		})
	}
}

func TestCalculateTotals_NeverNegative(t *testing.T) {
	for _, coupon := range []string{"0", "5", "50", "500"} {
		got := CalculateTotals(TotalsInput{
			Lines:          []LineInput{{UnitPrice: dec("12.34"), Quantity: 2}},
			DiscountType:   DiscountTypeAmount,
			DiscountValue:  dec("3"),
			CouponDiscount: dec(coupon),
		})
		assert.False(t, got.Total.IsNegative(), "coupon %s", coupon)
	}
}
