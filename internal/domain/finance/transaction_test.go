package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revenueRow(method, amount string) FinancialTransaction {
	return FinancialTransaction{Type: TransactionTypeRevenue, PaymentMethod: method, Amount: amt(amount)}
}

func TestSplitRefund_CashShareFirst(t *testing.T) {
	rows := []FinancialTransaction{
		revenueRow("credit_card", "6"),
		revenueRow(PaymentMethodCash, "4"),
	}

	shares := SplitRefund(rows, amt("10"), "credit_card")
	require.Len(t, shares, 2)
	assert.Equal(t, PaymentMethodCash, shares[0].PaymentMethod)
	assert.Equal(t, "4.00", shares[0].Amount.StringFixed(2))
	assert.Equal(t, "credit_card", shares[1].PaymentMethod)
	assert.Equal(t, "6.00", shares[1].Amount.StringFixed(2))
}

func TestSplitRefund_CapsAtRefund(t *testing.T) {
	// a payment may overshoot the balance by the tolerance
	rows := []FinancialTransaction{
		revenueRow("pix", "5.01"),
		revenueRow("pix", "5"),
		{Type: TransactionTypeExpense, PaymentMethod: PaymentMethodCash, Amount: amt("3")},
	}

	shares := SplitRefund(rows, amt("10"), "pix")
	require.Len(t, shares, 1)
	assert.Equal(t, "pix", shares[0].PaymentMethod)
	assert.Equal(t, "10.00", shares[0].Amount.StringFixed(2))
}

func TestSplitRefund_FallbackWithoutRows(t *testing.T) {
	shares := SplitRefund(nil, amt("7.5"), "voucher")
	require.Len(t, shares, 1)
	assert.Equal(t, "voucher", shares[0].PaymentMethod)
	assert.Equal(t, "7.50", shares[0].Amount.StringFixed(2))

	assert.Empty(t, SplitRefund(nil, amt("0"), "voucher"))
}
