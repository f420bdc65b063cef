package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		paid, total string
		want        PaymentStatus
	}{
		{"0", "10", PaymentStatusUnpaid},
		{"5", "10", PaymentStatusPartial},
		{"9.98", "10", PaymentStatusPartial},
		{"9.99", "10", PaymentStatusPaid},
		{"10", "10", PaymentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.paid+"/"+tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(dec(tt.paid), dec(tt.total)))
		})
	}
}

func TestOrder_RecordPayment_PartialThenPaid(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "10.00", 1)
	require.NoError(t, o.ApplyDiscount(DiscountTypePercent, dec("10")))
	require.NoError(t, o.SetFees(dec("1.00"), decimal.Zero, decimal.Zero))
	require.Equal(t, "10.00", o.TotalAmount.StringFixed(2))

	first, err := o.RecordPayment(dec("6"), PaymentDetails{Method: PaymentMethodCreditCard, Card: &CardDetails{Brand: "visa", Last4: "4242"}})
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPartial, first.Status)
	assert.False(t, first.BecamePaid())

	second, err := o.RecordPayment(dec("4"), PaymentDetails{Method: PaymentMethodCash, Cash: &CashDetails{Received: dec("10")}})
	require.NoError(t, err)
	assert.True(t, second.BecamePaid())
	assert.Equal(t, "6.00", second.Change.StringFixed(2))
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "10.00", o.PaidAmount.StringFixed(2))
	assert.NotNil(t, o.PaidAt)

	var completed int
	for _, e := range o.GetDomainEvents() {
		if e.EventType() == EventTypeOrderPaymentCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestOrder_RecordPayment_Rejections(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "20", 1)

	_, err := o.RecordPayment(decimal.Zero, PaymentDetails{Method: PaymentMethodPix})
	assert.Error(t, err)

	_, err = o.RecordPayment(dec("20.02"), PaymentDetails{Method: PaymentMethodPix})
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
	assert.True(t, o.PaidAmount.IsZero())

	_, err = o.RecordPayment(dec("5"), PaymentDetails{Method: PaymentMethodPix, Cash: &CashDetails{Received: dec("5")}})
	assert.Error(t, err, "mismatched details")
}

func TestOrder_RecordPayment_WithinToleranceIsCapped(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "20", 1)

	res, err := o.RecordPayment(dec("20.01"), PaymentDetails{Method: PaymentMethodDebitCard})
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, res.Status)
	assert.Equal(t, "20.00", o.PaidAmount.StringFixed(2))
}

func TestOrder_Cancel(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "30", 1)
	require.NoError(t, o.AttachCustomer(uuid.New()))
	_, err := o.RecordPayment(dec("30"), PaymentDetails{Method: PaymentMethodCash})
	require.NoError(t, err)
	due, owed := o.CustomerCreditDue()
	require.True(t, owed)
	assert.True(t, o.MarkCustomerCredited(due))
	o.StampLoyaltyEarned(30)
	_, err = o.UpdateStatus(OrderStatusServed)
	require.NoError(t, err)
	o.MarkStockDeducted()

	userID := uuid.New()
	res, err := o.Cancel(userID, "customer complaint")
	require.NoError(t, err)
	assert.True(t, res.WasFullyPaid)
	assert.True(t, res.WasServed)
	assert.Equal(t, 30, res.PointsEarned)
	assert.Equal(t, PaymentMethodCash, res.PaymentMethod)
	assert.True(t, res.CreditedCustomer())
	assert.Equal(t, "30.00", res.CustomerCredited.StringFixed(2))
	assert.Equal(t, "30.00", o.RefundAmount.StringFixed(2))
	assert.Equal(t, OrderStatusCancelled, o.Status)
	assert.Equal(t, userID, *o.CancelledBy)

	_, err = o.Cancel(userID, "again")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = o.RecordPayment(dec("1"), PaymentDetails{Method: PaymentMethodCash})
	assert.ErrorIs(t, err, ErrOrderCancelled)
}

func TestOrder_CustomerCreditFollowsEdits(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "6", 1)
	extra := addItem(t, o, "4", 1)
	require.NoError(t, o.AttachCustomer(uuid.New()))

	_, err := o.RecordPayment(dec("6"), PaymentDetails{Method: PaymentMethodCash})
	require.NoError(t, err)
	_, owed := o.CustomerCreditDue()
	assert.False(t, owed, "partial orders owe nothing")

	require.NoError(t, o.RemoveItem(extra.ID))
	require.True(t, o.IsPaid())
	due, owed := o.CustomerCreditDue()
	require.True(t, owed)
	assert.Equal(t, "6.00", due.StringFixed(2))
	assert.True(t, o.MarkCustomerCredited(due))

	_, owed = o.CustomerCreditDue()
	assert.False(t, owed)

	addItem(t, o, "5", 1)
	_, err = o.RecordPayment(dec("5"), PaymentDetails{Method: PaymentMethodPix})
	require.NoError(t, err)
	due, owed = o.CustomerCreditDue()
	require.True(t, owed)
	assert.Equal(t, "5.00", due.StringFixed(2))
	assert.False(t, o.MarkCustomerCredited(due), "the visit is counted once")
	assert.Equal(t, "11.00", o.CustomerCredited.StringFixed(2))
}

func TestPaymentDetails_Reference(t *testing.T) {
	d := PaymentDetails{Method: PaymentMethodCreditCard, Card: &CardDetails{Brand: "master", Last4: "1234", AuthorizationCode: "A1"}}
	assert.Equal(t, "master ****1234 auth A1", d.Reference())
	assert.Equal(t, "cash", PaymentDetails{Method: PaymentMethodCash}.Reference())
}
