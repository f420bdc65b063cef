package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), NewOrderInput{BranchID: uuid.New(), OrderType: OrderTypeDineIn})
	require.NoError(t, err)
	return o
}

func addItem(t *testing.T, o *Order, price string, qty int) *OrderItem {
	t.Helper()
	item, err := o.AddItem(NewItemInput{MenuItemID: uuid.New(), Name: "Feijoada", UnitPrice: dec(price), Quantity: qty})
	require.NoError(t, err)
	return item
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending unpaid order", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)
		assert.True(t, o.TotalAmount.IsZero())
		assert.Contains(t, o.OrderNumber, "ORD-")
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeOrderCreated, o.GetDomainEvents()[0].EventType())
	})

	t.Run("requires branch", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), NewOrderInput{})
		assert.Error(t, err)
	})

	t.Run("rejects unknown order type", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), NewOrderInput{BranchID: uuid.New(), OrderType: "drive_thru"})
		assert.Error(t, err)
	})
}

func TestOrder_TotalInvariantHoldsAfterEveryMutation(t *testing.T) {
	o := newTestOrder(t)
	check := func() {
		t.Helper()
		want := CalculateTotals(o.TotalsInput()).Total
		assert.True(t, want.Equal(o.TotalAmount), "total %s want %s", o.TotalAmount, want)
	}

	item := addItem(t, o, "25.90", 2)
	check()
	addItem(t, o, "7.50", 1)
	check()
	require.NoError(t, o.UpdateItemQuantity(item.ID, 3))
	check()
	require.NoError(t, o.ApplyDiscount(DiscountTypePercent, dec("10")))
	check()
	require.NoError(t, o.ApplyCoupon(uuid.New(), dec("5")))
	check()
	require.NoError(t, o.SetFees(dec("8.50"), dec("0"), dec("1")))
	check()
	require.NoError(t, o.RemoveItem(item.ID))
	check()
	require.NoError(t, o.RemoveCoupon())
	check()

	assert.Equal(t, "7.50", o.Subtotal.StringFixed(2))
}

func TestOrder_FrozenOnceServed(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "10", 1)

	served, err := o.UpdateStatus(OrderStatusServed)
	require.NoError(t, err)
	assert.True(t, served)
	assert.NotNil(t, o.ServedAt)

	_, err = o.AddItem(NewItemInput{MenuItemID: uuid.New(), Name: "Suco", UnitPrice: dec("6"), Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderFrozen)
	assert.Equal(t, "10.00", o.TotalAmount.StringFixed(2))
}

func TestOrder_UpdateStatus(t *testing.T) {
	t.Run("forward moves only", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.UpdateStatus(OrderStatusReady)
		require.NoError(t, err)
		_, err = o.UpdateStatus(OrderStatusInPrep)
		assert.Error(t, err)
	})

	t.Run("served reported once", func(t *testing.T) {
		o := newTestOrder(t)
		first, err := o.UpdateStatus(OrderStatusServed)
		require.NoError(t, err)
		second, err := o.UpdateStatus(OrderStatusServed)
		require.NoError(t, err)
		assert.True(t, first)
		assert.False(t, second)
	})

	t.Run("cancelled is not reachable", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.UpdateStatus(OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrder_MutationCannotDropTotalBelowPaid(t *testing.T) {
	o := newTestOrder(t)
	item := addItem(t, o, "20", 1)
	addItem(t, o, "10", 1)

	_, err := o.RecordPayment(dec("25"), PaymentDetails{Method: PaymentMethodPix})
	require.NoError(t, err)

	err = o.RemoveItem(item.ID)
	assert.ErrorIs(t, err, ErrTotalBelowPaid)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, "30.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)
}

func TestOrder_ApplyLoyaltyRedemption(t *testing.T) {
	o := newTestOrder(t)
	addItem(t, o, "40", 1)

	err := o.ApplyLoyaltyRedemption(100, dec("5"))
	assert.Error(t, err, "customer is required")

	require.NoError(t, o.AttachCustomer(uuid.New()))
	require.NoError(t, o.ApplyLoyaltyRedemption(100, dec("5")))
	assert.Equal(t, 100, o.LoyaltyPointsRedeemed)
	assert.Equal(t, "35.00", o.TotalAmount.StringFixed(2))
}

func TestOrder_ApplyDiscountRejectsNegative(t *testing.T) {
	o := newTestOrder(t)
	err := o.ApplyDiscount(DiscountTypeAmount, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestOrder_UpdateItemQuantityUnknownItem(t *testing.T) {
	o := newTestOrder(t)
	err := o.UpdateItemQuantity(uuid.New(), 2)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "ITEM_NOT_FOUND", de.Code)
}

func TestValidateDiscountInput(t *testing.T) {
	assert.NoError(t, ValidateDiscountInput(DiscountInput{Type: DiscountTypePercent, Value: dec("100")}))
	assert.NoError(t, ValidateDiscountInput(DiscountInput{Type: DiscountTypeAmount, Value: dec("250")}))
	assert.Error(t, ValidateDiscountInput(DiscountInput{Type: DiscountTypePercent, Value: dec("100.01")}))
	assert.Error(t, ValidateDiscountInput(DiscountInput{Type: DiscountTypeAmount, Value: dec("-1")}))
	assert.Error(t, ValidateDiscountInput(DiscountInput{Type: "bogus", Value: dec("1")}))
	assert.NoError(t, ValidateFeeInput(FeeInput{ServiceCharge: dec("3")}))
	assert.Error(t, ValidateFeeInput(FeeInput{DeliveryFee: dec("-0.01")}))
}

func TestOrder_ReassignItem(t *testing.T) {
	o := newTestOrder(t)
	item := addItem(t, o, "12", 1)
	guest := uuid.New()

	_, from, err := o.ReassignItem(item.ID, &guest)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.True(t, o.FindItem(item.ID).BelongsToGuest(guest))
	assert.Equal(t, "12.00", o.TotalAmount.StringFixed(2))

	_, err = o.RecordPayment(dec("12"), PaymentDetails{Method: PaymentMethodPix})
	require.NoError(t, err)
	_, _, err = o.ReassignItem(item.ID, nil)
	assert.ErrorIs(t, err, ErrLockedForReassignment)
}
