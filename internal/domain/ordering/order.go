package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder names the order aggregate in events
const AggregateTypeOrder = "Order"

var (
	ErrOrderFrozen           = shared.NewDomainError("ORDER_NOT_EDITABLE", "Order totals are frozen once served or cancelled")
	ErrAlreadyCancelled      = shared.NewDomainError("ALREADY_CANCELLED", "Order is already cancelled")
	ErrPaymentExceedsBalance = shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE", "Payment amount exceeds remaining balance")
	ErrTotalBelowPaid        = shared.NewDomainError("TOTAL_BELOW_PAID", "Change would bring the total below the amount already paid")
	ErrItemNotFound          = shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	ErrOrderCancelled        = shared.NewDomainError("ORDER_CANCELLED", "Order is cancelled")
	ErrInvalidDiscount       = shared.NewDomainError("INVALID_DISCOUNT", "Discount is invalid")
	ErrInvalidFee            = shared.NewDomainError("INVALID_FEE", "Fees cannot be negative")
	ErrInvalidTransition     = shared.NewDomainError("INVALID_STATUS_TRANSITION", "Order status cannot move to the requested status")
	ErrLockedForReassignment = shared.NewDomainError("ORDER_LOCKED_FOR_REASSIGNMENT", "Items cannot change guest once the order is served, paid or cancelled")
)

// Order is the aggregate root for a restaurant order
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber    string
	BranchID       uuid.UUID
	OrderType      OrderType
	TableID        *uuid.UUID
	TableSessionID *uuid.UUID
	CustomerID     *uuid.UUID
	CouponID       *uuid.UUID
	Items          []OrderItem

	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod

	Subtotal              decimal.Decimal
	DiscountType          DiscountType
	DiscountValue         decimal.Decimal
	DiscountAmount        decimal.Decimal
	CouponDiscount        decimal.Decimal
	LoyaltyDiscountAmount decimal.Decimal
	ServiceCharge         decimal.Decimal
	DeliveryFee           decimal.Decimal
	PackagingFee          decimal.Decimal
	TotalAmount           decimal.Decimal
	PaidAmount            decimal.Decimal
	ChangeAmount          decimal.Decimal
	RefundAmount          decimal.Decimal
	CustomerCredited      decimal.Decimal

	LoyaltyPointsEarned   int
	LoyaltyPointsRedeemed int
	StockDeducted         bool
	VisitCounted          bool

	Notes        string
	ServedAt     *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelledBy  *uuid.UUID
	CancelReason string
}

// NewOrderInput carries the header fields of a new order
type NewOrderInput struct {
	BranchID       uuid.UUID
	OrderType      OrderType
	TableID        *uuid.UUID
	TableSessionID *uuid.UUID
	CustomerID     *uuid.UUID
	Notes          string
}

// NewOrder creates an empty pending order
func NewOrder(tenantID uuid.UUID, in NewOrderInput) (*Order, error) {
	if in.BranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if in.OrderType == "" {
		in.OrderType = OrderTypeDineIn
	}
	if !in.OrderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Unknown order type %q", in.OrderType))
	}
	if in.OrderType == OrderTypeDineIn && in.TableSessionID != nil && in.TableID == nil {
		return nil, shared.NewDomainError("INVALID_TABLE", "A table session requires a table")
	}

	o := &Order{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		BranchID:              in.BranchID,
		OrderType:             in.OrderType,
		TableID:               in.TableID,
		TableSessionID:        in.TableSessionID,
		CustomerID:            in.CustomerID,
		Notes:                 in.Notes,
		Items:                 make([]OrderItem, 0),
		Status:                OrderStatusPending,
		PaymentStatus:         PaymentStatusUnpaid,
		DiscountType:          DiscountTypeAmount,
		Subtotal:              decimal.Zero,
		DiscountValue:         decimal.Zero,
		DiscountAmount:        decimal.Zero,
		CouponDiscount:        decimal.Zero,
		LoyaltyDiscountAmount: decimal.Zero,
		ServiceCharge:         decimal.Zero,
		DeliveryFee:           decimal.Zero,
		PackagingFee:          decimal.Zero,
		TotalAmount:           decimal.Zero,
		PaidAmount:            decimal.Zero,
		ChangeAmount:          decimal.Zero,
		RefundAmount:          decimal.Zero,
		CustomerCredited:      decimal.Zero,
	}
	o.OrderNumber = generateOrderNumber(o.ID, o.CreatedAt)
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

func generateOrderNumber(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), strings.ToUpper(id.String()[:6]))
}

// TotalsInput assembles the calculator input from the current state
func (o *Order) TotalsInput() TotalsInput {
	lines := make([]LineInput, len(o.Items))
	for i := range o.Items {
		lines[i] = o.Items[i].CalculatorLine()
	}
	return TotalsInput{
		Lines:           lines,
		DiscountType:    o.DiscountType,
		DiscountValue:   o.DiscountValue,
		CouponDiscount:  o.CouponDiscount,
		LoyaltyDiscount: o.LoyaltyDiscountAmount,
		ServiceCharge:   o.ServiceCharge,
		DeliveryFee:     o.DeliveryFee,
		PackagingFee:    o.PackagingFee,
	}
}

// Recalculate is the only writer of Subtotal, DiscountAmount and TotalAmount.
// It reports whether the total changed.
func (o *Order) Recalculate() bool {
	for i := range o.Items {
		o.Items[i].refreshLineTotal()
	}
	t := CalculateTotals(o.TotalsInput())
	changed := !t.Total.Equal(o.TotalAmount) || !t.Subtotal.Equal(o.Subtotal)
	o.Subtotal = t.Subtotal
	o.DiscountAmount = t.DiscountAmount
	o.TotalAmount = t.Total
	o.PaymentStatus = DerivePaymentStatus(o.PaidAmount, o.TotalAmount)
	o.Touch()
	if changed {
		o.AddDomainEvent(NewOrderTotalsChangedEvent(o))
	}
	return changed
}

// mutate applies fn, recalculates and rolls the aggregate back if the new
// total would fall below what was already paid.
func (o *Order) mutate(fn func() error) error {
	if o.Status.IsFrozen() {
		return ErrOrderFrozen
	}
	snapshot := o.snapshot()
	if err := fn(); err != nil {
		o.restore(snapshot)
		return err
	}
	o.Recalculate()
	if o.PaidAmount.GreaterThan(o.TotalAmount.Add(valueobject.PaymentTolerance)) {
		o.restore(snapshot)
		return ErrTotalBelowPaid
	}
	return nil
}

func (o *Order) snapshot() Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.Options = append([]OrderItemOption(nil), it.Options...)
		cp.Items[i] = it
	}
	return cp
}

// restore also truncates the pending events back to the snapshot's length
func (o *Order) restore(s Order) {
	*o = s
}

// AddItem appends a snapshotted item
func (o *Order) AddItem(in NewItemInput) (*OrderItem, error) {
	var added *OrderItem
	err := o.mutate(func() error {
		item, err := NewOrderItem(o.ID, in)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, *item)
		added = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveItem drops an item
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	return o.mutate(func() error {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items = append(o.Items[:i], o.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// UpdateItemQuantity changes the quantity of one item
func (o *Order) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return o.mutate(func() error {
		item := o.FindItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}
		item.Quantity = quantity
		item.UpdatedAt = time.Now()
		return nil
	})
}

// ApplyDiscount sets the order-level discount
func (o *Order) ApplyDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return ErrInvalidDiscount
	}
	if value.IsNegative() {
		return ErrInvalidDiscount
	}
	return o.mutate(func() error {
		o.DiscountType = discountType
		o.DiscountValue = value
		return nil
	})
}

// ApplyCoupon stores a validated coupon and its discount
func (o *Order) ApplyCoupon(couponID uuid.UUID, discount decimal.Decimal) error {
	if discount.IsNegative() {
		return ErrInvalidDiscount
	}
	return o.mutate(func() error {
		o.CouponID = &couponID
		o.CouponDiscount = valueobject.RoundMoney(discount)
		return nil
	})
}

// RemoveCoupon clears the coupon
func (o *Order) RemoveCoupon() error {
	return o.mutate(func() error {
		o.CouponID = nil
		o.CouponDiscount = decimal.Zero
		return nil
	})
}

// ApplyLoyaltyRedemption accumulates redeemed points and their value
func (o *Order) ApplyLoyaltyRedemption(points int, value decimal.Decimal) error {
	if points <= 0 || value.IsNegative() {
		return shared.NewDomainError("INVALID_REDEMPTION", "Redeemed points must be positive")
	}
	if o.CustomerID == nil {
		return shared.NewDomainError("CUSTOMER_REQUIRED", "Loyalty redemption requires a customer on the order")
	}
	return o.mutate(func() error {
		o.LoyaltyPointsRedeemed += points
		o.LoyaltyDiscountAmount = valueobject.RoundMoney(o.LoyaltyDiscountAmount.Add(value))
		return nil
	})
}

// SetFees replaces the service, delivery and packaging fees
func (o *Order) SetFees(serviceCharge, deliveryFee, packagingFee decimal.Decimal) error {
	if serviceCharge.IsNegative() || deliveryFee.IsNegative() || packagingFee.IsNegative() {
		return ErrInvalidFee
	}
	return o.mutate(func() error {
		o.ServiceCharge = valueobject.RoundMoney(serviceCharge)
		o.DeliveryFee = valueobject.RoundMoney(deliveryFee)
		o.PackagingFee = valueobject.RoundMoney(packagingFee)
		return nil
	})
}

// AttachCustomer links a loyalty customer
func (o *Order) AttachCustomer(customerID uuid.UUID) error {
	if o.Status == OrderStatusCancelled {
		return ErrOrderCancelled
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("ORDER_PAID", "Cannot change the customer of a paid order")
	}
	o.CustomerID = &customerID
	o.Touch()
	return nil
}

// UpdateStatus advances the kitchen status and reports whether the order
// has just become served.
func (o *Order) UpdateStatus(target OrderStatus) (bool, error) {
	if !target.IsValid() || target == OrderStatusCancelled {
		return false, ErrInvalidTransition
	}
	if o.Status == OrderStatusCancelled {
		return false, ErrOrderCancelled
	}
	if o.Status == target {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewDomainError(ErrInvalidTransition.Code,
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	becameServed := target == OrderStatusServed && from != OrderStatusServed
	if becameServed {
		now := time.Now()
		o.ServedAt = &now
	}
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return becameServed, nil
}

// MarkStockDeducted stamps that recipe deductions ran for this order
func (o *Order) MarkStockDeducted() {
	o.StockDeducted = true
}

// CustomerCreditDue returns the spend the linked customer has not been
// credited with yet. Only a fully paid, live order owes credit, and owed is
// also true when the visit has not been counted.
func (o *Order) CustomerCreditDue() (decimal.Decimal, bool) {
	if o.CustomerID == nil || o.IsCancelled() || !o.IsPaid() {
		return decimal.Zero, false
	}
	due := o.TotalAmount.Sub(o.CustomerCredited)
	return due, !o.VisitCounted || !due.IsZero()
}

// MarkCustomerCredited books spend credited to the customer. It reports
// whether this was the first credit, which is when the visit counts.
func (o *Order) MarkCustomerCredited(amount decimal.Decimal) bool {
	first := !o.VisitCounted
	o.CustomerCredited = valueobject.NonNegative(o.CustomerCredited.Add(amount))
	o.VisitCounted = true
	return first
}

// FindItem returns a pointer into Items or nil
func (o *Order) FindItem(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// RemainingBalance is total minus paid, never negative
func (o *Order) RemainingBalance() decimal.Decimal {
	return valueobject.NonNegative(o.TotalAmount.Sub(o.PaidAmount))
}

// IsPaid reports the paid payment status
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// IsCancelled reports the cancelled status
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// ReassignItem moves an item to another guest, or unassigns it when guestID
// is nil. It returns the previous guest. Totals are unaffected.
func (o *Order) ReassignItem(itemID uuid.UUID, guestID *uuid.UUID) (*OrderItem, *uuid.UUID, error) {
	if o.LocksGuestAssignment() {
		return nil, nil, ErrLockedForReassignment
	}
	item := o.FindItem(itemID)
	if item == nil {
		return nil, nil, ErrItemNotFound
	}
	from := item.GuestID
	item.GuestID = guestID
	item.UpdatedAt = time.Now()
	o.Touch()
	return item, from, nil
}

// LocksGuestAssignment reports whether items can no longer move between guests
func (o *Order) LocksGuestAssignment() bool {
	return o.Status == OrderStatusServed || o.Status == OrderStatusCancelled || o.PaymentStatus == PaymentStatusPaid
}
