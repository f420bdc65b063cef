package ordering

// OrderStatus represents the kitchen/service status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInPrep    OrderStatus = "in_prep"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPending: 0,
	OrderStatusInPrep:  1,
	OrderStatusReady:   2,
	OrderStatusServed:  3,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInPrep, OrderStatusReady, OrderStatusServed, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo allows forward moves through the kitchen flow.
// Cancellation has its own path and is not reachable from here.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok || s == OrderStatusServed {
		return false
	}
	to, ok := statusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// IsFrozen reports whether totals may no longer change
func (s OrderStatus) IsFrozen() bool {
	return s == OrderStatusServed || s == OrderStatusCancelled
}

// PaymentStatus is derived from paid versus total
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// DiscountType selects how the order-level discount value is read
type DiscountType string

const (
	DiscountTypeAmount  DiscountType = "amount"
	DiscountTypePercent DiscountType = "percent"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypeAmount || t == DiscountTypePercent
}

// OrderType is how the order reaches the customer
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// PaymentMethod identifies the tender used for a payment
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodVoucher    PaymentMethod = "voucher"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPix, PaymentMethodVoucher:
		return true
	}
	return false
}

// IsCash reports whether the tender moves physical cash through a register
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}
