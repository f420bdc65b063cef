package ordering

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeOrderCreated          = "order_created"
	EventTypeOrderTotalsChanged    = "order_totals_changed"
	EventTypeOrderStatusChanged    = "order_status_changed"
	EventTypeOrderPaymentRecorded  = "order_payment_recorded"
	EventTypeOrderPaymentCompleted = "order_payment_completed"
	EventTypeOrderCancelled        = "order_cancelled"
)

// OrderCreatedEvent is raised when a new order is opened
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID  `json:"order_id"`
	OrderNumber    string     `json:"order_number"`
	BranchID       uuid.UUID  `json:"branch_id"`
	TableID        *uuid.UUID `json:"table_id,omitempty"`
	TableSessionID *uuid.UUID `json:"table_session_id,omitempty"`
}

func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		BranchID:        o.BranchID,
		TableID:         o.TableID,
		TableSessionID:  o.TableSessionID,
	}
}

func (e *OrderCreatedEvent) EventType() string { return EventTypeOrderCreated }

// OrderTotalsChangedEvent carries the recalculated totals
type OrderTotalsChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	TableSessionID *uuid.UUID      `json:"table_session_id,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
}

func NewOrderTotalsChangedEvent(o *Order) *OrderTotalsChangedEvent {
	return &OrderTotalsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderTotalsChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		TableSessionID:  o.TableSessionID,
		Subtotal:        o.Subtotal,
		TotalAmount:     o.TotalAmount,
		PaidAmount:      o.PaidAmount,
	}
}

func (e *OrderTotalsChangedEvent) EventType() string { return EventTypeOrderTotalsChanged }

// OrderStatusChangedEvent is raised on every kitchen status move
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID   `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
}

func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

func (e *OrderStatusChangedEvent) EventType() string { return EventTypeOrderStatusChanged }

// OrderPaymentRecordedEvent is raised for every accepted payment
type OrderPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

func NewOrderPaymentRecordedEvent(o *Order, amount decimal.Decimal, method PaymentMethod) *OrderPaymentRecordedEvent {
	return &OrderPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentRecorded, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		Amount:          amount,
		Method:          method,
		PaidAmount:      o.PaidAmount,
		PaymentStatus:   o.PaymentStatus,
	}
}

func (e *OrderPaymentRecordedEvent) EventType() string { return EventTypeOrderPaymentRecorded }

// OrderPaymentCompletedEvent is raised when the order becomes fully paid
type OrderPaymentCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	TableSessionID *uuid.UUID      `json:"table_session_id,omitempty"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

func NewOrderPaymentCompletedEvent(o *Order) *OrderPaymentCompletedEvent {
	return &OrderPaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentCompleted, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		TableSessionID:  o.TableSessionID,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
	}
}

func (e *OrderPaymentCompletedEvent) EventType() string { return EventTypeOrderPaymentCompleted }

// OrderCancelledEvent is raised once a cancellation commits
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Reason       string          `json:"reason"`
}

func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		RefundAmount:    o.RefundAmount,
		Reason:          o.CancelReason,
	}
}

func (e *OrderCancelledEvent) EventType() string { return EventTypeOrderCancelled }
