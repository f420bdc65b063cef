package dining

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTableSessionStarted = "table_session_started"
	EventTypeTableSessionEnded   = "table_session_ended"
	EventTypeGuestJoined         = "guest_joined"
	EventTypeOrderItemReassigned = "order_item_reassigned"
	EventTypeBillSplitFinalized  = "bill_split_finalized"
)

// TableSessionStartedEvent is raised when a table is seated
type TableSessionStartedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	TableID   uuid.UUID `json:"table_id"`
}

func NewTableSessionStartedEvent(s *TableSession) *TableSessionStartedEvent {
	return &TableSessionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableSessionStarted, AggregateTypeTableSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		TableID:         s.TableID,
	}
}

func (e *TableSessionStartedEvent) EventType() string { return EventTypeTableSessionStarted }

// TableSessionEndedEvent is raised when the table is released
type TableSessionEndedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID       `json:"session_id"`
	TableID     uuid.UUID       `json:"table_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

func NewTableSessionEndedEvent(s *TableSession) *TableSessionEndedEvent {
	return &TableSessionEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableSessionEnded, AggregateTypeTableSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		TableID:         s.TableID,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
	}
}

func (e *TableSessionEndedEvent) EventType() string { return EventTypeTableSessionEnded }

// GuestJoinedEvent is raised when a guest scans in or is seated by staff
type GuestJoinedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID `json:"session_id"`
	GuestID     uuid.UUID `json:"guest_id"`
	GuestNumber int       `json:"guest_number"`
}

func NewGuestJoinedEvent(s *TableSession, g *TableGuest) *GuestJoinedEvent {
	return &GuestJoinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGuestJoined, AggregateTypeTableSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		GuestID:         g.ID,
		GuestNumber:     g.GuestNumber,
	}
}

func (e *GuestJoinedEvent) EventType() string { return EventTypeGuestJoined }

// OrderItemReassignedEvent is raised after an item changes guest
type OrderItemReassignedEvent struct {
	shared.BaseDomainEvent
	OrderItemID uuid.UUID  `json:"order_item_id"`
	FromGuestID *uuid.UUID `json:"from_guest_id,omitempty"`
	ToGuestID   *uuid.UUID `json:"to_guest_id,omitempty"`
}

func NewOrderItemReassignedEvent(tenantID, sessionID uuid.UUID, log *OrderItemAuditLog) *OrderItemReassignedEvent {
	return &OrderItemReassignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderItemReassigned, AggregateTypeTableSession, sessionID, tenantID),
		OrderItemID:     log.OrderItemID,
		FromGuestID:     log.FromGuestID,
		ToGuestID:       log.ToGuestID,
	}
}

func (e *OrderItemReassignedEvent) EventType() string { return EventTypeOrderItemReassigned }

// BillSplitFinalizedEvent is raised when a split is locked in
type BillSplitFinalizedEvent struct {
	shared.BaseDomainEvent
	SplitID     uuid.UUID       `json:"split_id"`
	SplitType   SplitType       `json:"split_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewBillSplitFinalizedEvent(s *TableBillSplit) *BillSplitFinalizedEvent {
	return &BillSplitFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillSplitFinalized, AggregateTypeTableSession, s.SessionID, s.TenantID),
		SplitID:         s.ID,
		SplitType:       s.SplitType,
		TotalAmount:     s.TotalAmount,
	}
}

func (e *BillSplitFinalizedEvent) EventType() string { return EventTypeBillSplitFinalized }
