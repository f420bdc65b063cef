package dining

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditActionReassign is written when an item moves between guests
const AuditActionReassign = "reassign"

// OrderItemAuditLog is an immutable record of a change to an item's guest
type OrderItemAuditLog struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SessionID   *uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	Action      string
	FromGuestID *uuid.UUID
	ToGuestID   *uuid.UUID
	ActorID     uuid.UUID
	ItemName    string
	Quantity    int
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}
