package dining

import (
	"context"

	"github.com/google/uuid"
)

// TableRepository persists tables
type TableRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Table, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Table, error)
	Save(ctx context.Context, table *Table) error
}

// SessionRepository persists table sessions
type SessionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TableSession, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*TableSession, error)
	FindActiveByTable(ctx context.Context, tenantID, tableID uuid.UUID) (*TableSession, error)
	Save(ctx context.Context, session *TableSession) error
}

// GuestRepository persists guests
type GuestRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TableGuest, error)
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]TableGuest, error)
	MaxGuestNumber(ctx context.Context, tenantID, sessionID uuid.UUID) (int, error)
	Save(ctx context.Context, guest *TableGuest) error
}

// SplitRepository persists bill splits with their allocations
type SplitRepository interface {
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*TableBillSplit, error)
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]TableBillSplit, error)
	Save(ctx context.Context, split *TableBillSplit) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// AuditLogRepository appends item audit rows
type AuditLogRepository interface {
	Create(ctx context.Context, log *OrderItemAuditLog) error
	FindByOrderItem(ctx context.Context, tenantID, orderItemID uuid.UUID) ([]OrderItemAuditLog, error)
}
