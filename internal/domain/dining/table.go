package dining

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TableStatus is the floor status of a table
type TableStatus string

const (
	TableStatusFree            TableStatus = "free"
	TableStatusOccupied        TableStatus = "occupied"
	TableStatusInProgress      TableStatus = "in_progress"
	TableStatusAwaitingPayment TableStatus = "awaiting_payment"
	TableStatusClosed          TableStatus = "closed"
)

func (s TableStatus) IsValid() bool {
	switch s {
	case TableStatusFree, TableStatusOccupied, TableStatusInProgress, TableStatusAwaitingPayment, TableStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo follows free → occupied → in_progress → awaiting_payment → closed → free.
// A table awaiting payment may go back to in_progress when more is ordered.
func (s TableStatus) CanTransitionTo(target TableStatus) bool {
	switch s {
	case TableStatusFree:
		return target == TableStatusOccupied
	case TableStatusOccupied:
		return target == TableStatusInProgress || target == TableStatusAwaitingPayment
	case TableStatusInProgress:
		return target == TableStatusAwaitingPayment
	case TableStatusAwaitingPayment:
		return target == TableStatusClosed || target == TableStatusInProgress
	case TableStatusClosed:
		return target == TableStatusFree
	}
	return false
}

var (
	ErrTableOccupied     = shared.NewDomainError("TABLE_OCCUPIED", "Table already has an active session")
	ErrInvalidTableState = shared.NewDomainError("INVALID_TABLE_STATUS", "Table status cannot move to the requested status")
)

// Table is a physical table on the floor
type Table struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	BranchID         uuid.UUID
	Number           string
	Capacity         int
	Status           TableStatus
	CurrentSessionID *uuid.UUID
	TotalAmount      decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTable creates a free table
func NewTable(tenantID, branchID uuid.UUID, number string, capacity int) *Table {
	now := time.Now()
	return &Table{
		ID:          uuid.New(),
		TenantID:    tenantID,
		BranchID:    branchID,
		Number:      number,
		Capacity:    capacity,
		Status:      TableStatusFree,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StartSession opens a session and occupies the table
func (t *Table) StartSession(openedBy uuid.UUID) (*TableSession, error) {
	if t.CurrentSessionID != nil || t.Status != TableStatusFree {
		return nil, ErrTableOccupied
	}
	session := newTableSession(t, openedBy)
	t.CurrentSessionID = &session.ID
	t.Status = TableStatusOccupied
	t.TotalAmount = decimal.Zero
	t.UpdatedAt = time.Now()
	return session, nil
}

// TransitionTo moves the table along its status machine
func (t *Table) TransitionTo(target TableStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError(ErrInvalidTableState.Code, fmt.Sprintf("Unknown table status %q", target))
	}
	if t.Status == target {
		return nil
	}
	if !t.Status.CanTransitionTo(target) {
		return shared.NewDomainError(ErrInvalidTableState.Code, fmt.Sprintf("Cannot move table from %s to %s", t.Status, target))
	}
	if target == TableStatusFree {
		t.release()
		return nil
	}
	t.Status = target
	t.UpdatedAt = time.Now()
	return nil
}

// SetTotal refreshes the cached total shown on the floor plan
func (t *Table) SetTotal(total decimal.Decimal) {
	t.TotalAmount = total
	t.UpdatedAt = time.Now()
}

func (t *Table) release() {
	t.Status = TableStatusFree
	t.CurrentSessionID = nil
	t.TotalAmount = decimal.Zero
	t.UpdatedAt = time.Now()
}
