package dining

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeTableSession names the session aggregate in events
const AggregateTypeTableSession = "TableSession"

// SessionStatus is active or ended
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

var ErrSessionEnded = shared.NewDomainError("SESSION_ENDED", "Table session has already ended")

// TableSession is one seating at a table. TotalAmount and PaidAmount are
// cached over the table's non-cancelled orders.
type TableSession struct {
	shared.TenantAggregateRoot
	BranchID     uuid.UUID
	TableID      uuid.UUID
	Status       SessionStatus
	OpenedBy     uuid.UUID
	CustomerName string
	GuestCount   int
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	StartedAt    time.Time
	EndedAt      *time.Time
}

func newTableSession(t *Table, openedBy uuid.UUID) *TableSession {
	s := &TableSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(t.TenantID),
		BranchID:            t.BranchID,
		TableID:             t.ID,
		Status:              SessionStatusActive,
		OpenedBy:            openedBy,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
	}
	s.StartedAt = s.CreatedAt
	s.AddDomainEvent(NewTableSessionStartedEvent(s))
	return s
}

// Seat records who is sitting at the table
func (s *TableSession) Seat(customerName string, guestCount int) error {
	if guestCount < 0 {
		return shared.NewDomainError("INVALID_GUEST_COUNT", "Guest count cannot be negative")
	}
	s.CustomerName = customerName
	s.GuestCount = guestCount
	s.Touch()
	return nil
}

// IsActive reports whether the session still accepts orders and guests
func (s *TableSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// RemainingBalance is what the table still owes
func (s *TableSession) RemainingBalance() decimal.Decimal {
	return valueobject.NonNegative(s.TotalAmount.Sub(s.PaidAmount))
}

// RefreshTotals stores totals computed over the session's orders
func (s *TableSession) RefreshTotals(total, paid decimal.Decimal) {
	s.TotalAmount = valueobject.RoundMoney(total)
	s.PaidAmount = valueobject.RoundMoney(paid)
	s.Touch()
}

// End closes the session and frees its table
func (s *TableSession) End(table *Table) error {
	if !s.IsActive() {
		return ErrSessionEnded
	}
	now := time.Now()
	s.Status = SessionStatusEnded
	s.EndedAt = &now
	s.Touch()
	if table != nil && table.CurrentSessionID != nil && *table.CurrentSessionID == s.ID {
		table.release()
	}
	s.AddDomainEvent(NewTableSessionEndedEvent(s))
	return nil
}
