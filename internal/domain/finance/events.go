package finance

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeShiftOpened = "shift_opened"
	EventTypeShiftClosed = "shift_closed"
)

// ShiftOpenedEvent is raised when an operator opens a register
type ShiftOpenedEvent struct {
	shared.BaseDomainEvent
	ShiftID        uuid.UUID       `json:"shift_id"`
	CashRegisterID uuid.UUID       `json:"cash_register_id"`
	OperatorID     uuid.UUID       `json:"operator_id"`
	OpeningAmount  decimal.Decimal `json:"opening_amount"`
}

func NewShiftOpenedEvent(s *Shift) *ShiftOpenedEvent {
	return &ShiftOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftOpened, AggregateTypeShift, s.ID, s.TenantID),
		ShiftID:         s.ID,
		CashRegisterID:  s.CashRegisterID,
		OperatorID:      s.OperatorID,
		OpeningAmount:   s.OpeningAmount,
	}
}

func (e *ShiftOpenedEvent) EventType() string { return EventTypeShiftOpened }

// ShiftClosedEvent carries the reconciliation result
type ShiftClosedEvent struct {
	shared.BaseDomainEvent
	ShiftID     uuid.UUID       `json:"shift_id"`
	Expected    decimal.Decimal `json:"expected"`
	Counted     decimal.Decimal `json:"counted"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
}

func NewShiftClosedEvent(s *Shift) *ShiftClosedEvent {
	e := &ShiftClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftClosed, AggregateTypeShift, s.ID, s.TenantID),
		ShiftID:         s.ID,
	}
	if s.ClosingAmountExpected != nil {
		e.Expected = *s.ClosingAmountExpected
	}
	if s.ClosingAmountCounted != nil {
		e.Counted = *s.ClosingAmountCounted
	}
	if s.Discrepancy != nil {
		e.Discrepancy = *s.Discrepancy
	}
	return e
}

func (e *ShiftClosedEvent) EventType() string { return EventTypeShiftClosed }
