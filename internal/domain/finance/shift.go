package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeShift names the shift aggregate in events
const AggregateTypeShift = "Shift"

// ShiftStatus is open or closed
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

var (
	ErrShiftAlreadyOpen = shared.NewDomainError("SHIFT_ALREADY_OPEN", "Cash register already has an open shift")
	ErrShiftNotOpen     = shared.NewDomainError("SHIFT_NOT_OPEN", "No open shift matches")
	ErrRegisterInactive = shared.NewDomainError("REGISTER_INACTIVE", "Cash register is inactive")
)

// Shift is an operator's session on one cash register
type Shift struct {
	shared.TenantAggregateRoot
	BranchID              uuid.UUID
	CashRegisterID        uuid.UUID
	OperatorID            uuid.UUID
	Status                ShiftStatus
	OpeningAmount         decimal.Decimal
	ClosingAmountExpected *decimal.Decimal
	ClosingAmountCounted  *decimal.Decimal
	Discrepancy           *decimal.Decimal
	TotalRevenue          decimal.Decimal
	TotalExpense          decimal.Decimal
	TotalAdjustment       decimal.Decimal
	Notes                 string
	OpenedAt              time.Time
	ClosedAt              *time.Time
}

// OpenShift starts a shift on the register
func OpenShift(register *CashRegister, operatorID uuid.UUID, openingAmount decimal.Decimal) (*Shift, error) {
	if !register.IsActive {
		return nil, ErrRegisterInactive
	}
	if openingAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening amount cannot be negative")
	}
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator is required")
	}
	s := &Shift{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(register.TenantID),
		BranchID:            register.BranchID,
		CashRegisterID:      register.ID,
		OperatorID:          operatorID,
		Status:              ShiftStatusOpen,
		OpeningAmount:       valueobject.RoundMoney(openingAmount),
		TotalRevenue:        decimal.Zero,
		TotalExpense:        decimal.Zero,
		TotalAdjustment:     decimal.Zero,
	}
	s.OpenedAt = s.CreatedAt
	s.AddDomainEvent(NewShiftOpenedEvent(s))
	return s, nil
}

// IsOpen reports the open status
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

// Close computes expected cash from the shift's cash rows and records the discrepancy
func (s *Shift) Close(cashTransactions []FinancialTransaction, counted decimal.Decimal, notes string) error {
	if !s.IsOpen() {
		return ErrShiftNotOpen
	}
	if counted.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}
	totals := SumTransactions(cashTransactions, true)
	expected := valueobject.RoundMoney(totals.Net())
	counted = valueobject.RoundMoney(counted)
	discrepancy := counted.Sub(expected)

	now := time.Now()
	s.Status = ShiftStatusClosed
	s.TotalRevenue = totals.Revenue
	s.TotalExpense = totals.Expense
	s.TotalAdjustment = totals.Adjustment
	s.ClosingAmountExpected = &expected
	s.ClosingAmountCounted = &counted
	s.Discrepancy = &discrepancy
	s.Notes = notes
	s.ClosedAt = &now
	s.Touch()
	s.AddDomainEvent(NewShiftClosedEvent(s))
	return nil
}
