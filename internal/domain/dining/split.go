package dining

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SplitType selects how a bill is divided between guests
type SplitType string

const (
	SplitTypeEqual     SplitType = "equal"
	SplitTypePerPerson SplitType = "per_person"
	SplitTypeCustom    SplitType = "custom"
)

func (t SplitType) IsValid() bool {
	switch t {
	case SplitTypeEqual, SplitTypePerPerson, SplitTypeCustom:
		return true
	}
	return false
}

var (
	ErrSplitFinalized    = shared.NewDomainError("SPLIT_FINALIZED", "Bill split is already finalized")
	ErrSplitNotFinalized = shared.NewDomainError("SPLIT_NOT_FINALIZED", "Bill split must be finalized first")
	ErrInvalidSplit      = shared.NewDomainError("INVALID_SPLIT", "Bill split is invalid")
	ErrNoGuests          = shared.NewDomainError("NO_GUESTS", "A split needs at least one guest")
)

// SplitAllocation is one guest's share of a split
type SplitAllocation struct {
	ID      uuid.UUID
	SplitID uuid.UUID
	GuestID uuid.UUID
	Amount  decimal.Decimal
	Paid    bool
	PaidAt  *time.Time
}

// TableBillSplit divides an outstanding table balance between guests
type TableBillSplit struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SessionID   uuid.UUID
	SplitType   SplitType
	TotalAmount decimal.Decimal
	Allocations []SplitAllocation
	IsFinalized bool
	FinalizedAt *time.Time
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SplitRequest carries the inputs of a new split
type SplitRequest struct {
	Type   SplitType
	Amount decimal.Decimal
	Guests []TableGuest
	// CustomAmounts is read for SplitTypeCustom only
	CustomAmounts map[uuid.UUID]decimal.Decimal
	CreatedBy     uuid.UUID
}

// NewBillSplit builds allocations that always sum to the rounded amount
func NewBillSplit(session *TableSession, req SplitRequest) (*TableBillSplit, error) {
	if !session.IsActive() {
		return nil, ErrSessionEnded
	}
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError(ErrInvalidSplit.Code, fmt.Sprintf("Unknown split type %q", req.Type))
	}
	guests := make([]TableGuest, 0, len(req.Guests))
	for _, g := range req.Guests {
		if g.SessionID != session.ID {
			return nil, shared.NewDomainError(ErrInvalidSplit.Code, "Guest does not belong to this session")
		}
		if g.IsSeated() {
			guests = append(guests, g)
		}
	}
	if len(guests) == 0 {
		return nil, ErrNoGuests
	}
	total := valueobject.RoundMoney(req.Amount)
	if !total.IsPositive() {
		return nil, shared.NewDomainError(ErrInvalidSplit.Code, "Nothing left to split")
	}

	var amounts []decimal.Decimal
	var err error
	switch req.Type {
	case SplitTypeEqual:
		amounts, err = valueobject.Allocate(total, len(guests))
	case SplitTypePerPerson:
		amounts = allocateProportionally(total, guests)
	case SplitTypeCustom:
		amounts, err = customAmounts(total, guests, req.CustomAmounts)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	split := &TableBillSplit{
		ID:          uuid.New(),
		TenantID:    session.TenantID,
		SessionID:   session.ID,
		SplitType:   req.Type,
		TotalAmount: valueobject.Sum(amounts...),
		Allocations: make([]SplitAllocation, len(guests)),
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, g := range guests {
		split.Allocations[i] = SplitAllocation{
			ID:      uuid.New(),
			SplitID: split.ID,
			GuestID: g.ID,
			Amount:  amounts[i],
		}
	}
	return split, nil
}

// allocateProportionally gives each guest their own subtotal plus a share of
// the remainder (fees, discounts, unassigned items) weighted by that subtotal.
// Shares are cut to the cent and the leftover cents go to the largest
// fractional parts, earliest guest first, so no share is ever negative.
func allocateProportionally(total decimal.Decimal, guests []TableGuest) []decimal.Decimal {
	base := decimal.Zero
	for _, g := range guests {
		base = base.Add(valueobject.NonNegative(g.Subtotal))
	}
	if !base.IsPositive() {
		amounts, _ := valueobject.Allocate(total, len(guests))
		return amounts
	}

	totalCents := valueobject.RoundMoney(total).Shift(2)
	cents := make([]decimal.Decimal, len(guests))
	fractions := make([]decimal.Decimal, len(guests))
	assigned := decimal.Zero
	for i, g := range guests {
		exact := totalCents.Mul(valueobject.NonNegative(g.Subtotal)).Div(base)
		cents[i] = exact.Floor()
		fractions[i] = exact.Sub(cents[i])
		assigned = assigned.Add(cents[i])
	}

	order := make([]int, len(guests))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})
	left := int(totalCents.Sub(assigned).IntPart())
	for k := 0; k < left && k < len(order); k++ {
		cents[order[k]] = cents[order[k]].Add(decimal.NewFromInt(1))
	}

	amounts := make([]decimal.Decimal, len(guests))
	for i := range cents {
		amounts[i] = cents[i].Shift(-2)
	}
	return amounts
}

func customAmounts(total decimal.Decimal, guests []TableGuest, custom map[uuid.UUID]decimal.Decimal) ([]decimal.Decimal, error) {
	amounts := make([]decimal.Decimal, len(guests))
	sum := decimal.Zero
	for i, g := range guests {
		a, ok := custom[g.ID]
		if !ok {
			a = decimal.Zero
		}
		if a.IsNegative() {
			return nil, shared.NewDomainError(ErrInvalidSplit.Code, "Custom amounts cannot be negative")
		}
		amounts[i] = valueobject.RoundMoney(a)
		sum = sum.Add(amounts[i])
	}
	for id := range custom {
		if !containsGuest(guests, id) {
			return nil, shared.NewDomainError(ErrInvalidSplit.Code, fmt.Sprintf("Guest %s is not seated in this session", id))
		}
	}
	if !valueobject.WithinTolerance(sum, total) {
		return nil, shared.NewDomainError(ErrInvalidSplit.Code,
			fmt.Sprintf("Custom amounts sum to %s but the balance is %s", sum.StringFixed(2), total.StringFixed(2)))
	}
	return amounts, nil
}

func containsGuest(guests []TableGuest, id uuid.UUID) bool {
	for _, g := range guests {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Finalize freezes the allocations
func (s *TableBillSplit) Finalize() error {
	if s.IsFinalized {
		return ErrSplitFinalized
	}
	now := time.Now()
	s.IsFinalized = true
	s.FinalizedAt = &now
	s.UpdatedAt = now
	return nil
}

// MarkAllocationPaid settles one guest's share of a finalized split
func (s *TableBillSplit) MarkAllocationPaid(guestID uuid.UUID) (*SplitAllocation, error) {
	if !s.IsFinalized {
		return nil, ErrSplitNotFinalized
	}
	for i := range s.Allocations {
		a := &s.Allocations[i]
		if a.GuestID != guestID {
			continue
		}
		if a.Paid {
			return nil, shared.NewDomainError("ALLOCATION_PAID", "Guest share is already paid")
		}
		now := time.Now()
		a.Paid = true
		a.PaidAt = &now
		s.UpdatedAt = now
		return a, nil
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Guest has no share in this split")
}

// AllocatedTotal sums the allocations
func (s *TableBillSplit) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// IsSettled reports whether every share has been paid
func (s *TableBillSplit) IsSettled() bool {
	for _, a := range s.Allocations {
		if !a.Paid {
			return false
		}
	}
	return len(s.Allocations) > 0
}
