package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock ledger row
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeTransfer:
		return true
	}
	return false
}

// Reference types written on movements created by other flows
const (
	ReferenceTypeOrder        = "order"
	ReferenceTypeCancellation = "order_cancellation"
	ReferenceTypeTransfer     = "transfer"
	ReferenceTypeManual       = "manual"
)

// BranchStock is the materialized on-hand quantity of one inventory item at
// one branch. It only changes together with a StockMovement row.
type BranchStock struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	BranchID        uuid.UUID
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time

	persisted bool
}

// NewBranchStock creates an empty stock row that has not been stored yet
func NewBranchStock(tenantID, branchID, itemID uuid.UUID) *BranchStock {
	now := time.Now()
	return &BranchStock{
		ID:              uuid.New(),
		TenantID:        tenantID,
		BranchID:        branchID,
		InventoryItemID: itemID,
		Quantity:        decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MarkPersisted flags a row loaded from storage
func (s *BranchStock) MarkPersisted() { s.persisted = true }

// IsPersisted reports whether the row already exists in storage
func (s *BranchStock) IsPersisted() bool { return s.persisted }

// StockMovement is an append-only stock ledger row
type StockMovement struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	BranchID         uuid.UUID
	InventoryItemID  uuid.UUID
	Type             MovementType
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Reason           string
	ReferenceType    string
	ReferenceID      *uuid.UUID
	CreatedBy        *uuid.UUID
	CreatedAt        time.Time
}

// SignedDelta is the effect the movement had on the stock cache
func (m *StockMovement) SignedDelta() decimal.Decimal {
	return m.NewQuantity.Sub(m.PreviousQuantity)
}

// MovementRequest is one change to apply to a BranchStock
type MovementRequest struct {
	Type          MovementType
	Quantity      decimal.Decimal
	Reason        string
	ReferenceType string
	ReferenceID   *uuid.UUID
	CreatedBy     *uuid.UUID
	AllowNegative bool
}

// Apply mutates the stock and returns the ledger row describing the change.
// For adjustments Quantity is the counted on-hand amount.
func (s *BranchStock) Apply(req MovementRequest) (*StockMovement, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", fmt.Sprintf("Unknown movement type %q", req.Type))
	}
	qty := valueobject.RoundQuantity(req.Quantity)
	if qty.IsNegative() || (qty.IsZero() && req.Type != MovementTypeAdjustment) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	previous := s.Quantity
	var next decimal.Decimal
	switch req.Type {
	case MovementTypeIn:
		next = previous.Add(qty)
	case MovementTypeOut, MovementTypeTransfer:
		next = previous.Sub(qty)
	case MovementTypeAdjustment:
		next = qty
	}
	if next.IsNegative() && !req.AllowNegative {
		return nil, shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock: %s on hand, %s requested", previous.StringFixed(3), qty.StringFixed(3)))
	}

	now := time.Now()
	s.Quantity = next
	s.UpdatedAt = now
	return &StockMovement{
		ID:               uuid.New(),
		TenantID:         s.TenantID,
		BranchID:         s.BranchID,
		InventoryItemID:  s.InventoryItemID,
		Type:             req.Type,
		Quantity:         qty,
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           req.Reason,
		ReferenceType:    req.ReferenceType,
		ReferenceID:      req.ReferenceID,
		CreatedBy:        req.CreatedBy,
		CreatedAt:        now,
	}, nil
}

// FoldMovements recomputes an on-hand quantity from the ledger
func FoldMovements(movements []StockMovement) decimal.Decimal {
	total := decimal.Zero
	for i := range movements {
		total = total.Add(movements[i].SignedDelta())
	}
	return total
}
