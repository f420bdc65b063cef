package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// RecordMovementRequest represents a manual stock movement
type RecordMovementRequest struct {
	BranchID        uuid.UUID       `json:"branch_id" binding:"required"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	Type            string          `json:"type" binding:"required,oneof=in out adjustment transfer"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason" binding:"max=255"`
	// TargetBranchID is required for transfers
	TargetBranchID *uuid.UUID `json:"target_branch_id"`
	CreatedBy      uuid.UUID  `json:"-"`
}

// RecipeIngredientInput is one line of a recipe
type RecipeIngredientInput struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// SetRecipeRequest replaces the recipe of a menu item
type SetRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"dive"`
}

// StockMovementResponse represents a stock ledger row in API responses
type StockMovementResponse struct {
	ID               uuid.UUID       `json:"id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	InventoryItemID  uuid.UUID       `json:"inventory_item_id"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Reason           string          `json:"reason,omitempty"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	ReferenceID      *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RecipeIngredientResponse represents a recipe line in API responses
type RecipeIngredientResponse struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// ToStockMovementResponse converts a domain movement to a response DTO
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:               m.ID,
		BranchID:         m.BranchID,
		InventoryItemID:  m.InventoryItemID,
		Type:             string(m.Type),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		CreatedAt:        m.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(ms []inventory.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, len(ms))
	for i := range ms {
		out[i] = ToStockMovementResponse(&ms[i])
	}
	return out
}
