package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RecipeIngredient says how much of an inventory item one unit of a menu item consumes
type RecipeIngredient struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	MenuItemID      uuid.UUID
	InventoryItemID uuid.UUID
	QuantityPerUnit decimal.Decimal
	CreatedAt       time.Time
}

// NewRecipeIngredient validates a recipe row
func NewRecipeIngredient(tenantID, menuItemID, inventoryItemID uuid.UUID, qtyPerUnit decimal.Decimal) (*RecipeIngredient, error) {
	if menuItemID == uuid.Nil || inventoryItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPE", "Menu item and inventory item are required")
	}
	if !qtyPerUnit.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RECIPE", "Quantity per unit must be positive")
	}
	return &RecipeIngredient{
		ID:              uuid.New(),
		TenantID:        tenantID,
		MenuItemID:      menuItemID,
		InventoryItemID: inventoryItemID,
		QuantityPerUnit: valueobject.RoundQuantity(qtyPerUnit),
		CreatedAt:       time.Now(),
	}, nil
}

// DeductionLine is one sold menu line
type DeductionLine struct {
	MenuItemID uuid.UUID
	Quantity   int
}

// Requirement is one stock change derived from a sold line
type Requirement struct {
	MenuItemID      uuid.UUID
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
}

// PlanDeduction expands sold lines through their recipes. Lines without a
// recipe produce nothing. Output order follows input order then recipe order.
func PlanDeduction(lines []DeductionLine, recipes []RecipeIngredient) []Requirement {
	byMenuItem := make(map[uuid.UUID][]RecipeIngredient)
	for _, r := range recipes {
		byMenuItem[r.MenuItemID] = append(byMenuItem[r.MenuItemID], r)
	}

	var out []Requirement
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		for _, r := range byMenuItem[l.MenuItemID] {
			out = append(out, Requirement{
				MenuItemID:      l.MenuItemID,
				InventoryItemID: r.InventoryItemID,
				Quantity:        valueobject.RoundQuantity(r.QuantityPerUnit.Mul(decimal.NewFromInt(int64(l.Quantity)))),
			})
		}
	}
	return out
}

// DeductionPolicy decides whether stock may go negative
type DeductionPolicy struct {
	AllowNegativeOnSale   bool
	AllowNegativeOnManual bool
}

// DefaultDeductionPolicy lets sales drive stock negative and blocks manual outs
func DefaultDeductionPolicy() DeductionPolicy {
	return DeductionPolicy{AllowNegativeOnSale: true}
}
