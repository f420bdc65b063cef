package inventory

import (
	"context"

	"github.com/google/uuid"
)

// RecipeRepository reads and replaces recipes
type RecipeRepository interface {
	FindByMenuItems(ctx context.Context, tenantID uuid.UUID, menuItemIDs []uuid.UUID) ([]RecipeIngredient, error)
	ReplaceForMenuItem(ctx context.Context, tenantID, menuItemID uuid.UUID, ingredients []RecipeIngredient) error
}

// BranchStockRepository persists the stock cache
type BranchStockRepository interface {
	// GetForUpdate locks the row, creating it at zero quantity when none exists
	GetForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*BranchStock, error)
	Save(ctx context.Context, stock *BranchStock) error
	ListByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]BranchStock, error)
}

// StockMovementRepository appends to and reads the stock ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]StockMovement, error)
	FindByItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) ([]StockMovement, error)
	// DistinctItems lists inventory items with at least one movement at the branch
	DistinctItems(ctx context.Context, tenantID, branchID uuid.UUID) ([]uuid.UUID, error)
}
