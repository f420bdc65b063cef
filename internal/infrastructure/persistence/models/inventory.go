package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// RecipeIngredientModel links a menu item to the inventory it consumes
type RecipeIngredientModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_menu_inventory,priority:1"`
	MenuItemID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_menu_inventory,priority:2"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_menu_inventory,priority:3"`
	QuantityPerUnit decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecipeIngredientModel) TableName() string {
	return "recipe_ingredients"
}

// ToDomain converts the persistence model to a domain RecipeIngredient
func (m *RecipeIngredientModel) ToDomain() inventory.RecipeIngredient {
	return inventory.RecipeIngredient{
		ID:              m.ID,
		TenantID:        m.TenantID,
		MenuItemID:      m.MenuItemID,
		InventoryItemID: m.InventoryItemID,
		QuantityPerUnit: m.QuantityPerUnit,
		CreatedAt:       m.CreatedAt,
	}
}

// RecipeIngredientModelFromDomain creates a persistence model from a domain RecipeIngredient
func RecipeIngredientModelFromDomain(r *inventory.RecipeIngredient) *RecipeIngredientModel {
	return &RecipeIngredientModel{
		ID:              r.ID,
		TenantID:        r.TenantID,
		MenuItemID:      r.MenuItemID,
		InventoryItemID: r.InventoryItemID,
		QuantityPerUnit: r.QuantityPerUnit,
		CreatedAt:       r.CreatedAt,
	}
}

// BranchStockModel is the stock cache row of one item at one branch
type BranchStockModel struct {
	BaseModel
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_item,priority:1"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_item,priority:2"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_item,priority:3"`
	Quantity        decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
}

// TableName returns the table name for GORM
func (BranchStockModel) TableName() string {
	return "branch_stock"
}

// ToDomain converts the persistence model to a domain BranchStock flagged as stored
func (m *BranchStockModel) ToDomain() *inventory.BranchStock {
	s := &inventory.BranchStock{
		ID:              m.ID,
		TenantID:        m.TenantID,
		BranchID:        m.BranchID,
		InventoryItemID: m.InventoryItemID,
		Quantity:        m.Quantity,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	s.MarkPersisted()
	return s
}

// BranchStockModelFromDomain creates a persistence model from a domain BranchStock
func BranchStockModelFromDomain(s *inventory.BranchStock) *BranchStockModel {
	return &BranchStockModel{
		BaseModel:       BaseModel{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		TenantID:        s.TenantID,
		BranchID:        s.BranchID,
		InventoryItemID: s.InventoryItemID,
		Quantity:        s.Quantity,
	}
}

// StockMovementModel is an append-only stock ledger row
type StockMovementModel struct {
	ID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID              `gorm:"type:uuid;not null;index:idx_movement_item,priority:1"`
	BranchID         uuid.UUID              `gorm:"type:uuid;not null;index:idx_movement_item,priority:2"`
	InventoryItemID  uuid.UUID              `gorm:"type:uuid;not null;index:idx_movement_item,priority:3"`
	Type             inventory.MovementType `gorm:"type:varchar(20);not null"`
	Quantity         decimal.Decimal        `gorm:"type:numeric(12,3);not null"`
	PreviousQuantity decimal.Decimal        `gorm:"type:numeric(12,3);not null"`
	NewQuantity      decimal.Decimal        `gorm:"type:numeric(12,3);not null"`
	Reason           string                 `gorm:"type:varchar(500)"`
	ReferenceType    string                 `gorm:"type:varchar(30);index:idx_movement_reference,priority:1"`
	ReferenceID      *uuid.UUID             `gorm:"type:uuid;index:idx_movement_reference,priority:2"`
	CreatedBy        *uuid.UUID             `gorm:"type:uuid"`
	CreatedAt        time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() inventory.StockMovement {
	return inventory.StockMovement{
		ID:               m.ID,
		TenantID:         m.TenantID,
		BranchID:         m.BranchID,
		InventoryItemID:  m.InventoryItemID,
		Type:             m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:               s.ID,
		TenantID:         s.TenantID,
		BranchID:         s.BranchID,
		InventoryItemID:  s.InventoryItemID,
		Type:             s.Type,
		Quantity:         s.Quantity,
		PreviousQuantity: s.PreviousQuantity,
		NewQuantity:      s.NewQuantity,
		Reason:           s.Reason,
		ReferenceType:    s.ReferenceType,
		ReferenceID:      s.ReferenceID,
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
	}
}
