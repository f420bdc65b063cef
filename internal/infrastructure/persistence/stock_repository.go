package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRecipeRepository implements inventory.RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByMenuItems returns the recipe rows of the given menu items
func (r *GormRecipeRepository) FindByMenuItems(ctx context.Context, tenantID uuid.UUID, menuItemIDs []uuid.UUID) ([]inventory.RecipeIngredient, error) {
	if len(menuItemIDs) == 0 {
		return nil, nil
	}
	var rows []models.RecipeIngredientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND menu_item_id IN ?", tenantID, menuItemIDs).
		Order("menu_item_id, inventory_item_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ingredients := make([]inventory.RecipeIngredient, len(rows))
	for i := range rows {
		ingredients[i] = rows[i].ToDomain()
	}
	return ingredients, nil
}

// ReplaceForMenuItem swaps a menu item's recipe for the given rows
func (r *GormRecipeRepository) ReplaceForMenuItem(ctx context.Context, tenantID, menuItemID uuid.UUID, ingredients []inventory.RecipeIngredient) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tenant_id = ? AND menu_item_id = ?", tenantID, menuItemID).
		Delete(&models.RecipeIngredientModel{}).Error; err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if len(ingredients) == 0 {
		return nil
	}
	rows := make([]*models.RecipeIngredientModel, len(ingredients))
	for i := range ingredients {
		rows[i] = models.RecipeIngredientModelFromDomain(&ingredients[i])
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GormBranchStockRepository implements inventory.BranchStockRepository using GORM
type GormBranchStockRepository struct {
	db *gorm.DB
}

// NewGormBranchStockRepository creates a new GormBranchStockRepository
func NewGormBranchStockRepository(db *gorm.DB) *GormBranchStockRepository {
	return &GormBranchStockRepository{db: db}
}

// GetForUpdate locks the stock row of an item at a branch. A missing row is
// inserted at zero first so concurrent first movements serialize on it.
func (r *GormBranchStockRepository) GetForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*inventory.BranchStock, error) {
	db := r.db.WithContext(ctx)
	seed := models.BranchStockModelFromDomain(inventory.NewBranchStock(tenantID, branchID, itemID))
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "inventory_item_id"}},
		DoNothing: true,
	}).Create(seed).Error; err != nil {
		return nil, fmt.Errorf("seed branch stock: %w", err)
	}

	var model models.BranchStockModel
	if err := forUpdate(db).
		Where("tenant_id = ? AND branch_id = ? AND inventory_item_id = ?", tenantID, branchID, itemID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save updates a stored row or inserts a new one
func (r *GormBranchStockRepository) Save(ctx context.Context, stock *inventory.BranchStock) error {
	model := models.BranchStockModelFromDomain(stock)
	db := r.db.WithContext(ctx)
	if stock.IsPersisted() {
		return db.Save(model).Error
	}
	if err := db.Create(model).Error; err != nil {
		return err
	}
	stock.MarkPersisted()
	return nil
}

// ListByBranch lists every stock row of a branch
func (r *GormBranchStockRepository) ListByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]inventory.BranchStock, error) {
	var rows []models.BranchStockModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		Order("inventory_item_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	stock := make([]inventory.BranchStock, len(rows))
	for i := range rows {
		stock[i] = *rows[i].ToDomain()
	}
	return stock, nil
}

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error
}

// FindByReference returns the movements written for a business document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID))
}

// FindByItem returns an item's ledger at a branch in write order
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND inventory_item_id = ?", tenantID, branchID, itemID))
}

// DistinctItems lists inventory items with at least one movement at the branch
func (r *GormStockMovementRepository) DistinctItems(ctx context.Context, tenantID, branchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Distinct("inventory_item_id").
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		Pluck("inventory_item_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormStockMovementRepository) find(db *gorm.DB) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements, nil
}

var (
	_ inventory.RecipeRepository        = (*GormRecipeRepository)(nil)
	_ inventory.BranchStockRepository   = (*GormBranchStockRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
)
