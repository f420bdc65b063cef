package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixtures seeds reference data for one tenant and branch
type Fixtures struct {
	DB       *gorm.DB
	TenantID uuid.UUID
	BranchID uuid.UUID
	faker    *gofakeit.Faker
	tables   int
}

// NewFixtures creates fixtures for a fresh tenant and branch
func NewFixtures(db *gorm.DB) *Fixtures {
	return &Fixtures{
		DB:       db,
		TenantID: uuid.New(),
		BranchID: uuid.New(),
		faker:    gofakeit.New(0),
	}
}

// MenuOption describes a modifier to seed on a menu item
type MenuOption struct {
	Name            string
	PriceAdjustment decimal.Decimal
}

// MenuItem seeds an available menu item and returns its ID and option IDs
func (f *Fixtures) MenuItem(t *testing.T, price decimal.Decimal, options ...MenuOption) (uuid.UUID, []uuid.UUID) {
	t.Helper()

	now := time.Now()
	item := &models.MenuItemModel{
		BaseModel:   models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:    f.TenantID,
		Name:        f.faker.Lunch(),
		Price:       price,
		IsAvailable: true,
	}
	optionIDs := make([]uuid.UUID, len(options))
	for i, o := range options {
		optionIDs[i] = uuid.New()
		item.Options = append(item.Options, models.MenuItemOptionModel{
			ID:              optionIDs[i],
			MenuItemID:      item.ID,
			Name:            o.Name,
			PriceAdjustment: o.PriceAdjustment,
		})
	}
	require.NoError(t, f.DB.Create(item).Error, "Failed to seed menu item")
	return item.ID, optionIDs
}

// Coupon seeds an active coupon
func (f *Fixtures) Coupon(t *testing.T, code, discountType string, value decimal.Decimal) uuid.UUID {
	t.Helper()

	now := time.Now()
	coupon := &models.CouponModel{
		BaseModel:     models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:      f.TenantID,
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: value,
		IsActive:      true,
	}
	require.NoError(t, f.DB.Create(coupon).Error, "Failed to seed coupon")
	return coupon.ID
}

// Table seeds a free table at the branch
func (f *Fixtures) Table(t *testing.T, capacity int) *dining.Table {
	t.Helper()

	f.tables++
	table := dining.NewTable(f.TenantID, f.BranchID, fmt.Sprintf("%02d", f.tables), capacity)
	require.NoError(t, f.DB.Create(models.TableModelFromDomain(table)).Error, "Failed to seed table")
	return table
}

// CashRegister seeds an active register at the branch
func (f *Fixtures) CashRegister(t *testing.T) *finance.CashRegister {
	t.Helper()

	register := finance.NewCashRegister(f.TenantID, f.BranchID, "Caixa "+f.faker.LetterN(2))
	require.NoError(t, f.DB.Create(models.CashRegisterModelFromDomain(register)).Error, "Failed to seed cash register")
	return register
}

// Customer seeds a bronze customer without history
func (f *Fixtures) Customer(t *testing.T) *loyalty.Customer {
	t.Helper()

	customer := loyalty.NewCustomer(f.TenantID, f.faker.Name(), f.faker.Phone())
	require.NoError(t, f.DB.Create(models.CustomerModelFromDomain(customer)).Error, "Failed to seed customer")
	return customer
}

// LoyaltyProgram seeds the tenant's active program
func (f *Fixtures) LoyaltyProgram(t *testing.T, pointsPerCurrency, pointValue decimal.Decimal, minRedeem int) *loyalty.Program {
	t.Helper()

	now := time.Now()
	program := &loyalty.Program{
		ID:                uuid.New(),
		TenantID:          f.TenantID,
		PointsPerCurrency: pointsPerCurrency,
		PointValue:        pointValue,
		MinRedeemPoints:   minRedeem,
		SilverThreshold:   decimal.NewFromInt(500),
		GoldThreshold:     decimal.NewFromInt(2000),
		PlatinumThreshold: decimal.NewFromInt(5000),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, f.DB.Create(models.LoyaltyProgramModelFromDomain(program)).Error, "Failed to seed loyalty program")
	return program
}

// Recipe seeds one ingredient of a menu item's recipe
func (f *Fixtures) Recipe(t *testing.T, menuItemID, inventoryItemID uuid.UUID, perUnit decimal.Decimal) {
	t.Helper()

	ingredient, err := inventory.NewRecipeIngredient(f.TenantID, menuItemID, inventoryItemID, perUnit)
	require.NoError(t, err)
	require.NoError(t, f.DB.Create(models.RecipeIngredientModelFromDomain(ingredient)).Error, "Failed to seed recipe")
}

// StockQuantity reads the cached stock of an item at the branch, zero when absent
func (f *Fixtures) StockQuantity(t *testing.T, inventoryItemID uuid.UUID) decimal.Decimal {
	t.Helper()

	var rows []models.BranchStockModel
	require.NoError(t, f.DB.
		Where("tenant_id = ? AND branch_id = ? AND inventory_item_id = ?", f.TenantID, f.BranchID, inventoryItemID).
		Find(&rows).Error)
	if len(rows) == 0 {
		return decimal.Zero
	}
	return rows[0].Quantity
}

// RegisterBalance reads the cached balance of a register
func (f *Fixtures) RegisterBalance(t *testing.T, registerID uuid.UUID) decimal.Decimal {
	t.Helper()

	var row models.CashRegisterModel
	require.NoError(t, f.DB.Where("id = ?", registerID).First(&row).Error)
	return row.CurrentBalance
}
