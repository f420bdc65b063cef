package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchStockRepository_GetForUpdateSeedsOnce(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormBranchStockRepository(db)
	ctx := context.Background()
	tenantID, branchID, itemID := uuid.New(), uuid.New(), uuid.New()

	first, err := repo.GetForUpdate(ctx, tenantID, branchID, itemID)
	require.NoError(t, err)
	assert.True(t, first.Quantity.IsZero())

	first.Quantity = decimal.RequireFromString("4.5")
	require.NoError(t, repo.Save(ctx, first))

	second, err := repo.GetForUpdate(ctx, tenantID, branchID, itemID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.RequireFromString("4.5").Equal(second.Quantity))

	var count int64
	require.NoError(t, db.Model(&models.BranchStockModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	rows, err := repo.ListByBranch(ctx, tenantID, branchID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	other, err := repo.ListByBranch(ctx, uuid.New(), branchID)
	require.NoError(t, err)
	assert.Empty(t, other, "rows are tenant scoped")
}

func TestRecipeRepository_ReplaceForMenuItem(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormRecipeRepository(db)
	ctx := context.Background()
	tenantID, dish, flour, salt := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	ingredient := func(item uuid.UUID, qty string) inventory.RecipeIngredient {
		r, err := inventory.NewRecipeIngredient(tenantID, dish, item, decimal.RequireFromString(qty))
		require.NoError(t, err)
		return *r
	}

	require.NoError(t, repo.ReplaceForMenuItem(ctx, tenantID, dish, []inventory.RecipeIngredient{
		ingredient(flour, "0.2"), ingredient(salt, "0.01"),
	}))
	require.NoError(t, repo.ReplaceForMenuItem(ctx, tenantID, dish, []inventory.RecipeIngredient{
		ingredient(salt, "0.02"),
	}))

	got, err := repo.FindByMenuItems(ctx, tenantID, []uuid.UUID{dish})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, salt, got[0].InventoryItemID)

	none, err := repo.FindByMenuItems(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStockMovementRepository_DistinctItems(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()
	tenantID, branchID := uuid.New(), uuid.New()
	flour, salt := uuid.New(), uuid.New()

	for _, item := range []uuid.UUID{flour, flour, salt} {
		require.NoError(t, repo.Create(ctx, &inventory.StockMovement{
			ID:              uuid.New(),
			TenantID:        tenantID,
			BranchID:        branchID,
			InventoryItemID: item,
			Type:            inventory.MovementTypeIn,
			Quantity:        decimal.NewFromInt(1),
			NewQuantity:     decimal.NewFromInt(1),
			ReferenceType:   inventory.ReferenceTypeManual,
			CreatedAt:       time.Now(),
		}))
	}

	items, err := repo.DistinctItems(ctx, tenantID, branchID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{flour, salt}, items)

	ledger, err := repo.FindByItem(ctx, tenantID, branchID, flour)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

func TestShiftRepository_FindOpenByBranchPrefersOperator(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(db)
	repo := NewGormShiftRepository(db)
	ctx := context.Background()
	alice, bruno := uuid.New(), uuid.New()

	open := func(operator uuid.UUID, at time.Time) *finance.Shift {
		shift, err := finance.OpenShift(fx.CashRegister(t), operator, decimal.Zero)
		require.NoError(t, err)
		shift.OpenedAt = at
		require.NoError(t, repo.Save(ctx, shift))
		return shift
	}
	now := time.Now()
	aliceShift := open(alice, now.Add(-time.Hour))
	brunoShift := open(bruno, now)

	got, err := repo.FindOpenByBranch(ctx, fx.TenantID, fx.BranchID, &alice)
	require.NoError(t, err)
	assert.Equal(t, aliceShift.ID, got.ID)

	stranger := uuid.New()
	got, err = repo.FindOpenByBranch(ctx, fx.TenantID, fx.BranchID, &stranger)
	require.NoError(t, err)
	assert.Equal(t, brunoShift.ID, got.ID, "falls back to the latest open shift")

	_, err = repo.FindOpenByBranch(ctx, fx.TenantID, uuid.New(), nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
