package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBranchStock_Apply(t *testing.T) {
	t.Run("out records previous and new", func(t *testing.T) {
		s := NewBranchStock(uuid.New(), uuid.New(), uuid.New())
		s.Quantity = q("50")
		m, err := s.Apply(MovementRequest{Type: MovementTypeOut, Quantity: q("12")})
		require.NoError(t, err)
		assert.Equal(t, "50.000", m.PreviousQuantity.StringFixed(3))
		assert.Equal(t, "38.000", m.NewQuantity.StringFixed(3))
		assert.Equal(t, "38.000", s.Quantity.StringFixed(3))
		assert.Equal(t, "-12.000", m.SignedDelta().StringFixed(3))
	})

	t.Run("out below zero rejected unless allowed", func(t *testing.T) {
		s := NewBranchStock(uuid.New(), uuid.New(), uuid.New())
		s.Quantity = q("1")
		_, err := s.Apply(MovementRequest{Type: MovementTypeOut, Quantity: q("2")})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "1", s.Quantity.String())

		m, err := s.Apply(MovementRequest{Type: MovementTypeOut, Quantity: q("2"), AllowNegative: true})
		require.NoError(t, err)
		assert.Equal(t, "-1.000", m.NewQuantity.StringFixed(3))
	})

	t.Run("adjustment sets counted quantity", func(t *testing.T) {
		s := NewBranchStock(uuid.New(), uuid.New(), uuid.New())
		s.Quantity = q("7")
		m, err := s.Apply(MovementRequest{Type: MovementTypeAdjustment, Quantity: q("4.5")})
		require.NoError(t, err)
		assert.Equal(t, "-2.500", m.SignedDelta().StringFixed(3))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		s := NewBranchStock(uuid.New(), uuid.New(), uuid.New())
		_, err := s.Apply(MovementRequest{Type: MovementTypeIn, Quantity: decimal.Zero})
		assert.Error(t, err)
	})
}

func TestFoldMovements(t *testing.T) {
	s := NewBranchStock(uuid.New(), uuid.New(), uuid.New())
	var ledger []StockMovement
	for _, req := range []MovementRequest{
		{Type: MovementTypeIn, Quantity: q("50")},
		{Type: MovementTypeOut, Quantity: q("12")},
		{Type: MovementTypeAdjustment, Quantity: q("30")},
		{Type: MovementTypeTransfer, Quantity: q("5")},
		{Type: MovementTypeIn, Quantity: q("12")},
	} {
		m, err := s.Apply(req)
		require.NoError(t, err)
		ledger = append(ledger, *m)
	}
	assert.True(t, FoldMovements(ledger).Equal(s.Quantity))
	assert.Equal(t, "37.000", s.Quantity.StringFixed(3))
}

func TestPlanDeduction(t *testing.T) {
	tenant := uuid.New()
	burger, fries, bun, patty := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	r1, err := NewRecipeIngredient(tenant, burger, bun, q("1"))
	require.NoError(t, err)
	r2, err := NewRecipeIngredient(tenant, burger, patty, q("0.180"))
	require.NoError(t, err)

	plan := PlanDeduction([]DeductionLine{
		{MenuItemID: burger, Quantity: 3},
		{MenuItemID: fries, Quantity: 2},
	}, []RecipeIngredient{*r1, *r2})

	require.Len(t, plan, 2)
	assert.Equal(t, bun, plan[0].InventoryItemID)
	assert.Equal(t, "3.000", plan[0].Quantity.StringFixed(3))
	assert.Equal(t, "0.540", plan[1].Quantity.StringFixed(3))
}

func TestNewRecipeIngredientValidation(t *testing.T) {
	_, err := NewRecipeIngredient(uuid.New(), uuid.New(), uuid.New(), decimal.Zero)
	assert.Error(t, err)
	_, err = NewRecipeIngredient(uuid.New(), uuid.Nil, uuid.New(), q("1"))
	assert.Error(t, err)
}
