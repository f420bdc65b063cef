package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	ledgerapp "github.com/restaurant/backend/internal/application/ledger"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerWorld struct {
	fx         *testutil.Fixtures
	rebuild    *ledgerapp.RebuildService
	registerID uuid.UUID
	itemID     uuid.UUID
	customerID uuid.UUID
}

// newLedgerWorld books an opening float, a paid cash order for a loyalty
// customer and a stock delivery through the real services.
func newLedgerWorld(t *testing.T) *ledgerWorld {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(db)
	scope := persistence.NewGormTransactionScope(db)
	logger := zap.NewNop()
	actor := uuid.New()

	register := fx.CashRegister(t)
	_, err := financeapp.NewShiftService(scope, logger).OpenShift(ctx, fx.TenantID, financeapp.OpenShiftRequest{
		CashRegisterID: register.ID,
		OpeningAmount:  decimal.NewFromInt(100),
		OperatorID:     actor,
	})
	require.NoError(t, err)

	customer := fx.Customer(t)
	fx.LoyaltyProgram(t, decimal.NewFromInt(1), decimal.RequireFromString("0.05"), 10)
	dish, _ := fx.MenuItem(t, decimal.NewFromInt(20))

	orders := orderingapp.NewOrderService(scope, persistence.NewGormCatalogReader(db), nil, inventory.DefaultDeductionPolicy(), logger)
	order, err := orders.Create(ctx, fx.TenantID, orderingapp.CreateOrderRequest{
		BranchID:   fx.BranchID,
		OrderType:  "takeaway",
		CustomerID: &customer.ID,
		Items:      []orderingapp.AddItemRequest{{MenuItemID: dish, Quantity: 1}},
		CreatedBy:  actor,
	})
	require.NoError(t, err)
	_, err = orderingapp.NewPaymentService(scope, logger).RecordPayment(ctx, fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount:     decimal.NewFromInt(20),
		Method:     "cash",
		RecordedBy: actor,
	})
	require.NoError(t, err)

	item := uuid.New()
	_, err = inventoryapp.NewStockService(scope, inventory.DefaultDeductionPolicy(), logger).RecordMovement(ctx, fx.TenantID, inventoryapp.RecordMovementRequest{
		BranchID:        fx.BranchID,
		InventoryItemID: item,
		Type:            "in",
		Quantity:        decimal.NewFromInt(50),
		CreatedBy:       actor,
	})
	require.NoError(t, err)

	return &ledgerWorld{
		fx:         fx,
		rebuild:    ledgerapp.NewRebuildService(scope, logger),
		registerID: register.ID,
		itemID:     item,
		customerID: customer.ID,
	}
}

func (w *ledgerWorld) corrupt(t *testing.T) {
	t.Helper()
	db := w.fx.DB
	require.NoError(t, db.Model(&models.CashRegisterModel{}).Where("id = ?", w.registerID).
		Update("current_balance", decimal.NewFromInt(999)).Error)
	require.NoError(t, db.Model(&models.BranchStockModel{}).Where("inventory_item_id = ?", w.itemID).
		Update("quantity", decimal.NewFromInt(7)).Error)
	require.NoError(t, db.Model(&models.CustomerModel{}).Where("id = ?", w.customerID).
		Updates(map[string]any{"loyalty_points": 0, "total_spent": decimal.Zero, "visit_count": 5}).Error)
}

func TestRebuildService_ConsistentLedgerHasNoDrift(t *testing.T) {
	w := newLedgerWorld(t)
	ctx := context.Background()

	assert.True(t, decimal.NewFromInt(120).Equal(w.fx.RegisterBalance(t, w.registerID)))

	report, err := w.rebuild.Audit(ctx, w.fx.TenantID)
	require.NoError(t, err)
	assert.False(t, report.HasDrift())

	drift, err := w.rebuild.RebuildCustomer(ctx, w.fx.TenantID, w.customerID)
	require.NoError(t, err)
	assert.Nil(t, drift)
}

func TestRebuildService_AuditReportsWithoutFixing(t *testing.T) {
	w := newLedgerWorld(t)
	ctx := context.Background()
	w.corrupt(t)

	report, err := w.rebuild.Audit(ctx, w.fx.TenantID)
	require.NoError(t, err)
	require.True(t, report.HasDrift())
	require.Len(t, report.Registers, 1)
	assert.True(t, decimal.NewFromInt(999).Equal(report.Registers[0].Cached))
	assert.True(t, decimal.NewFromInt(120).Equal(report.Registers[0].Ledger))
	require.Len(t, report.Stock, 1)
	assert.Equal(t, w.itemID, report.Stock[0].InventoryItemID)
	assert.True(t, decimal.NewFromInt(7).Equal(report.Stock[0].Cached))
	assert.True(t, decimal.NewFromInt(50).Equal(report.Stock[0].Ledger))

	assert.True(t, decimal.NewFromInt(999).Equal(w.fx.RegisterBalance(t, w.registerID)), "audit is read-only")
	assert.True(t, decimal.NewFromInt(7).Equal(w.fx.StockQuantity(t, w.itemID)))
}

func TestRebuildService_RebuildsCaches(t *testing.T) {
	w := newLedgerWorld(t)
	ctx := context.Background()
	w.corrupt(t)

	register, err := w.rebuild.RebuildCashRegister(ctx, w.fx.TenantID, w.registerID)
	require.NoError(t, err)
	require.NotNil(t, register)
	assert.True(t, decimal.NewFromInt(120).Equal(w.fx.RegisterBalance(t, w.registerID)))

	stock, err := w.rebuild.RebuildBranchStock(ctx, w.fx.TenantID, w.fx.BranchID)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(w.fx.StockQuantity(t, w.itemID)))

	customer, err := w.rebuild.RebuildCustomer(ctx, w.fx.TenantID, w.customerID)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, 0, customer.CachedPoints)
	assert.Equal(t, 20, customer.LedgerPoints)
	assert.Equal(t, 5, customer.CachedVisits)
	assert.Equal(t, 1, customer.LedgerVisits)

	var row models.CustomerModel
	require.NoError(t, w.fx.DB.Where("id = ?", w.customerID).First(&row).Error)
	assert.Equal(t, 20, row.LoyaltyPoints)
	assert.Equal(t, 1, row.VisitCount)
	assert.True(t, decimal.NewFromInt(20).Equal(row.TotalSpent))

	report, err := w.rebuild.Audit(ctx, w.fx.TenantID)
	require.NoError(t, err)
	assert.False(t, report.HasDrift(), "rebuild is idempotent")

	again, err := w.rebuild.RebuildCashRegister(ctx, w.fx.TenantID, w.registerID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestRebuildService_UnknownCustomer(t *testing.T) {
	w := newLedgerWorld(t)

	_, err := w.rebuild.RebuildCustomer(context.Background(), w.fx.TenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
