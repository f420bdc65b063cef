package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	ledgerapp "github.com/restaurant/backend/internal/application/ledger"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// EngineTestSetup wires the services over the shared PostgreSQL database
type EngineTestSetup struct {
	DB       *EngineDB
	Fixtures *testutil.Fixtures
	Orders   *orderingapp.OrderService
	Payments *orderingapp.PaymentService
	Shifts   *financeapp.ShiftService
	Stock    *inventoryapp.StockService
	Rebuild  *ledgerapp.RebuildService
	Actor    uuid.UUID
}

func NewEngineTestSetup(t *testing.T) *EngineTestSetup {
	t.Helper()

	engineDB := OpenEngineDB(t)
	scope := persistence.NewGormTransactionScope(engineDB.DB)
	logger := zap.NewNop()

	return &EngineTestSetup{
		DB:       engineDB,
		Fixtures: testutil.NewFixtures(engineDB.DB),
		Orders: orderingapp.NewOrderService(scope, persistence.NewGormCatalogReader(engineDB.DB),
			persistence.NewGormCouponValidator(engineDB.DB), inventory.DefaultDeductionPolicy(), logger),
		Payments: orderingapp.NewPaymentService(scope, logger),
		Shifts:   financeapp.NewShiftService(scope, logger),
		Stock:    inventoryapp.NewStockService(scope, inventory.DefaultDeductionPolicy(), logger),
		Rebuild:  ledgerapp.NewRebuildService(scope, logger),
		Actor:    uuid.New(),
	}
}

func TestEngine_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewEngineTestSetup(t)
	ctx := context.Background()
	fx := setup.Fixtures

	register := fx.CashRegister(t)
	_, err := setup.Shifts.OpenShift(ctx, fx.TenantID, financeapp.OpenShiftRequest{
		CashRegisterID: register.ID,
		OpeningAmount:  decimal.Zero,
		OperatorID:     setup.Actor,
	})
	require.NoError(t, err)

	dish, _ := fx.MenuItem(t, decimal.NewFromInt(30))
	order, err := setup.Orders.Create(ctx, fx.TenantID, orderingapp.CreateOrderRequest{
		BranchID:  fx.BranchID,
		OrderType: "takeaway",
		Items:     []orderingapp.AddItemRequest{{MenuItemID: dish, Quantity: 1}},
		CreatedBy: setup.Actor,
	})
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := setup.Payments.RecordPayment(ctx, fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
				Amount:     decimal.NewFromInt(30),
				Method:     "cash",
				RecordedBy: setup.Actor,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "only one full payment may land")

	reloaded, err := setup.Orders.Get(ctx, fx.TenantID, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30).Equal(reloaded.PaidAmount))
	assert.Equal(t, "paid", reloaded.PaymentStatus)
	assert.True(t, decimal.NewFromInt(30).Equal(fx.RegisterBalance(t, register.ID)))

	var revenue int64
	require.NoError(t, setup.DB.DB.Model(&models.FinancialTransactionModel{}).
		Where("order_id = ? AND type = ?", order.ID, finance.TransactionTypeRevenue).
		Count(&revenue).Error)
	assert.Equal(t, int64(1), revenue)
}

func TestEngine_ConcurrentFirstOrdersShareOneSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewEngineTestSetup(t)
	ctx := context.Background()
	fx := setup.Fixtures

	table := fx.Table(t, 8)
	dish, _ := fx.MenuItem(t, decimal.NewFromInt(12))

	const waiters = 5
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	sessions := make([]uuid.UUID, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := setup.Orders.Create(ctx, fx.TenantID, orderingapp.CreateOrderRequest{
				BranchID:  fx.BranchID,
				OrderType: "dine_in",
				TableID:   &table.ID,
				Items:     []orderingapp.AddItemRequest{{MenuItemID: dish, Quantity: 1}},
				CreatedBy: setup.Actor,
			})
			errs[i] = err
			if err == nil && order.TableSessionID != nil {
				sessions[i] = *order.TableSessionID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "waiter %d", i)
		assert.Equal(t, sessions[0], sessions[i])
	}

	var active int64
	require.NoError(t, setup.DB.DB.Model(&models.TableSessionModel{}).
		Where("table_id = ? AND status = ?", table.ID, dining.SessionStatusActive).
		Count(&active).Error)
	assert.Equal(t, int64(1), active)

	var row models.TableModel
	require.NoError(t, setup.DB.DB.Where("id = ?", table.ID).First(&row).Error)
	assert.Equal(t, dining.TableStatusInProgress, row.Status)
	assert.True(t, decimal.NewFromInt(60).Equal(row.TotalAmount))
}

func TestEngine_ConcurrentServesDeductStockExactly(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewEngineTestSetup(t)
	ctx := context.Background()
	fx := setup.Fixtures

	dish, _ := fx.MenuItem(t, decimal.NewFromInt(18))
	flour := uuid.New()
	fx.Recipe(t, dish, flour, decimal.RequireFromString("0.5"))
	_, err := setup.Stock.RecordMovement(ctx, fx.TenantID, inventoryapp.RecordMovementRequest{
		BranchID:        fx.BranchID,
		InventoryItemID: flour,
		Type:            "in",
		Quantity:        decimal.NewFromInt(10),
		CreatedBy:       setup.Actor,
	})
	require.NoError(t, err)

	const orders = 6
	ids := make([]uuid.UUID, orders)
	for i := range ids {
		order, err := setup.Orders.Create(ctx, fx.TenantID, orderingapp.CreateOrderRequest{
			BranchID:  fx.BranchID,
			OrderType: "takeaway",
			Items:     []orderingapp.AddItemRequest{{MenuItemID: dish, Quantity: 2}},
			CreatedBy: setup.Actor,
		})
		require.NoError(t, err)
		ids[i] = order.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, orders)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = setup.Orders.UpdateStatus(ctx, fx.TenantID, id, orderingapp.UpdateStatusRequest{
				Status:  "served",
				ActorID: setup.Actor,
			})
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// 6 orders x 2 units x 0.5
	assert.True(t, decimal.NewFromInt(4).Equal(fx.StockQuantity(t, flour)))

	var movements int64
	require.NoError(t, setup.DB.DB.Model(&models.StockMovementModel{}).
		Where("inventory_item_id = ? AND reference_type = ?", flour, inventory.ReferenceTypeOrder).
		Count(&movements).Error)
	assert.Equal(t, int64(orders), movements)

	drift, err := setup.Rebuild.RebuildBranchStock(ctx, fx.TenantID, fx.BranchID)
	require.NoError(t, err)
	assert.Empty(t, drift, "cached stock matches the movement ledger")
}
