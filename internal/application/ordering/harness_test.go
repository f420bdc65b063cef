package ordering_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	fx       *testutil.Fixtures
	events   *testutil.RecordingPublisher
	orders   *orderingapp.OrderService
	payments *orderingapp.PaymentService
	shifts   *financeapp.ShiftService
	stock    *inventoryapp.StockService
	actor    uuid.UUID
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithPolicy(t, inventory.DefaultDeductionPolicy())
}

func newHarnessWithPolicy(t *testing.T, policy inventory.DeductionPolicy) *harness {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	events := testutil.NewRecordingPublisher()
	logger := zap.NewNop()

	orders := orderingapp.NewOrderService(scope, persistence.NewGormCatalogReader(db), persistence.NewGormCouponValidator(db), policy, logger)
	orders.SetEventPublisher(events)
	payments := orderingapp.NewPaymentService(scope, logger)
	payments.SetEventPublisher(events)

	return &harness{
		ctx:      context.Background(),
		db:       db,
		fx:       testutil.NewFixtures(db),
		events:   events,
		orders:   orders,
		payments: payments,
		shifts:   financeapp.NewShiftService(scope, logger),
		stock:    inventoryapp.NewStockService(scope, policy, logger),
		actor:    uuid.New(),
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// order creates an order of the given type with one line per menu item
func (h *harness) order(t *testing.T, orderType string, customerID *uuid.UUID, items ...orderingapp.AddItemRequest) *orderingapp.OrderResponse {
	t.Helper()
	resp, err := h.orders.Create(h.ctx, h.fx.TenantID, orderingapp.CreateOrderRequest{
		BranchID:   h.fx.BranchID,
		OrderType:  orderType,
		CustomerID: customerID,
		Items:      items,
		CreatedBy:  h.actor,
	})
	require.NoError(t, err)
	return resp
}

func (h *harness) line(menuItemID uuid.UUID, qty int) orderingapp.AddItemRequest {
	return orderingapp.AddItemRequest{MenuItemID: menuItemID, Quantity: qty, ActorID: h.actor}
}

// openShift opens a shift on a new register and returns the register ID
func (h *harness) openShift(t *testing.T, opening string) (uuid.UUID, *financeapp.ShiftResponse) {
	t.Helper()
	register := h.fx.CashRegister(t)
	shift, err := h.shifts.OpenShift(h.ctx, h.fx.TenantID, financeapp.OpenShiftRequest{
		CashRegisterID: register.ID,
		OpeningAmount:  money(opening),
		OperatorID:     h.actor,
	})
	require.NoError(t, err)
	return register.ID, shift
}

func (h *harness) pay(orderID uuid.UUID, amount, method string) (*orderingapp.PaymentResponse, error) {
	return h.payments.RecordPayment(h.ctx, h.fx.TenantID, orderID, orderingapp.RecordPaymentRequest{
		Amount:     money(amount),
		Method:     method,
		RecordedBy: h.actor,
	})
}

func (h *harness) stockIn(t *testing.T, itemID uuid.UUID, qty string) {
	t.Helper()
	_, err := h.stock.RecordMovement(h.ctx, h.fx.TenantID, inventoryapp.RecordMovementRequest{
		BranchID:        h.fx.BranchID,
		InventoryItemID: itemID,
		Type:            "in",
		Quantity:        money(qty),
		Reason:          "delivery",
		CreatedBy:       h.actor,
	})
	require.NoError(t, err)
}

func (h *harness) customer(t *testing.T, id uuid.UUID) models.CustomerModel {
	t.Helper()
	var row models.CustomerModel
	require.NoError(t, h.db.Where("id = ?", id).First(&row).Error)
	return row
}

func (h *harness) orderLedger(t *testing.T, orderID uuid.UUID) []models.FinancialTransactionModel {
	t.Helper()
	var rows []models.FinancialTransactionModel
	require.NoError(t, h.db.Where("order_id = ?", orderID).Order("created_at").Find(&rows).Error)
	return rows
}
