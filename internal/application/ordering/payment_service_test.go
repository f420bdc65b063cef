package ordering_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/restaurant/backend/internal/application/ledger"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/cache"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentService_SplitTenderCompletesOrder(t *testing.T) {
	h := newHarness(t)
	registerID, shift := h.openShift(t, "100")
	dish, _ := h.fx.MenuItem(t, money("10"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	received := money("20")
	first, err := h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount:         money("6"),
		Method:         "cash",
		ReceivedAmount: &received,
		RecordedBy:     h.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "partial", first.PaymentStatus)
	assertMoney(t, "14", first.Change)
	assertMoney(t, "4", first.Order.RemainingBalance)
	require.NotNil(t, first.ShiftID)
	assert.Equal(t, shift.ID, *first.ShiftID)

	second, err := h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount:     money("4"),
		Method:     "pix",
		Pix:        &orderingapp.PixDetailsRequest{EndToEndID: "E2E123"},
		RecordedBy: h.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", second.PaymentStatus)
	assert.True(t, second.Change.IsZero())
	assertMoney(t, "10", second.Order.PaidAmount)
	assert.NotNil(t, second.Order.PaidAt)

	// only the cash tender reaches the drawer
	assertMoney(t, "106", h.fx.RegisterBalance(t, registerID))

	rows := h.orderLedger(t, order.ID)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, finance.TransactionTypeRevenue, row.Type)
		require.NotNil(t, row.ShiftID)
		assert.Equal(t, shift.ID, *row.ShiftID)
	}

	assert.Equal(t, 2, h.events.Count(ordering.EventTypeOrderPaymentRecorded))
	assert.Equal(t, 1, h.events.Count(ordering.EventTypeOrderPaymentCompleted))
}

func TestPaymentService_WithoutOpenShiftStillRecords(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("15"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	resp, err := h.pay(order.ID, "15", "credit_card")
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.Nil(t, resp.ShiftID)

	rows := h.orderLedger(t, order.ID)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ShiftID)
	assert.Nil(t, rows[0].CashRegisterID)
}

func TestPaymentService_RejectsOverpayment(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("10"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	_, err := h.pay(order.ID, "10.50", "debit_card")
	assert.ErrorIs(t, err, ordering.ErrPaymentExceedsBalance)

	_, err = h.pay(order.ID, "0", "cash")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount: money("5"),
		Method: "pix",
		Card:   &orderingapp.CardDetailsRequest{Last4: "1234"},
	})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PAYMENT_DETAILS", ""))

	reloaded, err := h.orders.Get(h.ctx, h.fx.TenantID, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaidAmount.IsZero())
	assert.Empty(t, h.orderLedger(t, order.ID))
}

func TestPaymentService_PaidOrderCreditsCustomer(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("300"))
	customer := h.fx.Customer(t)
	h.fx.LoyaltyProgram(t, money("1"), money("0.10"), 10)

	order := h.order(t, "takeaway", &customer.ID, h.line(dish, 2))

	resp, err := h.pay(order.ID, "600", "credit_card")
	require.NoError(t, err)
	assert.Equal(t, 600, resp.PointsEarned)
	assert.Equal(t, 600, resp.Order.LoyaltyPointsEarned)

	row := h.customer(t, customer.ID)
	assertMoney(t, "600", row.TotalSpent)
	assert.Equal(t, 1, row.VisitCount)
	assert.Equal(t, 600, row.LoyaltyPoints)
	assert.Equal(t, loyalty.TierSilver, row.Tier)
}

func TestPaymentService_IdempotencyKey(t *testing.T) {
	h := newHarness(t)
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	h.payments.SetIdempotencyStore(store, shared.IdempotencyConfig{TTL: time.Minute, Enabled: true})

	dish, _ := h.fx.MenuItem(t, money("10"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	req := orderingapp.RecordPaymentRequest{
		Amount:         money("4"),
		Method:         "debit_card",
		IdempotencyKey: "pay-1",
		RecordedBy:     h.actor,
	}
	_, err := h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, req)
	require.NoError(t, err)

	_, err = h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, req)
	assert.ErrorIs(t, err, shared.ErrDuplicateRequest)

	reloaded, err := h.orders.Get(h.ctx, h.fx.TenantID, order.ID)
	require.NoError(t, err)
	assertMoney(t, "4", reloaded.PaidAmount, "retry is not applied twice")

	// a failed attempt frees its key for the corrected retry
	failing := req
	failing.IdempotencyKey = "pay-2"
	failing.Amount = money("50")
	_, err = h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, failing)
	assert.ErrorIs(t, err, ordering.ErrPaymentExceedsBalance)

	failing.Amount = money("6")
	resp, err := h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, failing)
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.PaymentStatus)
}

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error {
	return nil
}

func TestPaymentService_IdempotencyStoreFailure(t *testing.T) {
	h := newHarness(t)
	store := new(mockIdempotencyStore)
	h.payments.SetIdempotencyStore(store, shared.IdempotencyConfig{TTL: time.Minute, Enabled: true})

	dish, _ := h.fx.MenuItem(t, money("10"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	scoped := "payment:" + h.fx.TenantID.String() + ":" + order.ID.String() + ":k1"
	store.On("Claim", mock.Anything, scoped, time.Minute).Return(false, errors.New("redis down")).Once()

	_, err := h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount:         money("10"),
		Method:         "voucher",
		IdempotencyKey: "k1",
		RecordedBy:     h.actor,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestPaymentService_CancelReversesEverything(t *testing.T) {
	h := newHarness(t)
	registerID, _ := h.openShift(t, "100")
	dish, _ := h.fx.MenuItem(t, money("20"))
	flour := uuid.New()
	h.stockIn(t, flour, "50")
	h.fx.Recipe(t, dish, flour, money("6"))
	customer := h.fx.Customer(t)
	h.fx.LoyaltyProgram(t, money("1"), money("1"), 1)
	require.NoError(t, h.db.Model(&models.CustomerModel{}).Where("id = ?", customer.ID).Update("loyalty_points", 10).Error)

	order := h.order(t, "takeaway", &customer.ID, h.line(dish, 2))
	_, err := h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, order.ID, orderingapp.RedeemPointsRequest{Points: 10})
	require.NoError(t, err)
	_, err = h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "served", ActorID: h.actor})
	require.NoError(t, err)
	assertMoney(t, "38", h.fx.StockQuantity(t, flour))

	paid, err := h.pay(order.ID, "30", "cash")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.Equal(t, 30, paid.PointsEarned)
	assertMoney(t, "130", h.fx.RegisterBalance(t, registerID))

	before := h.customer(t, customer.ID)
	assertMoney(t, "30", before.TotalSpent)
	assert.Equal(t, 1, before.VisitCount)
	assert.Equal(t, 30, before.LoyaltyPoints)

	resp, err := h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{
		Reason:      "kitchen error",
		CancelledBy: h.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Order.Status)
	assertMoney(t, "30", resp.RefundAmount)
	require.Len(t, resp.RefundTransactionIDs, 1)
	assert.Equal(t, 1, resp.StockMovementsWritten)
	assert.Equal(t, -20, resp.PointsAdjusted)

	assertMoney(t, "100", h.fx.RegisterBalance(t, registerID))
	assertMoney(t, "50", h.fx.StockQuantity(t, flour))

	after := h.customer(t, customer.ID)
	assert.True(t, after.TotalSpent.IsZero())
	assert.Equal(t, 0, after.VisitCount)
	assert.Equal(t, 10, after.LoyaltyPoints, "redeemed points return, earned points are taken back")

	var refunds []models.FinancialTransactionModel
	require.NoError(t, h.db.Where("id = ?", resp.RefundTransactionIDs[0]).Find(&refunds).Error)
	require.Len(t, refunds, 1)
	assert.Equal(t, finance.TransactionTypeExpense, refunds[0].Type)
	var category models.FinancialCategoryModel
	require.NoError(t, h.db.Where("id = ?", *refunds[0].CategoryID).First(&category).Error)
	assert.Equal(t, finance.CategoryNameRefunds, category.Name)

	_, err = h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{Reason: "again", CancelledBy: h.actor})
	assert.ErrorIs(t, err, ordering.ErrAlreadyCancelled)
	_, err = h.pay(order.ID, "1", "cash")
	assert.ErrorIs(t, err, ordering.ErrOrderCancelled)
	assert.Equal(t, 1, h.events.Count(ordering.EventTypeOrderCancelled))
}

func TestPaymentService_CancelUnpaidOrder(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("20"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	resp, err := h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{Reason: "walked out", CancelledBy: h.actor})
	require.NoError(t, err)
	assert.True(t, resp.RefundAmount.IsZero())
	assert.Empty(t, resp.RefundTransactionIDs)
	assert.Zero(t, resp.StockMovementsWritten)
	assert.Empty(t, h.orderLedger(t, order.ID))
}

func TestPaymentService_CancelRefundsEachTender(t *testing.T) {
	h := newHarness(t)
	registerID, _ := h.openShift(t, "100")
	dish, _ := h.fx.MenuItem(t, money("10"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	_, err := h.pay(order.ID, "6", "cash")
	require.NoError(t, err)
	_, err = h.payments.RecordPayment(h.ctx, h.fx.TenantID, order.ID, orderingapp.RecordPaymentRequest{
		Amount:     money("4"),
		Method:     "pix",
		Pix:        &orderingapp.PixDetailsRequest{EndToEndID: "E2E9"},
		RecordedBy: h.actor,
	})
	require.NoError(t, err)
	assertMoney(t, "106", h.fx.RegisterBalance(t, registerID))

	resp, err := h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{
		Reason:      "wrong table",
		CancelledBy: h.actor,
	})
	require.NoError(t, err)
	assertMoney(t, "10", resp.RefundAmount)
	require.Len(t, resp.RefundTransactionIDs, 2)

	assertMoney(t, "100", h.fx.RegisterBalance(t, registerID), "only the cash share leaves the drawer")

	refunds := make(map[string]decimal.Decimal)
	for _, row := range h.orderLedger(t, order.ID) {
		if row.Type == finance.TransactionTypeExpense {
			refunds[row.PaymentMethod] = row.Amount
		}
	}
	require.Len(t, refunds, 2)
	assertMoney(t, "6", refunds["cash"])
	assertMoney(t, "4", refunds["pix"])
}

func TestPaymentService_EditSettlingOrderCreditsCustomerOnce(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("6"))
	side, _ := h.fx.MenuItem(t, money("4"))
	customer := h.fx.Customer(t)
	require.NoError(t, h.db.Model(&models.CustomerModel{}).Where("id = ?", customer.ID).
		Updates(map[string]any{"total_spent": money("40"), "visit_count": 1}).Error)

	order := h.order(t, "takeaway", &customer.ID, h.line(dish, 1), h.line(side, 1))
	_, err := h.pay(order.ID, "6", "cash")
	require.NoError(t, err)

	var sideItem uuid.UUID
	for _, it := range order.Items {
		if it.MenuItemID == side {
			sideItem = it.ID
		}
	}
	edited, err := h.orders.RemoveItem(h.ctx, h.fx.TenantID, order.ID, sideItem)
	require.NoError(t, err)
	assert.Equal(t, "paid", edited.PaymentStatus)

	settled := h.customer(t, customer.ID)
	assertMoney(t, "46", settled.TotalSpent)
	assert.Equal(t, 2, settled.VisitCount)

	_, err = h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{Reason: "void", CancelledBy: h.actor})
	require.NoError(t, err)

	after := h.customer(t, customer.ID)
	assertMoney(t, "40", after.TotalSpent)
	assert.Equal(t, 1, after.VisitCount)
}

func TestPaymentService_ReopenedPaidOrderCountsOneVisit(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("10"))
	dessert, _ := h.fx.MenuItem(t, money("5"))
	customer := h.fx.Customer(t)
	rebuild := ledgerapp.NewRebuildService(persistence.NewGormTransactionScope(h.db), zap.NewNop())

	order := h.order(t, "takeaway", &customer.ID, h.line(dish, 1))
	_, err := h.pay(order.ID, "10", "credit_card")
	require.NoError(t, err)

	reopened, err := h.orders.AddItem(h.ctx, h.fx.TenantID, order.ID, h.line(dessert, 1))
	require.NoError(t, err)
	assert.Equal(t, "partial", reopened.PaymentStatus)

	_, err = h.pay(order.ID, "5", "credit_card")
	require.NoError(t, err)

	paid := h.customer(t, customer.ID)
	assertMoney(t, "15", paid.TotalSpent)
	assert.Equal(t, 1, paid.VisitCount)

	drift, err := rebuild.RebuildCustomer(h.ctx, h.fx.TenantID, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, drift, "credited spend matches the order history")

	_, err = h.payments.CancelOrder(h.ctx, h.fx.TenantID, order.ID, orderingapp.CancelOrderRequest{Reason: "void", CancelledBy: h.actor})
	require.NoError(t, err)

	after := h.customer(t, customer.ID)
	assert.True(t, after.TotalSpent.IsZero())
	assert.Equal(t, 0, after.VisitCount)

	drift, err = rebuild.RebuildCustomer(h.ctx, h.fx.TenantID, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, drift)
}
