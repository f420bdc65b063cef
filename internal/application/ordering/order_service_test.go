package ordering_test

import (
	"testing"

	"github.com/google/uuid"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CreateComputesTotals(t *testing.T) {
	h := newHarness(t)
	burger, opts := h.fx.MenuItem(t, money("10"), testutil.MenuOption{Name: "Bacon", PriceAdjustment: money("2")})

	item := h.line(burger, 2)
	item.Options = []orderingapp.OptionSelection{{OptionID: opts[0], Quantity: 1}}
	order := h.order(t, "takeaway", nil, item)

	require.Len(t, order.Items, 1)
	assertMoney(t, "12", order.Items[0].UnitPrice.Add(order.Items[0].Options[0].PriceAdjustment))
	assertMoney(t, "24", order.Items[0].LineTotal)
	assertMoney(t, "24", order.Subtotal)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "unpaid", order.PaymentStatus)

	order, err := h.orders.ApplyDiscount(h.ctx, h.fx.TenantID, order.ID, orderingapp.ApplyDiscountRequest{Type: "percent", Value: money("10")})
	require.NoError(t, err)
	assertMoney(t, "2.40", order.DiscountAmount)

	order, err = h.orders.SetFees(h.ctx, h.fx.TenantID, order.ID, orderingapp.SetFeesRequest{ServiceCharge: money("1.50")})
	require.NoError(t, err)
	assertMoney(t, "23.10", order.TotalAmount)
	assertMoney(t, "23.10", order.RemainingBalance)

	reloaded, err := h.orders.Get(h.ctx, h.fx.TenantID, order.ID)
	require.NoError(t, err)
	assertMoney(t, "23.10", reloaded.TotalAmount)
	assert.Equal(t, order.OrderNumber, reloaded.OrderNumber)

	assert.Equal(t, 1, h.events.Count(ordering.EventTypeOrderCreated))
	assert.GreaterOrEqual(t, h.events.Count(ordering.EventTypeOrderTotalsChanged), 2)
}

func TestOrderService_ItemEdits(t *testing.T) {
	h := newHarness(t)
	pizza, _ := h.fx.MenuItem(t, money("40"))
	soda, _ := h.fx.MenuItem(t, money("6"))

	order := h.order(t, "delivery", nil, h.line(pizza, 1))

	order, err := h.orders.AddItem(h.ctx, h.fx.TenantID, order.ID, h.line(soda, 2))
	require.NoError(t, err)
	assertMoney(t, "52", order.Subtotal)

	var sodaLine uuid.UUID
	for _, it := range order.Items {
		if it.MenuItemID == soda {
			sodaLine = it.ID
		}
	}
	order, err = h.orders.UpdateItemQuantity(h.ctx, h.fx.TenantID, order.ID, sodaLine, orderingapp.UpdateItemQuantityRequest{Quantity: 3})
	require.NoError(t, err)
	assertMoney(t, "58", order.TotalAmount)

	order, err = h.orders.RemoveItem(h.ctx, h.fx.TenantID, order.ID, sodaLine)
	require.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assertMoney(t, "40", order.TotalAmount)

	_, err = h.orders.RemoveItem(h.ctx, h.fx.TenantID, order.ID, uuid.New())
	assert.ErrorIs(t, err, ordering.ErrItemNotFound)

	_, err = h.orders.AddItem(h.ctx, h.fx.TenantID, order.ID, orderingapp.AddItemRequest{
		MenuItemID: soda,
		Quantity:   1,
		Options:    []orderingapp.OptionSelection{{OptionID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_OPTION", ""))
}

func TestOrderService_DiscountAboveSubtotalIsRejected(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("24"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	_, err := h.orders.ApplyDiscount(h.ctx, h.fx.TenantID, order.ID, orderingapp.ApplyDiscountRequest{Type: "amount", Value: money("30")})
	assert.ErrorIs(t, err, ordering.ErrInvalidDiscount)

	order, err = h.orders.ApplyDiscount(h.ctx, h.fx.TenantID, order.ID, orderingapp.ApplyDiscountRequest{Type: "amount", Value: money("24")})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestOrderService_Coupons(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("30"))
	h.fx.Coupon(t, "SAVE5", "fixed", money("5"))
	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	_, err := h.orders.ApplyCoupon(h.ctx, h.fx.TenantID, order.ID, orderingapp.ApplyCouponRequest{Code: "NOPE"})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_COUPON", ""))

	order, err = h.orders.ApplyCoupon(h.ctx, h.fx.TenantID, order.ID, orderingapp.ApplyCouponRequest{Code: " save5 "})
	require.NoError(t, err)
	require.NotNil(t, order.CouponID)
	assertMoney(t, "5", order.CouponDiscount)
	assertMoney(t, "25", order.TotalAmount)

	order, err = h.orders.RemoveCoupon(h.ctx, h.fx.TenantID, order.ID)
	require.NoError(t, err)
	assert.Nil(t, order.CouponID)
	assertMoney(t, "30", order.TotalAmount)
}

func TestOrderService_RedeemLoyaltyPoints(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("30"))
	customer := h.fx.Customer(t)
	h.fx.LoyaltyProgram(t, money("1"), money("0.10"), 10)
	require.NoError(t, h.db.Model(&models.CustomerModel{}).Where("id = ?", customer.ID).Update("loyalty_points", 100).Error)

	order := h.order(t, "takeaway", &customer.ID, h.line(dish, 1))

	_, err := h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, order.ID, orderingapp.RedeemPointsRequest{Points: 5})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_REDEMPTION", ""))

	_, err = h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, order.ID, orderingapp.RedeemPointsRequest{Points: 400})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_REDEMPTION", ""), "value above the balance")

	order, err = h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, order.ID, orderingapp.RedeemPointsRequest{Points: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, order.LoyaltyPointsRedeemed)
	assertMoney(t, "5", order.LoyaltyDiscountAmount)
	assertMoney(t, "25", order.TotalAmount)

	assert.Equal(t, 50, h.customer(t, customer.ID).LoyaltyPoints)
	var rows []models.LoyaltyTransactionModel
	require.NoError(t, h.db.Where("customer_id = ?", customer.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, loyalty.TransactionTypeRedeemed, rows[0].Type)
	assert.Equal(t, -50, rows[0].Points)
	assert.Equal(t, 50, rows[0].BalanceAfter)
}

func TestOrderService_RedeemNeedsCustomerAndProgram(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("30"))

	anonymous := h.order(t, "takeaway", nil, h.line(dish, 1))
	_, err := h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, anonymous.ID, orderingapp.RedeemPointsRequest{Points: 10})
	assert.ErrorIs(t, err, shared.NewDomainError("CUSTOMER_REQUIRED", ""))

	customer := h.fx.Customer(t)
	known := h.order(t, "takeaway", &customer.ID, h.line(dish, 1))
	_, err = h.orders.RedeemLoyaltyPoints(h.ctx, h.fx.TenantID, known.ID, orderingapp.RedeemPointsRequest{Points: 10})
	assert.ErrorIs(t, err, shared.NewDomainError("LOYALTY_DISABLED", ""))
}

func TestOrderService_ServeDeductsStockOnce(t *testing.T) {
	h := newHarness(t)
	dish, _ := h.fx.MenuItem(t, money("20"))
	flour := uuid.New()
	h.stockIn(t, flour, "50")
	h.fx.Recipe(t, dish, flour, money("6"))

	order := h.order(t, "takeaway", nil, h.line(dish, 2))

	order, err := h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "in_prep", ActorID: h.actor})
	require.NoError(t, err)
	assertMoney(t, "50", h.fx.StockQuantity(t, flour), "in_prep leaves stock alone")

	order, err = h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "served", ActorID: h.actor})
	require.NoError(t, err)
	assert.Equal(t, "served", order.Status)
	require.NotNil(t, order.ServedAt)
	assertMoney(t, "38", h.fx.StockQuantity(t, flour))

	_, err = h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "served", ActorID: h.actor})
	require.NoError(t, err)
	assertMoney(t, "38", h.fx.StockQuantity(t, flour), "serving twice deducts once")

	var movements []models.StockMovementModel
	require.NoError(t, h.db.Where("reference_id = ?", order.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeOut, movements[0].Type)
	assertMoney(t, "12", movements[0].Quantity)

	_, err = h.orders.AddItem(h.ctx, h.fx.TenantID, order.ID, h.line(dish, 1))
	assert.ErrorIs(t, err, ordering.ErrOrderFrozen)
	_, err = h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "ready"})
	assert.ErrorIs(t, err, ordering.ErrInvalidTransition)
}

func TestOrderService_ServeWithoutStockRollsBack(t *testing.T) {
	h := newHarnessWithPolicy(t, inventory.DeductionPolicy{})
	dish, _ := h.fx.MenuItem(t, money("20"))
	cheese := uuid.New()
	h.stockIn(t, cheese, "5")
	h.fx.Recipe(t, dish, cheese, money("6"))

	order := h.order(t, "takeaway", nil, h.line(dish, 1))

	_, err := h.orders.UpdateStatus(h.ctx, h.fx.TenantID, order.ID, orderingapp.UpdateStatusRequest{Status: "served", ActorID: h.actor})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	reloaded, err := h.orders.Get(h.ctx, h.fx.TenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", reloaded.Status)
	assert.Nil(t, reloaded.ServedAt)
	assertMoney(t, "5", h.fx.StockQuantity(t, cheese))
}

func TestOrderService_UnknownOrder(t *testing.T) {
	h := newHarness(t)

	_, err := h.orders.Get(h.ctx, h.fx.TenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = h.orders.Create(h.ctx, h.fx.TenantID, orderingapp.CreateOrderRequest{
		BranchID:  h.fx.BranchID,
		OrderType: "takeaway",
		TableID:   func() *uuid.UUID { id := uuid.New(); return &id }(),
	})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_TABLE", ""))
}
