package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	diningapp "github.com/restaurant/backend/internal/application/dining"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService creates orders and applies every change that moves their totals
type OrderService struct {
	txScope         unitofwork.TransactionScope
	catalog         CatalogReader
	coupons         CouponValidator
	policy          inventory.DeductionPolicy
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope unitofwork.TransactionScope,
	catalog CatalogReader,
	coupons CouponValidator,
	policy inventory.DeductionPolicy,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		txScope: txScope,
		catalog: catalog,
		coupons: coupons,
		policy:  policy,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create opens an order. A dine-in order at a table joins the table's active
// session, or starts one when the table is free.
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	orderType := ordering.OrderType(req.OrderType)
	if orderType == "" {
		orderType = ordering.OrderTypeDineIn
	}
	if req.TableID != nil && orderType != ordering.OrderTypeDineIn {
		return nil, shared.NewDomainError("INVALID_TABLE", "Only dine-in orders can be placed at a table")
	}

	items := make([]ordering.NewItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		in, err := s.resolveItem(ctx, tenantID, it)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}

	var (
		order  *ordering.Order
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var sessionID *uuid.UUID
		if req.TableID != nil {
			session, err := diningapp.SessionForNewOrder(ctx, repos, tenantID, *req.TableID, req.CreatedBy)
			if err != nil {
				return err
			}
			if session.BranchID != req.BranchID {
				return shared.NewDomainError("INVALID_TABLE", "Table belongs to another branch")
			}
			sessionID = &session.ID
			events.Collect(session)
		}
		if req.CustomerID != nil {
			if _, err := repos.Customers().FindByID(ctx, tenantID, *req.CustomerID); err != nil {
				return err
			}
		}

		var err error
		order, err = ordering.NewOrder(tenantID, ordering.NewOrderInput{
			BranchID:       req.BranchID,
			OrderType:      orderType,
			TableID:        req.TableID,
			TableSessionID: sessionID,
			CustomerID:     req.CustomerID,
			Notes:          req.Notes,
		})
		if err != nil {
			return err
		}
		for _, in := range items {
			if err := checkGuest(ctx, repos, tenantID, order, in.GuestID); err != nil {
				return err
			}
			if _, err := order.AddItem(in); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if err := s.refreshDining(ctx, repos, tenantID, order, nil); err != nil {
			return err
		}
		if sessionID != nil && len(order.Items) > 0 {
			if err := diningapp.AdvanceTableForOrder(ctx, repos, tenantID, *sessionID); err != nil {
				return err
			}
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCreated(ctx, tenantID, string(order.OrderType))
	}
	s.logger.Info("Order created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("item_count", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Get loads an order
func (s *OrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	var order *ordering.Order
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddItem snapshots a menu item's current price onto the order
func (s *OrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req AddItemRequest) (*OrderResponse, error) {
	in, err := s.resolveItem(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, orderID, "item_added", func(repos unitofwork.Repositories, order *ordering.Order) error {
		if err := checkGuest(ctx, repos, tenantID, order, in.GuestID); err != nil {
			return err
		}
		_, err := order.AddItem(in)
		return err
	})
}

// RemoveItem drops an item from the order
func (s *OrderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "item_removed", func(_ unitofwork.Repositories, order *ordering.Order) error {
		return order.RemoveItem(itemID)
	})
}

// UpdateItemQuantity changes an item's quantity
func (s *OrderService) UpdateItemQuantity(ctx context.Context, tenantID, orderID, itemID uuid.UUID, req UpdateItemQuantityRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "item_quantity_updated", func(_ unitofwork.Repositories, order *ordering.Order) error {
		return order.UpdateItemQuantity(itemID, req.Quantity)
	})
}

// ApplyDiscount sets the order-level discount. An amount larger than the
// subtotal is rejected here even though the calculator would clamp it.
func (s *OrderService) ApplyDiscount(ctx context.Context, tenantID, orderID uuid.UUID, req ApplyDiscountRequest) (*OrderResponse, error) {
	discountType := ordering.DiscountType(req.Type)
	if err := ordering.ValidateDiscountInput(ordering.DiscountInput{Type: discountType, Value: req.Value}); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, orderID, "discount_applied", func(_ unitofwork.Repositories, order *ordering.Order) error {
		if discountType == ordering.DiscountTypeAmount && req.Value.GreaterThan(order.Subtotal) {
			return shared.NewDomainError(ordering.ErrInvalidDiscount.Code,
				fmt.Sprintf("Discount of %s exceeds the subtotal of %s", req.Value.StringFixed(2), order.Subtotal.StringFixed(2)))
		}
		return order.ApplyDiscount(discountType, req.Value)
	})
}

// ApplyCoupon validates a coupon code against the order and applies its discount
func (s *OrderService) ApplyCoupon(ctx context.Context, tenantID, orderID uuid.UUID, req ApplyCouponRequest) (*OrderResponse, error) {
	if s.coupons == nil {
		return nil, shared.NewDomainError("COUPONS_UNAVAILABLE", "Coupon validation is not configured")
	}
	code := strings.TrimSpace(req.Code)
	return s.mutate(ctx, tenantID, orderID, "coupon_applied", func(_ unitofwork.Repositories, order *ordering.Order) error {
		verdict, err := s.coupons.ValidateCoupon(ctx, CouponQuery{
			TenantID:   tenantID,
			Code:       code,
			OrderValue: order.Subtotal,
			OrderType:  string(order.OrderType),
			CustomerID: order.CustomerID,
		})
		if err != nil {
			return fmt.Errorf("validate coupon: %w", err)
		}
		if !verdict.Valid {
			reason := verdict.Reason
			if reason == "" {
				reason = "Coupon is not valid for this order"
			}
			return shared.NewDomainError("INVALID_COUPON", reason)
		}
		return order.ApplyCoupon(verdict.CouponID, verdict.DiscountAmount)
	})
}

// RemoveCoupon clears the order's coupon
func (s *OrderService) RemoveCoupon(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "coupon_removed", func(_ unitofwork.Repositories, order *ordering.Order) error {
		return order.RemoveCoupon()
	})
}

// SetFees replaces the service, delivery and packaging fees
func (s *OrderService) SetFees(ctx context.Context, tenantID, orderID uuid.UUID, req SetFeesRequest) (*OrderResponse, error) {
	if err := ordering.ValidateFeeInput(ordering.FeeInput{
		ServiceCharge: req.ServiceCharge,
		DeliveryFee:   req.DeliveryFee,
		PackagingFee:  req.PackagingFee,
	}); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, orderID, "fees_set", func(_ unitofwork.Repositories, order *ordering.Order) error {
		return order.SetFees(req.ServiceCharge, req.DeliveryFee, req.PackagingFee)
	})
}

// RedeemLoyaltyPoints spends the customer's points as an order discount and
// writes the matching resgate ledger row.
func (s *OrderService) RedeemLoyaltyPoints(ctx context.Context, tenantID, orderID uuid.UUID, req RedeemPointsRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "loyalty_redeemed", func(repos unitofwork.Repositories, order *ordering.Order) error {
		if order.CustomerID == nil {
			return shared.NewDomainError("CUSTOMER_REQUIRED", "Loyalty redemption requires a customer on the order")
		}
		program, err := repos.LoyaltyPrograms().FindActive(ctx, tenantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("LOYALTY_DISABLED", "Tenant has no active loyalty program")
			}
			return err
		}
		if req.Points < program.MinRedeemPoints {
			return shared.NewDomainError("INVALID_REDEMPTION",
				fmt.Sprintf("At least %d points must be redeemed", program.MinRedeemPoints))
		}
		value := program.ValueOf(req.Points)
		if value.GreaterThan(order.RemainingBalance()) {
			return shared.NewDomainError("INVALID_REDEMPTION", "Redeemed value exceeds the amount still owed")
		}

		customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, *order.CustomerID)
		if err != nil {
			return err
		}
		ledgerRow, err := customer.Redeem(req.Points, order.ID)
		if err != nil {
			return err
		}
		if err := order.ApplyLoyaltyRedemption(req.Points, value); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		return repos.LoyaltyTransactions().Create(ctx, ledgerRow)
	})
}

// UpdateStatus advances the kitchen status. The move to served deducts
// recipe ingredients from branch stock in the same transaction, once.
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := ordering.OrderStatus(req.Status)
	return s.mutate(ctx, tenantID, orderID, "status_updated", func(repos unitofwork.Repositories, order *ordering.Order) error {
		becameServed, err := order.UpdateStatus(target)
		if err != nil {
			return err
		}
		if !becameServed || order.StockDeducted {
			return nil
		}
		lines := make([]inventory.DeductionLine, len(order.Items))
		for i := range order.Items {
			lines[i] = inventory.DeductionLine{MenuItemID: order.Items[i].MenuItemID, Quantity: order.Items[i].Quantity}
		}
		actor := req.ActorID
		movements, err := inventoryapp.DeductForOrder(ctx, repos, tenantID, order.BranchID, order.ID, lines, &actor, s.policy.AllowNegativeOnSale)
		if err != nil {
			return err
		}
		order.MarkStockDeducted()
		s.logger.Debug("Stock deducted for served order",
			zap.String("order_id", order.ID.String()),
			zap.Int("movements", len(movements)),
		)
		return nil
	})
}

// Recalculate reruns the total calculator over the stored order
func (s *OrderService) Recalculate(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "recalculated", func(_ unitofwork.Repositories, order *ordering.Order) error {
		if order.Status.IsFrozen() {
			return ordering.ErrOrderFrozen
		}
		order.Recalculate()
		return nil
	})
}

// mutate locks the order, applies fn, keeps the customer's credit in step
// with the new total and refreshes the session and guest caches that depend
// on it before committing.
func (s *OrderService) mutate(ctx context.Context, tenantID, orderID uuid.UUID, action string,
	fn func(repos unitofwork.Repositories, order *ordering.Order) error) (*OrderResponse, error) {
	var (
		order  *ordering.Order
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		before := diningapp.GuestIDsOf(order)
		hadItems := len(order.Items) > 0

		if err := fn(repos, order); err != nil {
			return err
		}
		// an edit can settle a partly paid order or raise a paid one
		if _, err := creditCustomer(ctx, repos, tenantID, order); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if err := s.refreshDining(ctx, repos, tenantID, order, before); err != nil {
			return err
		}
		if order.TableSessionID != nil && !hadItems && len(order.Items) > 0 {
			if err := diningapp.AdvanceTableForOrder(ctx, repos, tenantID, *order.TableSessionID); err != nil &&
				!errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("Order updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("action", action),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.String("paid", order.PaidAmount.StringFixed(2)),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// refreshDining recomputes the session totals and the subtotals of every
// guest the order touched before or after the change.
func (s *OrderService) refreshDining(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, order *ordering.Order, before []uuid.UUID) error {
	if order.TableSessionID == nil {
		return nil
	}
	if _, err := diningapp.RefreshSessionTotals(ctx, repos, tenantID, *order.TableSessionID); err != nil {
		return err
	}
	guests := append(before, diningapp.GuestIDsOf(order)...)
	return diningapp.RefreshGuestSubtotals(ctx, repos, tenantID, guests...)
}

// resolveItem snapshots the catalog price and options of a requested item
func (s *OrderService) resolveItem(ctx context.Context, tenantID uuid.UUID, req AddItemRequest) (ordering.NewItemInput, error) {
	if s.catalog == nil {
		return ordering.NewItemInput{}, shared.NewDomainError("CATALOG_UNAVAILABLE", "Menu catalog is not configured")
	}
	menuItem, err := s.catalog.GetMenuItemByID(ctx, tenantID, req.MenuItemID)
	if err != nil {
		return ordering.NewItemInput{}, err
	}
	if !menuItem.IsAvailable {
		return ordering.NewItemInput{}, shared.NewDomainError("MENU_ITEM_UNAVAILABLE",
			fmt.Sprintf("%s is not available", menuItem.Name))
	}

	in := ordering.NewItemInput{
		MenuItemID: menuItem.ID,
		Name:       menuItem.Name,
		UnitPrice:  menuItem.Price,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
		GuestID:    req.GuestID,
		Options:    make([]ordering.NewOptionInput, 0, len(req.Options)),
	}
	for _, sel := range req.Options {
		opt := menuItem.FindOption(sel.OptionID)
		if opt == nil {
			return ordering.NewItemInput{}, shared.NewDomainError("INVALID_OPTION",
				fmt.Sprintf("Option %s is not offered on %s", sel.OptionID, menuItem.Name))
		}
		optionID := opt.ID
		in.Options = append(in.Options, ordering.NewOptionInput{
			OptionID:        &optionID,
			Name:            opt.Name,
			PriceAdjustment: opt.PriceAdjustment,
			Quantity:        sel.Quantity,
		})
	}
	return in, nil
}

// checkGuest requires an item's guest to be seated in the order's session
func checkGuest(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, order *ordering.Order, guestID *uuid.UUID) error {
	if guestID == nil {
		return nil
	}
	if order.TableSessionID == nil {
		return shared.NewDomainError("INVALID_GUEST", "Only table orders can assign items to guests")
	}
	guest, err := repos.Guests().FindByID(ctx, tenantID, *guestID)
	if err != nil {
		return err
	}
	if guest.SessionID != *order.TableSessionID || !guest.IsSeated() {
		return shared.NewDomainError("INVALID_GUEST", "Guest is not seated in this order's session")
	}
	return nil
}

// loadProgram returns the tenant's active program or nil when there is none
func loadProgram(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID) (*loyalty.Program, error) {
	program, err := repos.LoyaltyPrograms().FindActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return program, nil
}
