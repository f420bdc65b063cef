package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// OrderService is the order editing surface used by OrderHandler
type OrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req orderingapp.CreateOrderRequest) (*orderingapp.OrderResponse, error)
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*orderingapp.OrderResponse, error)
	AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.AddItemRequest) (*orderingapp.OrderResponse, error)
	RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*orderingapp.OrderResponse, error)
	UpdateItemQuantity(ctx context.Context, tenantID, orderID, itemID uuid.UUID, req orderingapp.UpdateItemQuantityRequest) (*orderingapp.OrderResponse, error)
	ApplyDiscount(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.ApplyDiscountRequest) (*orderingapp.OrderResponse, error)
	ApplyCoupon(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.ApplyCouponRequest) (*orderingapp.OrderResponse, error)
	RemoveCoupon(ctx context.Context, tenantID, orderID uuid.UUID) (*orderingapp.OrderResponse, error)
	SetFees(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.SetFeesRequest) (*orderingapp.OrderResponse, error)
	RedeemLoyaltyPoints(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.RedeemPointsRequest) (*orderingapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.UpdateStatusRequest) (*orderingapp.OrderResponse, error)
	Recalculate(ctx context.Context, tenantID, orderID uuid.UUID) (*orderingapp.OrderResponse, error)
}

// PaymentService settles and cancels orders
type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.RecordPaymentRequest) (*orderingapp.PaymentResponse, error)
	CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.CancelOrderRequest) (*orderingapp.CancellationResponse, error)
}

// OrderHandler serves /orders
type OrderHandler struct {
	BaseHandler
	orders   OrderService
	payments PaymentService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService, payments PaymentService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: newBaseHandler(log),
		orders:      orders,
		payments:    payments,
	}
}

// orderCall is the shape shared by the single-order endpoints once tenant,
// actor and order ID are resolved.
type orderCall func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error)

func (h *OrderHandler) withOrder(c *gin.Context, created bool, call orderCall) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := call(c.Request.Context(), tenantID, actorID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @Summary      Create an order
// @Description  Open a dine-in, takeaway or delivery order. A dine-in order at a table joins the table's active session or starts one.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderingapp.CreateOrderRequest true "Order creation request"
// @Success      201 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	var req orderingapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actorID
	for i := range req.Items {
		req.Items[i].ActorID = actorID
	}

	resp, err := h.orders.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get order by ID
// @Description  Retrieve an order with its items, totals and payment state
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.Get(ctx, tenantID, orderID)
	})
}

// AddItem godoc
// @Summary      Add an item to an order
// @Description  Snapshot the menu item price and options onto a new order line and recalculate the totals
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.AddItemRequest true "Item to add"
// @Success      201 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	var req orderingapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, true, func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error) {
		req.ActorID = actorID
		return h.orders.AddItem(ctx, tenantID, orderID, req)
	})
}

// UpdateItemQuantity godoc
// @Summary      Change an item quantity
// @Description  Set the quantity of one order line. Rejected when the new total would fall below the amount already paid.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        itemId path string true "Order item ID" format(uuid)
// @Param        request body orderingapp.UpdateItemQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{itemId} [patch]
func (h *OrderHandler) UpdateItemQuantity(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}
	var req orderingapp.UpdateItemQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.UpdateItemQuantity(ctx, tenantID, orderID, itemID, req)
	})
}

// RemoveItem godoc
// @Summary      Remove an item from an order
// @Description  Drop one order line and recalculate the totals
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        itemId path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{itemId} [delete]
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.RemoveItem(ctx, tenantID, orderID, itemID)
	})
}

// ApplyDiscount godoc
// @Summary      Apply an order discount
// @Description  Set a fixed or percentage discount on the order subtotal
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.ApplyDiscountRequest true "Discount"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/discount [put]
func (h *OrderHandler) ApplyDiscount(c *gin.Context) {
	var req orderingapp.ApplyDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.ApplyDiscount(ctx, tenantID, orderID, req)
	})
}

// ApplyCoupon godoc
// @Summary      Apply a coupon
// @Description  Validate a coupon code against the order and store its discount
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.ApplyCouponRequest true "Coupon code"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/coupon [put]
func (h *OrderHandler) ApplyCoupon(c *gin.Context) {
	var req orderingapp.ApplyCouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.ApplyCoupon(ctx, tenantID, orderID, req)
	})
}

// RemoveCoupon godoc
// @Summary      Remove the coupon
// @Description  Clear the applied coupon and its discount
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/coupon [delete]
func (h *OrderHandler) RemoveCoupon(c *gin.Context) {
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.RemoveCoupon(ctx, tenantID, orderID)
	})
}

// SetFees godoc
// @Summary      Set order fees
// @Description  Replace the service charge, delivery fee and packaging fee
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.SetFeesRequest true "Fees"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/fees [put]
func (h *OrderHandler) SetFees(c *gin.Context) {
	var req orderingapp.SetFeesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.SetFees(ctx, tenantID, orderID, req)
	})
}

// RedeemPoints godoc
// @Summary      Redeem loyalty points
// @Description  Spend the customer's points as a discount on the order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.RedeemPointsRequest true "Points to redeem"
// @Success      201 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/loyalty-redemptions [post]
func (h *OrderHandler) RedeemPoints(c *gin.Context) {
	var req orderingapp.RedeemPointsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, true, func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error) {
		req.ActorID = actorID
		return h.orders.RedeemLoyaltyPoints(ctx, tenantID, orderID, req)
	})
}

// UpdateStatus godoc
// @Summary      Update order status
// @Description  Move the order through the kitchen flow. Reaching served deducts recipe ingredients from branch stock once.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.UpdateStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error) {
		req.ActorID = actorID
		return h.orders.UpdateStatus(ctx, tenantID, orderID, req)
	})
}

// Recalculate godoc
// @Summary      Recalculate order totals
// @Description  Rerun the total calculator over the stored order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/recalculate [post]
func (h *OrderHandler) Recalculate(c *gin.Context) {
	h.withOrder(c, false, func(ctx context.Context, tenantID, _, orderID uuid.UUID) (any, error) {
		return h.orders.Recalculate(ctx, tenantID, orderID)
	})
}

// RecordPayment godoc
// @Summary      Record a payment
// @Description  Apply a payment and book the revenue row against the branch's open shift. A repeated Idempotency-Key is answered with 409 DUPLICATE_REQUEST.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Key that makes retries of the same payment safe"
// @Param        request body orderingapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=orderingapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	var req orderingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = middleware.GetIdempotencyKey(c)
	h.withOrder(c, true, func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error) {
		req.RecordedBy = actorID
		return h.payments.RecordPayment(ctx, tenantID, orderID, req)
	})
}

// Cancel godoc
// @Summary      Cancel an order
// @Description  Cancel the order and reverse what it moved: refunds per tender, restored stock and the customer's spend and points
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.CancelOrderRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=orderingapp.CancellationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req orderingapp.CancelOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withOrder(c, false, func(ctx context.Context, tenantID, actorID, orderID uuid.UUID) (any, error) {
		req.CancelledBy = actorID
		return h.payments.CancelOrder(ctx, tenantID, orderID, req)
	})
}
