package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockOrderService mocks the order endpoints the tests call. The embedded
// interface is nil, so any other method panics.
type MockOrderService struct {
	OrderService
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, tenantID uuid.UUID, req orderingapp.CreateOrderRequest) (*orderingapp.OrderResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderingapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*orderingapp.OrderResponse, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderingapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.UpdateStatusRequest) (*orderingapp.OrderResponse, error) {
	args := m.Called(ctx, tenantID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderingapp.OrderResponse), args.Error(1)
}

// MockPaymentService implements PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.RecordPaymentRequest) (*orderingapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderingapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID, req orderingapp.CancelOrderRequest) (*orderingapp.CancellationResponse, error) {
	args := m.Called(ctx, tenantID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderingapp.CancellationResponse), args.Error(1)
}

func setupOrderHandler(s testScope) (*MockOrderService, *MockPaymentService, http.Handler) {
	orders := new(MockOrderService)
	payments := new(MockPaymentService)
	h := NewOrderHandler(orders, payments, zap.NewNop())

	r := s.engine()
	r.POST("/orders", h.Create)
	r.GET("/orders/:id", h.Get)
	r.PUT("/orders/:id/status", h.UpdateStatus)
	r.POST("/orders/:id/payments", h.RecordPayment)
	r.POST("/orders/:id/cancel", h.Cancel)
	return orders, payments, r
}

func TestOrderHandler_Create(t *testing.T) {
	s := newTestScope()
	orders, _, r := setupOrderHandler(s)
	branchID, menuItemID := uuid.New(), uuid.New()

	orders.On("Create", mock.Anything, s.tenantID, mock.MatchedBy(func(req orderingapp.CreateOrderRequest) bool {
		return req.BranchID == branchID &&
			req.CreatedBy == s.userID &&
			len(req.Items) == 1 &&
			req.Items[0].ActorID == s.userID
	})).Return(&orderingapp.OrderResponse{ID: uuid.New(), OrderNumber: "000001", Status: "pending"}, nil)

	w := doJSON(r, http.MethodPost, "/orders", map[string]any{
		"branch_id":  branchID,
		"order_type": "takeaway",
		"items":      []map[string]any{{"menu_item_id": menuItemID, "quantity": 2}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp orderingapp.OrderResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "000001", resp.OrderNumber)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	s := newTestScope()
	orders, _, r := setupOrderHandler(s)

	w := doJSON(r, http.MethodPost, "/orders", map[string]any{
		"order_type": "drive_thru",
		"items":      []map[string]any{{"menu_item_id": uuid.New(), "quantity": 0}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errInfo.Code)
	assert.Equal(t, "test-request", errInfo.RequestID)

	fields := make([]string, 0, len(errInfo.Details))
	for _, d := range errInfo.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "branch_id")
	assert.Contains(t, fields, "order_type")
	assert.Contains(t, fields, "items[0].quantity")
	orders.AssertNotCalled(t, "Create")
}

func TestOrderHandler_Get(t *testing.T) {
	s := newTestScope()
	orders, _, r := setupOrderHandler(s)
	orderID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		orders.On("Get", mock.Anything, s.tenantID, orderID).Return(nil, shared.ErrNotFound).Once()

		w := doJSON(r, http.MethodGet, "/orders/"+orderID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/orders/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		orders.On("Get", mock.Anything, s.tenantID, orderID).Return(nil, errors.New("pq: connection reset")).Once()

		w := doJSON(r, http.MethodGet, "/orders/"+orderID.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		errInfo := decodeError(t, w)
		assert.Equal(t, "INTERNAL_ERROR", errInfo.Code)
		assert.NotContains(t, errInfo.Message, "pq")
	})
}

func TestOrderHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	s := newTestScope()
	orders, _, r := setupOrderHandler(s)
	orderID := uuid.New()

	orders.On("UpdateStatus", mock.Anything, s.tenantID, orderID, orderingapp.UpdateStatusRequest{
		Status:  "served",
		ActorID: s.userID,
	}).Return(nil, ordering.ErrInvalidTransition)

	w := doJSON(r, http.MethodPut, "/orders/"+orderID.String()+"/status", map[string]string{"status": "served"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", decodeError(t, w).Code)
}

func TestOrderHandler_RecordPayment(t *testing.T) {
	s := newTestScope()
	_, payments, r := setupOrderHandler(s)
	orderID := uuid.New()

	t.Run("passes idempotency key and actor", func(t *testing.T) {
		payments.On("RecordPayment", mock.Anything, s.tenantID, orderID, mock.MatchedBy(func(req orderingapp.RecordPaymentRequest) bool {
			return req.IdempotencyKey == "pay-1" &&
				req.RecordedBy == s.userID &&
				req.Method == "cash" &&
				req.Amount.Equal(decimal.NewFromInt(6))
		})).Return(&orderingapp.PaymentResponse{
			Amount:        decimal.NewFromInt(6),
			PaymentStatus: "partial",
		}, nil).Once()

		w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/payments",
			`{"amount":"6.00","method":"cash","received_amount":"10.00"}`,
			"Idempotency-Key", "pay-1")

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp orderingapp.PaymentResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "partial", resp.PaymentStatus)
	})

	t.Run("duplicate key conflicts", func(t *testing.T) {
		payments.On("RecordPayment", mock.Anything, s.tenantID, orderID, mock.Anything).
			Return(nil, shared.ErrDuplicateRequest).Once()

		w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/payments",
			`{"amount":"6.00","method":"cash"}`, "Idempotency-Key", "pay-1")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_REQUEST", decodeError(t, w).Code)
	})

	t.Run("overpayment is a business rule", func(t *testing.T) {
		payments.On("RecordPayment", mock.Anything, s.tenantID, orderID, mock.Anything).
			Return(nil, ordering.ErrPaymentExceedsBalance).Once()

		w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/payments",
			`{"amount":"60.00","method":"pix"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", decodeError(t, w).Code)
	})

	t.Run("malformed amount", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/payments",
			`{"amount":"six","method":"cash"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
	})

	payments.AssertExpectations(t)
}

func TestOrderHandler_Cancel(t *testing.T) {
	s := newTestScope()
	_, payments, r := setupOrderHandler(s)
	orderID := uuid.New()

	payments.On("CancelOrder", mock.Anything, s.tenantID, orderID, orderingapp.CancelOrderRequest{
		Reason:      "customer left",
		CancelledBy: s.userID,
	}).Return(&orderingapp.CancellationResponse{
		RefundAmount:          decimal.RequireFromString("10.00"),
		StockMovementsWritten: 2,
	}, nil)

	w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/cancel", map[string]string{"reason": "customer left"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp orderingapp.CancellationResponse
	decodeData(t, w, &resp)
	assert.True(t, resp.RefundAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 2, resp.StockMovementsWritten)
}

func TestOrderHandler_Cancel_Twice(t *testing.T) {
	s := newTestScope()
	_, payments, r := setupOrderHandler(s)
	orderID := uuid.New()

	payments.On("CancelOrder", mock.Anything, s.tenantID, orderID, mock.Anything).
		Return(nil, ordering.ErrAlreadyCancelled)

	w := doJSON(r, http.MethodPost, "/orders/"+orderID.String()+"/cancel", map[string]string{"reason": "again"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CANCELLED", decodeError(t, w).Code)
}
