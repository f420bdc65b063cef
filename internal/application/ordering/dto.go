package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// OptionSelection picks a modifier of a menu item
type OptionSelection struct {
	OptionID uuid.UUID `json:"option_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"gte=0,lte=99"`
}

// AddItemRequest adds a menu item to an order
type AddItemRequest struct {
	MenuItemID uuid.UUID         `json:"menu_item_id" binding:"required"`
	Quantity   int               `json:"quantity" binding:"required,gt=0,lte=999"`
	Notes      string            `json:"notes" binding:"max=500"`
	GuestID    *uuid.UUID        `json:"guest_id"`
	Options    []OptionSelection `json:"options" binding:"dive"`
	ActorID    uuid.UUID         `json:"-"`
}

// CreateOrderRequest opens an order, optionally at a table
type CreateOrderRequest struct {
	BranchID   uuid.UUID        `json:"branch_id" binding:"required"`
	OrderType  string           `json:"order_type" binding:"omitempty,oneof=dine_in takeaway delivery"`
	TableID    *uuid.UUID       `json:"table_id"`
	CustomerID *uuid.UUID       `json:"customer_id"`
	Notes      string           `json:"notes" binding:"max=500"`
	Items      []AddItemRequest `json:"items" binding:"dive"`
	CreatedBy  uuid.UUID        `json:"-"`
}

// UpdateItemQuantityRequest changes the quantity of an item
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,lte=999"`
}

// ApplyDiscountRequest sets the order-level discount
type ApplyDiscountRequest struct {
	Type  string          `json:"type" binding:"required,oneof=amount percent"`
	Value decimal.Decimal `json:"value"`
}

// ApplyCouponRequest applies a coupon code
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// SetFeesRequest replaces the order fees
type SetFeesRequest struct {
	ServiceCharge decimal.Decimal `json:"service_charge"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	PackagingFee  decimal.Decimal `json:"packaging_fee"`
}

// RedeemPointsRequest spends customer points on an order
type RedeemPointsRequest struct {
	Points  int       `json:"points" binding:"required,gt=0"`
	ActorID uuid.UUID `json:"-"`
}

// UpdateStatusRequest moves an order through the kitchen flow
type UpdateStatusRequest struct {
	Status  string    `json:"status" binding:"required,oneof=pending in_prep ready served"`
	ActorID uuid.UUID `json:"-"`
}

// CardDetailsRequest describes a card tender
type CardDetailsRequest struct {
	Brand             string `json:"brand" binding:"max=30"`
	Last4             string `json:"last4" binding:"omitempty,len=4,numeric"`
	AuthorizationCode string `json:"authorization_code" binding:"max=50"`
	Installments      int    `json:"installments" binding:"gte=0,lte=24"`
}

// PixDetailsRequest describes an instant transfer
type PixDetailsRequest struct {
	EndToEndID string `json:"end_to_end_id" binding:"max=100"`
	PayerKey   string `json:"payer_key" binding:"max=100"`
}

// VoucherDetailsRequest describes a meal voucher
type VoucherDetailsRequest struct {
	Provider string `json:"provider" binding:"max=50"`
	Code     string `json:"code" binding:"max=100"`
}

// RecordPaymentRequest records one payment against an order
type RecordPaymentRequest struct {
	Amount         decimal.Decimal        `json:"amount"`
	Method         string                 `json:"method" binding:"required,oneof=cash credit_card debit_card pix voucher"`
	ReceivedAmount *decimal.Decimal       `json:"received_amount"`
	Card           *CardDetailsRequest    `json:"card"`
	Pix            *PixDetailsRequest     `json:"pix"`
	Voucher        *VoucherDetailsRequest `json:"voucher"`
	IdempotencyKey string                 `json:"-"`
	RecordedBy     uuid.UUID              `json:"-"`
}

// Details converts the request into the domain's tagged variant
func (r RecordPaymentRequest) Details() ordering.PaymentDetails {
	d := ordering.PaymentDetails{Method: ordering.PaymentMethod(r.Method)}
	if r.ReceivedAmount != nil {
		d.Cash = &ordering.CashDetails{Received: *r.ReceivedAmount}
	}
	if r.Card != nil {
		d.Card = &ordering.CardDetails{
			Brand:             r.Card.Brand,
			Last4:             r.Card.Last4,
			AuthorizationCode: r.Card.AuthorizationCode,
			Installments:      r.Card.Installments,
		}
	}
	if r.Pix != nil {
		d.Pix = &ordering.PixDetails{EndToEndID: r.Pix.EndToEndID, PayerKey: r.Pix.PayerKey}
	}
	if r.Voucher != nil {
		d.Voucher = &ordering.VoucherDetails{Provider: r.Voucher.Provider, Code: r.Voucher.Code}
	}
	return d
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason      string    `json:"reason" binding:"required,max=500"`
	CancelledBy uuid.UUID `json:"-"`
}

// OrderItemOptionResponse is a selected modifier
type OrderItemOptionResponse struct {
	OptionID        *uuid.UUID      `json:"option_id,omitempty"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Quantity        int             `json:"quantity"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID         uuid.UUID                 `json:"id"`
	MenuItemID uuid.UUID                 `json:"menu_item_id"`
	Name       string                    `json:"name"`
	UnitPrice  decimal.Decimal           `json:"unit_price"`
	Quantity   int                       `json:"quantity"`
	LineTotal  decimal.Decimal           `json:"line_total"`
	Notes      string                    `json:"notes,omitempty"`
	GuestID    *uuid.UUID                `json:"guest_id,omitempty"`
	Options    []OrderItemOptionResponse `json:"options"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	OrderNumber           string              `json:"order_number"`
	BranchID              uuid.UUID           `json:"branch_id"`
	OrderType             string              `json:"order_type"`
	TableID               *uuid.UUID          `json:"table_id,omitempty"`
	TableSessionID        *uuid.UUID          `json:"table_session_id,omitempty"`
	CustomerID            *uuid.UUID          `json:"customer_id,omitempty"`
	CouponID              *uuid.UUID          `json:"coupon_id,omitempty"`
	Status                string              `json:"status"`
	PaymentStatus         string              `json:"payment_status"`
	PaymentMethod         string              `json:"payment_method,omitempty"`
	Items                 []OrderItemResponse `json:"items"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	DiscountType          string              `json:"discount_type"`
	DiscountValue         decimal.Decimal     `json:"discount_value"`
	DiscountAmount        decimal.Decimal     `json:"discount_amount"`
	CouponDiscount        decimal.Decimal     `json:"coupon_discount"`
	LoyaltyDiscountAmount decimal.Decimal     `json:"loyalty_discount_amount"`
	ServiceCharge         decimal.Decimal     `json:"service_charge"`
	DeliveryFee           decimal.Decimal     `json:"delivery_fee"`
	PackagingFee          decimal.Decimal     `json:"packaging_fee"`
	TotalAmount           decimal.Decimal     `json:"total_amount"`
	PaidAmount            decimal.Decimal     `json:"paid_amount"`
	RemainingBalance      decimal.Decimal     `json:"remaining_balance"`
	ChangeAmount          decimal.Decimal     `json:"change_amount"`
	RefundAmount          decimal.Decimal     `json:"refund_amount"`
	LoyaltyPointsEarned   int                 `json:"loyalty_points_earned"`
	LoyaltyPointsRedeemed int                 `json:"loyalty_points_redeemed"`
	Notes                 string              `json:"notes,omitempty"`
	ServedAt              *time.Time          `json:"served_at,omitempty"`
	PaidAt                *time.Time          `json:"paid_at,omitempty"`
	CancelledAt           *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason          string              `json:"cancel_reason,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// PaymentResponse is the outcome of recording a payment
type PaymentResponse struct {
	Order         OrderResponse   `json:"order"`
	Amount        decimal.Decimal `json:"amount"`
	Change        decimal.Decimal `json:"change"`
	PaymentStatus string          `json:"payment_status"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	ShiftID       *uuid.UUID      `json:"shift_id,omitempty"`
	PointsEarned  int             `json:"points_earned,omitempty"`
}

// CancellationResponse is the outcome of cancelling an order
type CancellationResponse struct {
	Order                 OrderResponse   `json:"order"`
	RefundAmount          decimal.Decimal `json:"refund_amount"`
	RefundTransactionIDs  []uuid.UUID     `json:"refund_transaction_ids,omitempty"`
	StockMovementsWritten int             `json:"stock_movements_written"`
	PointsAdjusted        int             `json:"points_adjusted"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		opts := make([]OrderItemOptionResponse, len(it.Options))
		for k, op := range it.Options {
			opts[k] = OrderItemOptionResponse{
				OptionID:        op.OptionID,
				Name:            op.Name,
				PriceAdjustment: op.PriceAdjustment,
				Quantity:        op.Quantity,
			}
		}
		items[i] = OrderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			LineTotal:  it.LineTotal,
			Notes:      it.Notes,
			GuestID:    it.GuestID,
			Options:    opts,
		}
	}
	return OrderResponse{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		BranchID:              o.BranchID,
		OrderType:             string(o.OrderType),
		TableID:               o.TableID,
		TableSessionID:        o.TableSessionID,
		CustomerID:            o.CustomerID,
		CouponID:              o.CouponID,
		Status:                string(o.Status),
		PaymentStatus:         string(o.PaymentStatus),
		PaymentMethod:         string(o.PaymentMethod),
		Items:                 items,
		Subtotal:              o.Subtotal,
		DiscountType:          string(o.DiscountType),
		DiscountValue:         o.DiscountValue,
		DiscountAmount:        o.DiscountAmount,
		CouponDiscount:        o.CouponDiscount,
		LoyaltyDiscountAmount: o.LoyaltyDiscountAmount,
		ServiceCharge:         o.ServiceCharge,
		DeliveryFee:           o.DeliveryFee,
		PackagingFee:          o.PackagingFee,
		TotalAmount:           o.TotalAmount,
		PaidAmount:            o.PaidAmount,
		RemainingBalance:      o.RemainingBalance(),
		ChangeAmount:          o.ChangeAmount,
		RefundAmount:          o.RefundAmount,
		LoyaltyPointsEarned:   o.LoyaltyPointsEarned,
		LoyaltyPointsRedeemed: o.LoyaltyPointsRedeemed,
		Notes:                 o.Notes,
		ServedAt:              o.ServedAt,
		PaidAt:                o.PaidAt,
		CancelledAt:           o.CancelledAt,
		CancelReason:          o.CancelReason,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
