package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	TenantAggregateModel
	OrderNumber    string                 `gorm:"type:varchar(50);not null;index"`
	BranchID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	OrderType      ordering.OrderType     `gorm:"type:varchar(20);not null"`
	TableID        *uuid.UUID             `gorm:"type:uuid;index"`
	TableSessionID *uuid.UUID             `gorm:"type:uuid;index"`
	CustomerID     *uuid.UUID             `gorm:"type:uuid;index"`
	CouponID       *uuid.UUID             `gorm:"type:uuid"`
	Status         ordering.OrderStatus   `gorm:"type:varchar(20);not null;index"`
	PaymentStatus  ordering.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	PaymentMethod  string                 `gorm:"type:varchar(20)"`

	Subtotal              decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	DiscountType          ordering.DiscountType `gorm:"type:varchar(10);not null;default:'amount'"`
	DiscountValue         decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	DiscountAmount        decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	CouponDiscount        decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	LoyaltyDiscountAmount decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	ServiceCharge         decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	DeliveryFee           decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	PackagingFee          decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount           decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	PaidAmount            decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	ChangeAmount          decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	RefundAmount          decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	CustomerCredited      decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`

	LoyaltyPointsEarned   int  `gorm:"not null;default:0"`
	LoyaltyPointsRedeemed int  `gorm:"not null;default:0"`
	StockDeducted         bool `gorm:"not null;default:false"`
	VisitCounted          bool `gorm:"not null;default:false"`

	Notes        string `gorm:"type:text"`
	ServedAt     *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelReason string     `gorm:"type:varchar(500)"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ordering.Order {
	o := &ordering.Order{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(),
		OrderNumber:           m.OrderNumber,
		BranchID:              m.BranchID,
		OrderType:             m.OrderType,
		TableID:               m.TableID,
		TableSessionID:        m.TableSessionID,
		CustomerID:            m.CustomerID,
		CouponID:              m.CouponID,
		Items:                 make([]ordering.OrderItem, len(m.Items)),
		Status:                m.Status,
		PaymentStatus:         m.PaymentStatus,
		PaymentMethod:         ordering.PaymentMethod(m.PaymentMethod),
		Subtotal:              m.Subtotal,
		DiscountType:          m.DiscountType,
		DiscountValue:         m.DiscountValue,
		DiscountAmount:        m.DiscountAmount,
		CouponDiscount:        m.CouponDiscount,
		LoyaltyDiscountAmount: m.LoyaltyDiscountAmount,
		ServiceCharge:         m.ServiceCharge,
		DeliveryFee:           m.DeliveryFee,
		PackagingFee:          m.PackagingFee,
		TotalAmount:           m.TotalAmount,
		PaidAmount:            m.PaidAmount,
		ChangeAmount:          m.ChangeAmount,
		RefundAmount:          m.RefundAmount,
		CustomerCredited:      m.CustomerCredited,
		LoyaltyPointsEarned:   m.LoyaltyPointsEarned,
		LoyaltyPointsRedeemed: m.LoyaltyPointsRedeemed,
		StockDeducted:         m.StockDeducted,
		VisitCounted:          m.VisitCounted,
		Notes:                 m.Notes,
		ServedAt:              m.ServedAt,
		PaidAt:                m.PaidAt,
		CancelledAt:           m.CancelledAt,
		CancelledBy:           m.CancelledBy,
		CancelReason:          m.CancelReason,
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:           o.OrderNumber,
		BranchID:              o.BranchID,
		OrderType:             o.OrderType,
		TableID:               o.TableID,
		TableSessionID:        o.TableSessionID,
		CustomerID:            o.CustomerID,
		CouponID:              o.CouponID,
		Status:                o.Status,
		PaymentStatus:         o.PaymentStatus,
		PaymentMethod:         string(o.PaymentMethod),
		Subtotal:              o.Subtotal,
		DiscountType:          o.DiscountType,
		DiscountValue:         o.DiscountValue,
		DiscountAmount:        o.DiscountAmount,
		CouponDiscount:        o.CouponDiscount,
		LoyaltyDiscountAmount: o.LoyaltyDiscountAmount,
		ServiceCharge:         o.ServiceCharge,
		DeliveryFee:           o.DeliveryFee,
		PackagingFee:          o.PackagingFee,
		TotalAmount:           o.TotalAmount,
		PaidAmount:            o.PaidAmount,
		ChangeAmount:          o.ChangeAmount,
		RefundAmount:          o.RefundAmount,
		CustomerCredited:      o.CustomerCredited,
		LoyaltyPointsEarned:   o.LoyaltyPointsEarned,
		LoyaltyPointsRedeemed: o.LoyaltyPointsRedeemed,
		StockDeducted:         o.StockDeducted,
		VisitCounted:          o.VisitCounted,
		Notes:                 o.Notes,
		ServedAt:              o.ServedAt,
		PaidAt:                o.PaidAt,
		CancelledAt:           o.CancelledAt,
		CancelledBy:           o.CancelledBy,
		CancelReason:          o.CancelReason,
		Items:                 make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(&o.Items[i])
	}
	return m
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name       string          `gorm:"type:varchar(200);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity   int             `gorm:"not null"`
	LineTotal  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Notes      string          `gorm:"type:varchar(500)"`
	GuestID    *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`

	Options []OrderItemOptionModel `gorm:"foreignKey:OrderItemID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() ordering.OrderItem {
	item := ordering.OrderItem{
		ID:         m.ID,
		OrderID:    m.OrderID,
		MenuItemID: m.MenuItemID,
		Name:       m.Name,
		UnitPrice:  m.UnitPrice,
		Quantity:   m.Quantity,
		LineTotal:  m.LineTotal,
		Notes:      m.Notes,
		GuestID:    m.GuestID,
		Options:    make([]ordering.OrderItemOption, len(m.Options)),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for i, opt := range m.Options {
		item.Options[i] = ordering.OrderItemOption{
			ID:              opt.ID,
			OrderItemID:     opt.OrderItemID,
			OptionID:        opt.OptionID,
			Name:            opt.Name,
			PriceAdjustment: opt.PriceAdjustment,
			Quantity:        opt.Quantity,
		}
	}
	return item
}

// OrderItemModelFromDomain creates a persistence model from a domain OrderItem
func OrderItemModelFromDomain(it *ordering.OrderItem) OrderItemModel {
	m := OrderItemModel{
		ID:         it.ID,
		OrderID:    it.OrderID,
		MenuItemID: it.MenuItemID,
		Name:       it.Name,
		UnitPrice:  it.UnitPrice,
		Quantity:   it.Quantity,
		LineTotal:  it.LineTotal,
		Notes:      it.Notes,
		GuestID:    it.GuestID,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
		Options:    make([]OrderItemOptionModel, len(it.Options)),
	}
	for i, opt := range it.Options {
		m.Options[i] = OrderItemOptionModel{
			ID:              opt.ID,
			OrderItemID:     it.ID,
			OptionID:        opt.OptionID,
			Name:            opt.Name,
			PriceAdjustment: opt.PriceAdjustment,
			Quantity:        opt.Quantity,
		}
	}
	return m
}

// OrderItemOptionModel is the persistence model for a selected modifier
type OrderItemOptionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OptionID        *uuid.UUID      `gorm:"type:uuid"`
	Name            string          `gorm:"type:varchar(200);not null"`
	PriceAdjustment decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Quantity        int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (OrderItemOptionModel) TableName() string {
	return "order_item_options"
}
