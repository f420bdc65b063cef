package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItemModel is the read model of a sellable menu item. The engine only
// reads it to snapshot names and prices onto order items.
type MenuItemModel struct {
	BaseModel
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name        string                `gorm:"type:varchar(200);not null"`
	Price       decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	IsAvailable bool                  `gorm:"not null;default:true"`
	Options     []MenuItemOptionModel `gorm:"foreignKey:MenuItemID;references:ID"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// MenuItemOptionModel is a modifier offered on a menu item
type MenuItemOptionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	MenuItemID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(100);not null"`
	PriceAdjustment decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (MenuItemOptionModel) TableName() string {
	return "menu_item_options"
}

// CouponModel is the read model of a tenant coupon
type CouponModel struct {
	BaseModel
	TenantID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_tenant_code,priority:1"`
	Code          string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_coupon_tenant_code,priority:2"`
	DiscountType  string           `gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	MinOrderValue decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	MaxDiscount   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	// OrderTypes is a comma-separated allow list; empty allows every type
	OrderTypes string `gorm:"type:varchar(100)"`
	UsageLimit int    `gorm:"not null;default:0"`
	UsageCount int    `gorm:"not null;default:0"`
	ValidFrom  *time.Time
	ValidUntil *time.Time
	IsActive   bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CouponModel) TableName() string {
	return "coupons"
}
