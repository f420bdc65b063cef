package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuOption is a modifier offered on a menu item
type MenuOption struct {
	ID              uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
}

// MenuItem is the catalog view the engine snapshots prices from
type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	IsAvailable bool
	Options     []MenuOption
}

// FindOption returns the option with the given ID or nil
func (m *MenuItem) FindOption(id uuid.UUID) *MenuOption {
	for i := range m.Options {
		if m.Options[i].ID == id {
			return &m.Options[i]
		}
	}
	return nil
}

// CatalogReader reads menu items owned by the catalog service
type CatalogReader interface {
	// GetMenuItemByID returns shared.ErrNotFound for unknown items
	GetMenuItemByID(ctx context.Context, tenantID, menuItemID uuid.UUID) (*MenuItem, error)
}

// CouponQuery is what the coupon service needs to price a coupon
type CouponQuery struct {
	TenantID   uuid.UUID
	Code       string
	OrderValue decimal.Decimal
	OrderType  string
	CustomerID *uuid.UUID
}

// CouponValidation is the coupon service's verdict
type CouponValidation struct {
	Valid          bool
	CouponID       uuid.UUID
	DiscountAmount decimal.Decimal
	Reason         string
}

// CouponValidator validates coupon codes
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, q CouponQuery) (CouponValidation, error)
}
