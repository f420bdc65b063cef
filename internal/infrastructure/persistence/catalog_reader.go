package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCatalogReader reads menu items from the catalog tables
type GormCatalogReader struct {
	db *gorm.DB
}

// NewGormCatalogReader creates a new GormCatalogReader
func NewGormCatalogReader(db *gorm.DB) *GormCatalogReader {
	return &GormCatalogReader{db: db}
}

// GetMenuItemByID loads a menu item with its options
func (r *GormCatalogReader) GetMenuItemByID(ctx context.Context, tenantID, menuItemID uuid.UUID) (*orderingapp.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Preload("Options").
		Where("tenant_id = ? AND id = ?", tenantID, menuItemID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	item := &orderingapp.MenuItem{
		ID:          model.ID,
		Name:        model.Name,
		Price:       model.Price,
		IsAvailable: model.IsAvailable,
		Options:     make([]orderingapp.MenuOption, len(model.Options)),
	}
	for i, opt := range model.Options {
		item.Options[i] = orderingapp.MenuOption{
			ID:              opt.ID,
			Name:            opt.Name,
			PriceAdjustment: opt.PriceAdjustment,
		}
	}
	return item, nil
}

// GormCouponValidator prices coupons from the coupons table
type GormCouponValidator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCouponValidator creates a new GormCouponValidator
func NewGormCouponValidator(db *gorm.DB) *GormCouponValidator {
	return &GormCouponValidator{db: db, now: time.Now}
}

// ValidateCoupon checks a code against the order and returns the discount it grants.
// An unknown or unusable code is an invalid verdict, not an error.
func (v *GormCouponValidator) ValidateCoupon(ctx context.Context, q orderingapp.CouponQuery) (orderingapp.CouponValidation, error) {
	var coupon models.CouponModel
	err := v.db.WithContext(ctx).
		Where("tenant_id = ? AND UPPER(code) = ?", q.TenantID, strings.ToUpper(strings.TrimSpace(q.Code))).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderingapp.CouponValidation{Reason: "Coupon not found"}, nil
		}
		return orderingapp.CouponValidation{}, err
	}

	if reason := v.rejection(&coupon, q); reason != "" {
		return orderingapp.CouponValidation{CouponID: coupon.ID, Reason: reason}, nil
	}
	return orderingapp.CouponValidation{
		Valid:          true,
		CouponID:       coupon.ID,
		DiscountAmount: couponDiscount(&coupon, q.OrderValue),
	}, nil
}

func (v *GormCouponValidator) rejection(c *models.CouponModel, q orderingapp.CouponQuery) string {
	now := v.now()
	switch {
	case !c.IsActive:
		return "Coupon is inactive"
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return "Coupon is not valid yet"
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return "Coupon has expired"
	case c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit:
		return "Coupon usage limit reached"
	case q.OrderValue.LessThan(c.MinOrderValue):
		return "Order value is below the coupon minimum"
	case !allowsOrderType(c.OrderTypes, q.OrderType):
		return "Coupon does not apply to this order type"
	}
	return ""
}

func allowsOrderType(list, orderType string) bool {
	if strings.TrimSpace(list) == "" {
		return true
	}
	for _, t := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(t), orderType) {
			return true
		}
	}
	return false
}

// couponDiscount is capped by MaxDiscount and by the order value itself
func couponDiscount(c *models.CouponModel, orderValue decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	if c.DiscountType == "percent" {
		discount = valueobject.Percentage(orderValue, c.DiscountValue)
	} else {
		discount = c.DiscountValue
	}
	if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
		discount = *c.MaxDiscount
	}
	if discount.GreaterThan(orderValue) {
		discount = orderValue
	}
	return valueobject.RoundMoney(valueobject.NonNegative(discount))
}

var (
	_ orderingapp.CatalogReader   = (*GormCatalogReader)(nil)
	_ orderingapp.CouponValidator = (*GormCouponValidator)(nil)
)
