package ordering

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderItemOption is a price snapshot of a selected modifier
type OrderItemOption struct {
	ID              uuid.UUID
	OrderItemID     uuid.UUID
	OptionID        *uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
	Quantity        int
}

// OrderItem is a menu line captured at add time. UnitPrice and option
// adjustments never follow later catalog changes.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	LineTotal  decimal.Decimal
	Notes      string
	GuestID    *uuid.UUID
	Options    []OrderItemOption
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewItemInput describes an item to add
type NewItemInput struct {
	MenuItemID uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	Notes      string
	GuestID    *uuid.UUID
	Options    []NewOptionInput
}

// NewOptionInput describes a modifier on a new item
type NewOptionInput struct {
	OptionID        *uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
	Quantity        int
}

// NewOrderItem validates and snapshots an item for the order
func NewOrderItem(orderID uuid.UUID, in NewItemInput) (*OrderItem, error) {
	if in.MenuItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MENU_ITEM", "Menu item ID cannot be empty")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, shared.NewDomainError("INVALID_MENU_ITEM", "Menu item name cannot be empty")
	}
	if in.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	item := &OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		MenuItemID: in.MenuItemID,
		Name:       in.Name,
		UnitPrice:  valueobject.RoundMoney(in.UnitPrice),
		Quantity:   in.Quantity,
		Notes:      in.Notes,
		GuestID:    in.GuestID,
		Options:    make([]OrderItemOption, 0, len(in.Options)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range in.Options {
		qty := opt.Quantity
		if qty <= 0 {
			qty = 1
		}
		item.Options = append(item.Options, OrderItemOption{
			ID:              uuid.New(),
			OrderItemID:     item.ID,
			OptionID:        opt.OptionID,
			Name:            opt.Name,
			PriceAdjustment: valueobject.RoundMoney(opt.PriceAdjustment),
			Quantity:        qty,
		})
	}
	item.refreshLineTotal()
	return item, nil
}

// CalculatorLine converts the item for CalculateTotals
func (i *OrderItem) CalculatorLine() LineInput {
	opts := make([]OptionInput, len(i.Options))
	for k, o := range i.Options {
		opts[k] = OptionInput{PriceAdjustment: o.PriceAdjustment, Quantity: o.Quantity}
	}
	return LineInput{UnitPrice: i.UnitPrice, Quantity: i.Quantity, Options: opts}
}

func (i *OrderItem) refreshLineTotal() {
	i.LineTotal = valueobject.RoundMoney(LineTotal(i.CalculatorLine()))
}

// BelongsToGuest reports whether the item is assigned to the guest
func (i *OrderItem) BelongsToGuest(guestID uuid.UUID) bool {
	return i.GuestID != nil && *i.GuestID == guestID
}
