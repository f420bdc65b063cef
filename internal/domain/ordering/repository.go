package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository persists orders together with their items and options
type OrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate loads the order holding a row lock until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	// FindByItemIDForUpdate locks and loads the order owning the item
	FindByItemIDForUpdate(ctx context.Context, tenantID, itemID uuid.UUID) (*Order, error)
	// FindBySession and FindByTable include cancelled orders
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]Order, error)
	FindByTable(ctx context.Context, tenantID, tableID uuid.UUID, sessionID *uuid.UUID) ([]Order, error)
	// FindItemsByGuest skips items of cancelled orders
	FindItemsByGuest(ctx context.Context, tenantID, guestID uuid.UUID) ([]OrderItem, error)
	Save(ctx context.Context, order *Order) error
}
