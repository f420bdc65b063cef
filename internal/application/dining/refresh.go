package dining

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderSums totals non-cancelled orders
type OrderSums struct {
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Subtotal decimal.Decimal
}

// SumOrders folds the totals of every non-cancelled order
func SumOrders(orders []ordering.Order) OrderSums {
	sums := OrderSums{Total: decimal.Zero, Paid: decimal.Zero, Subtotal: decimal.Zero}
	for i := range orders {
		if orders[i].IsCancelled() {
			continue
		}
		sums.Total = sums.Total.Add(orders[i].TotalAmount)
		sums.Paid = sums.Paid.Add(orders[i].PaidAmount)
		sums.Subtotal = sums.Subtotal.Add(orders[i].Subtotal)
	}
	sums.Total = valueobject.RoundMoney(sums.Total)
	sums.Paid = valueobject.RoundMoney(sums.Paid)
	sums.Subtotal = valueobject.RoundMoney(sums.Subtotal)
	return sums
}

// RefreshSessionTotals recomputes the cached totals of a session and, while
// it is active, of its table. Callers holding an order lock take the session
// lock second and the table lock last.
func RefreshSessionTotals(ctx context.Context, repos unitofwork.Repositories, tenantID, sessionID uuid.UUID) (*dining.TableSession, error) {
	session, err := repos.Sessions().FindByIDForUpdate(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	orders, err := repos.Orders().FindBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	sums := SumOrders(orders)
	session.RefreshTotals(sums.Total, sums.Paid)
	if err := repos.Sessions().Save(ctx, session); err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return session, nil
	}

	table, err := repos.Tables().FindByIDForUpdate(ctx, tenantID, session.TableID)
	if err != nil {
		return nil, err
	}
	if table.CurrentSessionID != nil && *table.CurrentSessionID == session.ID {
		table.SetTotal(session.TotalAmount)
		if err := repos.Tables().Save(ctx, table); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// RefreshGuestSubtotal recomputes a guest's subtotal from the line totals
// of the items assigned to them on non-cancelled orders.
func RefreshGuestSubtotal(ctx context.Context, repos unitofwork.Repositories, tenantID, guestID uuid.UUID) (*dining.TableGuest, error) {
	guest, err := repos.Guests().FindByID(ctx, tenantID, guestID)
	if err != nil {
		return nil, err
	}
	items, err := repos.Orders().FindItemsByGuest(ctx, tenantID, guestID)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal)
	}
	guest.SetSubtotal(valueobject.RoundMoney(subtotal))
	if err := repos.Guests().Save(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// RefreshGuestSubtotals refreshes each distinct guest once
func RefreshGuestSubtotals(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, guestIDs ...uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(guestIDs))
	for _, id := range guestIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := RefreshGuestSubtotal(ctx, repos, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}

// GuestIDsOf lists the guests referenced by an order's items
func GuestIDsOf(order *ordering.Order) []uuid.UUID {
	var ids []uuid.UUID
	for i := range order.Items {
		if order.Items[i].GuestID != nil {
			ids = append(ids, *order.Items[i].GuestID)
		}
	}
	return ids
}
