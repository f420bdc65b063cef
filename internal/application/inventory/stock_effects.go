package inventory

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// DeductForOrder writes one out movement per consumed inventory item for a
// served order. Menu items without a recipe are skipped.
func DeductForOrder(ctx context.Context, repos unitofwork.Repositories, tenantID, branchID, orderID uuid.UUID,
	lines []inventory.DeductionLine, actor *uuid.UUID, allowNegative bool) ([]inventory.StockMovement, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	menuItemIDs := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		menuItemIDs = append(menuItemIDs, l.MenuItemID)
	}
	recipes, err := repos.Recipes().FindByMenuItems(ctx, tenantID, menuItemIDs)
	if err != nil {
		return nil, err
	}

	totals := mergeByItem(inventory.PlanDeduction(lines, recipes))
	movements := make([]inventory.StockMovement, 0, len(totals))
	for _, t := range totals {
		m, err := applyMovement(ctx, repos, tenantID, branchID, t.itemID, inventory.MovementRequest{
			Type:          inventory.MovementTypeOut,
			Quantity:      t.quantity,
			Reason:        "Sold",
			ReferenceType: inventory.ReferenceTypeOrder,
			ReferenceID:   &orderID,
			CreatedBy:     actor,
			AllowNegative: allowNegative,
		})
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, nil
}

// RestoreForOrder reverses every out movement the order wrote when served.
// Restoring from the ledger keeps the reversal exact even if a recipe changed since.
func RestoreForOrder(ctx context.Context, repos unitofwork.Repositories, tenantID, orderID uuid.UUID, actor *uuid.UUID) ([]inventory.StockMovement, error) {
	deducted, err := repos.StockMovements().FindByReference(ctx, tenantID, inventory.ReferenceTypeOrder, orderID)
	if err != nil {
		return nil, err
	}

	type key struct{ branch, item uuid.UUID }
	byKey := make(map[key]decimal.Decimal)
	keys := make([]key, 0, len(deducted))
	for _, m := range deducted {
		if m.Type != inventory.MovementTypeOut {
			continue
		}
		k := key{m.BranchID, m.InventoryItemID}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
			byKey[k] = decimal.Zero
		}
		byKey[k] = byKey[k].Add(m.Quantity)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].branch[:], keys[j].branch[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(keys[i].item[:], keys[j].item[:]) < 0
	})

	movements := make([]inventory.StockMovement, 0, len(keys))
	for _, k := range keys {
		m, err := applyMovement(ctx, repos, tenantID, k.branch, k.item, inventory.MovementRequest{
			Type:          inventory.MovementTypeIn,
			Quantity:      byKey[k],
			Reason:        "Order cancelled",
			ReferenceType: inventory.ReferenceTypeCancellation,
			ReferenceID:   &orderID,
			CreatedBy:     actor,
		})
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, nil
}

type itemQuantity struct {
	itemID   uuid.UUID
	quantity decimal.Decimal
}

// mergeByItem sums requirements per inventory item, sorted by item ID so
// concurrent orders lock stock rows in the same order.
func mergeByItem(reqs []inventory.Requirement) []itemQuantity {
	idx := make(map[uuid.UUID]int)
	var out []itemQuantity
	for _, r := range reqs {
		if i, ok := idx[r.InventoryItemID]; ok {
			out[i].quantity = out[i].quantity.Add(r.Quantity)
			continue
		}
		idx[r.InventoryItemID] = len(out)
		out = append(out, itemQuantity{itemID: r.InventoryItemID, quantity: r.Quantity})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].itemID[:], out[j].itemID[:]) < 0
	})
	return out
}

// applyMovement locks the stock row, applies the request and appends the ledger row
func applyMovement(ctx context.Context, repos unitofwork.Repositories, tenantID, branchID, itemID uuid.UUID, req inventory.MovementRequest) (*inventory.StockMovement, error) {
	stock, err := repos.BranchStock().GetForUpdate(ctx, tenantID, branchID, itemID)
	if err != nil {
		return nil, err
	}
	movement, err := stock.Apply(req)
	if err != nil {
		return nil, err
	}
	if err := repos.BranchStock().Save(ctx, stock); err != nil {
		return nil, fmt.Errorf("save branch stock: %w", err)
	}
	if err := repos.StockMovements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("create stock movement: %w", err)
	}
	return movement, nil
}
