package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockDrift is a branch stock row that disagrees with its movements
type StockDrift struct {
	BranchID        uuid.UUID       `json:"branch_id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Cached          decimal.Decimal `json:"cached"`
	Ledger          decimal.Decimal `json:"ledger"`
}

// RegisterDrift is a register balance that disagrees with its cash rows
type RegisterDrift struct {
	CashRegisterID uuid.UUID       `json:"cash_register_id"`
	Cached         decimal.Decimal `json:"cached"`
	Ledger         decimal.Decimal `json:"ledger"`
}

// CustomerDrift compares a customer's loyalty caches with their sources
type CustomerDrift struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CachedPoints int             `json:"cached_points"`
	LedgerPoints int             `json:"ledger_points"`
	CachedSpent  decimal.Decimal `json:"cached_spent"`
	LedgerSpent  decimal.Decimal `json:"ledger_spent"`
	CachedVisits int             `json:"cached_visits"`
	LedgerVisits int             `json:"ledger_visits"`
}

// DriftReport is the result of a read-only audit
type DriftReport struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	Registers []RegisterDrift `json:"registers"`
	Stock     []StockDrift    `json:"stock"`
}

// HasDrift reports whether any cache disagreed with its ledger
func (r *DriftReport) HasDrift() bool {
	return len(r.Registers) > 0 || len(r.Stock) > 0
}
