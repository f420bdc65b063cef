package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegister is a physical drawer. CurrentBalance is a materialized fold of
// the cash rows booked against it.
type CashRegister struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	BranchID       uuid.UUID
	Name           string
	CurrentBalance decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCashRegister creates an empty active register
func NewCashRegister(tenantID, branchID uuid.UUID, name string) *CashRegister {
	now := time.Now()
	return &CashRegister{
		ID:             uuid.New(),
		TenantID:       tenantID,
		BranchID:       branchID,
		Name:           name,
		CurrentBalance: decimal.Zero,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Book applies a ledger row's signed effect to the balance
func (r *CashRegister) Book(tx *FinancialTransaction) {
	r.CurrentBalance = r.CurrentBalance.Add(tx.SignedAmount())
	r.UpdatedAt = time.Now()
}
