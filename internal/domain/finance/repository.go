package finance

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository appends to and queries the money ledger
type TransactionRepository interface {
	Create(ctx context.Context, tx *FinancialTransaction) error
	FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]FinancialTransaction, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]FinancialTransaction, error)
	FindCashByRegister(ctx context.Context, tenantID, registerID uuid.UUID) ([]FinancialTransaction, error)
}

// CategoryRepository resolves tenant categories
type CategoryRepository interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*FinancialCategory, error)
	Create(ctx context.Context, category *FinancialCategory) error
}

// CashRegisterRepository persists drawers
type CashRegisterRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]CashRegister, error)
	Save(ctx context.Context, register *CashRegister) error
}

// ShiftRepository persists shifts
type ShiftRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)
	FindOpenByRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*Shift, error)
	// FindOpenByBranch prefers the operator's own shift, then the most recently opened one
	FindOpenByBranch(ctx context.Context, tenantID, branchID uuid.UUID, operatorID *uuid.UUID) (*Shift, error)
	Save(ctx context.Context, shift *Shift) error
}
