package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/shared"
)

// ResolveCategory returns the tenant's category with the given name, creating it on first use
func ResolveCategory(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, name string, kind finance.CategoryKind) (*finance.FinancialCategory, error) {
	category, err := repos.Categories().FindByCode(ctx, tenantID, finance.CategoryCode(name))
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	category, err = finance.NewFinancialCategory(tenantID, name, kind)
	if err != nil {
		return nil, err
	}
	if err := repos.Categories().Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category %s: %w", category.Code, err)
	}
	return category, nil
}

// PostingResult describes where a ledger row landed
type PostingResult struct {
	Transaction *finance.FinancialTransaction
	// Shift is nil when the branch had no open shift
	Shift *finance.Shift
}

// PostToOpenShift appends a ledger row tagged with the branch's open shift.
// Cash rows also move the balance of that shift's register. With no open
// shift the row is still recorded, untagged.
func PostToOpenShift(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, in finance.NewTransactionInput) (PostingResult, error) {
	operator := in.RecordedBy
	shift, err := repos.Shifts().FindOpenByBranch(ctx, tenantID, in.BranchID, &operator)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return PostingResult{}, err
	}
	if shift != nil {
		// re-read under lock so a concurrent close cannot miss this row
		shift, err = repos.Shifts().FindByIDForUpdate(ctx, tenantID, shift.ID)
		if err != nil {
			return PostingResult{}, err
		}
		if !shift.IsOpen() {
			shift = nil
		}
	}
	if shift != nil {
		in.ShiftID = &shift.ID
		in.CashRegisterID = &shift.CashRegisterID
	}

	tx, err := finance.NewFinancialTransaction(tenantID, in)
	if err != nil {
		return PostingResult{}, err
	}
	if shift != nil && tx.IsCash() {
		if err := bookOnRegister(ctx, repos, tenantID, shift.CashRegisterID, tx); err != nil {
			return PostingResult{}, err
		}
	}
	if err := repos.FinancialTransactions().Create(ctx, tx); err != nil {
		return PostingResult{}, fmt.Errorf("create financial transaction: %w", err)
	}
	return PostingResult{Transaction: tx, Shift: shift}, nil
}

func bookOnRegister(ctx context.Context, repos unitofwork.Repositories, tenantID, registerID uuid.UUID, tx *finance.FinancialTransaction) error {
	register, err := repos.CashRegisters().FindByIDForUpdate(ctx, tenantID, registerID)
	if err != nil {
		return err
	}
	register.Book(tx)
	return repos.CashRegisters().Save(ctx, register)
}
