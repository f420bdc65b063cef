package unitofwork

import (
	"context"

	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
)

// TransactionScope runs a unit of work against one database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories exposes every repository bound to the current transaction.
// Row locks taken through the *ForUpdate finders last until Execute returns.
type Repositories interface {
	Orders() ordering.OrderRepository

	Recipes() inventory.RecipeRepository
	BranchStock() inventory.BranchStockRepository
	StockMovements() inventory.StockMovementRepository

	FinancialTransactions() finance.TransactionRepository
	Categories() finance.CategoryRepository
	CashRegisters() finance.CashRegisterRepository
	Shifts() finance.ShiftRepository

	Customers() loyalty.CustomerRepository
	LoyaltyPrograms() loyalty.ProgramRepository
	LoyaltyTransactions() loyalty.TransactionRepository

	Tables() dining.TableRepository
	Sessions() dining.SessionRepository
	Guests() dining.GuestRepository
	Splits() dining.SplitRepository
	AuditLogs() dining.AuditLogRepository
}
