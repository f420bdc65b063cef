package persistence

import (
	"context"

	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormTransactionScope implements unitofwork.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one database transaction. The transaction is
// rolled back when fn returns an error and committed otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos unitofwork.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Orders() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Recipes() inventory.RecipeRepository {
	return NewGormRecipeRepository(r.tx)
}

func (r *gormTransactionalRepositories) BranchStock() inventory.BranchStockRepository {
	return NewGormBranchStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) FinancialTransactions() finance.TransactionRepository {
	return NewGormFinancialTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Categories() finance.CategoryRepository {
	return NewGormFinancialCategoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashRegisters() finance.CashRegisterRepository {
	return NewGormCashRegisterRepository(r.tx)
}

func (r *gormTransactionalRepositories) Shifts() finance.ShiftRepository {
	return NewGormShiftRepository(r.tx)
}

func (r *gormTransactionalRepositories) Customers() loyalty.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) LoyaltyPrograms() loyalty.ProgramRepository {
	return NewGormLoyaltyProgramRepository(r.tx)
}

func (r *gormTransactionalRepositories) LoyaltyTransactions() loyalty.TransactionRepository {
	return NewGormLoyaltyTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Tables() dining.TableRepository {
	return NewGormTableRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sessions() dining.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Guests() dining.GuestRepository {
	return NewGormGuestRepository(r.tx)
}

func (r *gormTransactionalRepositories) Splits() dining.SplitRepository {
	return NewGormSplitRepository(r.tx)
}

func (r *gormTransactionalRepositories) AuditLogs() dining.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ unitofwork.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ unitofwork.Repositories = (*gormTransactionalRepositories)(nil)
