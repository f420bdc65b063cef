package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinancialTransactionRepository implements finance.TransactionRepository using GORM
type GormFinancialTransactionRepository struct {
	db *gorm.DB
}

// NewGormFinancialTransactionRepository creates a new GormFinancialTransactionRepository
func NewGormFinancialTransactionRepository(db *gorm.DB) *GormFinancialTransactionRepository {
	return &GormFinancialTransactionRepository{db: db}
}

// Create appends a ledger row
func (r *GormFinancialTransactionRepository) Create(ctx context.Context, tx *finance.FinancialTransaction) error {
	return r.db.WithContext(ctx).Create(models.FinancialTransactionModelFromDomain(tx)).Error
}

// FindByShift returns the rows booked against a shift
func (r *GormFinancialTransactionRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]finance.FinancialTransaction, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND shift_id = ?", tenantID, shiftID))
}

// FindByOrder returns the revenue and refund rows of an order
func (r *GormFinancialTransactionRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]finance.FinancialTransaction, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND order_id = ?", tenantID, orderID))
}

// FindCashByRegister returns the cash rows that moved a register's balance
func (r *GormFinancialTransactionRepository) FindCashByRegister(ctx context.Context, tenantID, registerID uuid.UUID) ([]finance.FinancialTransaction, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND cash_register_id = ? AND payment_method = ?", tenantID, registerID, finance.PaymentMethodCash))
}

func (r *GormFinancialTransactionRepository) find(db *gorm.DB) ([]finance.FinancialTransaction, error) {
	var rows []models.FinancialTransactionModel
	if err := db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	txns := make([]finance.FinancialTransaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].ToDomain()
	}
	return txns, nil
}

// GormFinancialCategoryRepository implements finance.CategoryRepository using GORM
type GormFinancialCategoryRepository struct {
	db *gorm.DB
}

// NewGormFinancialCategoryRepository creates a new GormFinancialCategoryRepository
func NewGormFinancialCategoryRepository(db *gorm.DB) *GormFinancialCategoryRepository {
	return &GormFinancialCategoryRepository{db: db}
}

// FindByCode finds a category by its slug code
func (r *GormFinancialCategoryRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*finance.FinancialCategory, error) {
	var model models.FinancialCategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create stores a new category
func (r *GormFinancialCategoryRepository) Create(ctx context.Context, category *finance.FinancialCategory) error {
	return r.db.WithContext(ctx).Create(models.FinancialCategoryModelFromDomain(category)).Error
}

// GormCashRegisterRepository implements finance.CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByID finds a register by ID within a tenant
func (r *GormCashRegisterRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CashRegister, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and locks a register
func (r *GormCashRegisterRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.CashRegister, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormCashRegisterRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*finance.CashRegister, error) {
	var model models.CashRegisterModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListByTenant lists every register of a tenant
func (r *GormCashRegisterRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]finance.CashRegister, error) {
	var rows []models.CashRegisterModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("branch_id, name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	registers := make([]finance.CashRegister, len(rows))
	for i := range rows {
		registers[i] = *rows[i].ToDomain()
	}
	return registers, nil
}

// Save creates or updates a register
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *finance.CashRegister) error {
	return r.db.WithContext(ctx).Save(models.CashRegisterModelFromDomain(register)).Error
}

// GormShiftRepository implements finance.ShiftRepository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// FindByID finds a shift by ID within a tenant
func (r *GormShiftRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Shift, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate finds and locks a shift
func (r *GormShiftRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Shift, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindOpenByRegister finds the open shift of a register
func (r *GormShiftRepository) FindOpenByRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*finance.Shift, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND cash_register_id = ? AND status = ?", tenantID, registerID, finance.ShiftStatusOpen))
}

// FindOpenByBranch finds the open shift that should receive a branch's
// ledger rows: the operator's own shift first, then the latest opened one.
func (r *GormShiftRepository) FindOpenByBranch(ctx context.Context, tenantID, branchID uuid.UUID, operatorID *uuid.UUID) (*finance.Shift, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Where("tenant_id = ? AND branch_id = ? AND status = ?", tenantID, branchID, finance.ShiftStatusOpen).
			Order("opened_at DESC")
	}
	if operatorID != nil {
		shift, err := r.find(base().Where("operator_id = ?", *operatorID))
		if err == nil {
			return shift, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return r.find(base())
}

func (r *GormShiftRepository) find(db *gorm.DB) (*finance.Shift, error) {
	var model models.ShiftModel
	if err := db.First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a shift
func (r *GormShiftRepository) Save(ctx context.Context, shift *finance.Shift) error {
	return r.db.WithContext(ctx).Save(models.ShiftModelFromDomain(shift)).Error
}

var (
	_ finance.TransactionRepository  = (*GormFinancialTransactionRepository)(nil)
	_ finance.CategoryRepository     = (*GormFinancialCategoryRepository)(nil)
	_ finance.CashRegisterRepository = (*GormCashRegisterRepository)(nil)
	_ finance.ShiftRepository        = (*GormShiftRepository)(nil)
)
