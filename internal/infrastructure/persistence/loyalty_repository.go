package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerRepository implements loyalty.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*loyalty.Customer, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and locks a customer
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*loyalty.Customer, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormCustomerRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*loyalty.Customer, error) {
	var model models.CustomerModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *loyalty.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// PaidOrderSpend sums the spend credited by the customer's orders that were
// not cancelled
func (r *GormCustomerRepository) PaidOrderSpend(ctx context.Context, tenantID, customerID uuid.UUID) (loyalty.SpendSummary, error) {
	var row struct {
		Total  decimal.Decimal
		Visits int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COALESCE(SUM(customer_credited), 0) AS total, COUNT(*) AS visits").
		Where("tenant_id = ? AND customer_id = ? AND visit_counted = ? AND status <> ?",
			tenantID, customerID, true, ordering.OrderStatusCancelled).
		Scan(&row).Error; err != nil {
		return loyalty.SpendSummary{}, err
	}
	return loyalty.SpendSummary{TotalSpent: row.Total, Visits: row.Visits}, nil
}

// GormLoyaltyProgramRepository implements loyalty.ProgramRepository using GORM
type GormLoyaltyProgramRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyProgramRepository creates a new GormLoyaltyProgramRepository
func NewGormLoyaltyProgramRepository(db *gorm.DB) *GormLoyaltyProgramRepository {
	return &GormLoyaltyProgramRepository{db: db}
}

// FindActive returns the tenant's active program
func (r *GormLoyaltyProgramRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*loyalty.Program, error) {
	var model models.LoyaltyProgramModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// GormLoyaltyTransactionRepository implements loyalty.TransactionRepository using GORM
type GormLoyaltyTransactionRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyTransactionRepository creates a new GormLoyaltyTransactionRepository
func NewGormLoyaltyTransactionRepository(db *gorm.DB) *GormLoyaltyTransactionRepository {
	return &GormLoyaltyTransactionRepository{db: db}
}

// Create appends a points ledger row
func (r *GormLoyaltyTransactionRepository) Create(ctx context.Context, tx *loyalty.Transaction) error {
	return r.db.WithContext(ctx).Create(models.LoyaltyTransactionModelFromDomain(tx)).Error
}

// FindByCustomer returns a customer's points ledger in write order
func (r *GormLoyaltyTransactionRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]loyalty.Transaction, error) {
	var rows []models.LoyaltyTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txns := make([]loyalty.Transaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].ToDomain()
	}
	return txns, nil
}

var (
	_ loyalty.CustomerRepository    = (*GormCustomerRepository)(nil)
	_ loyalty.ProgramRepository     = (*GormLoyaltyProgramRepository)(nil)
	_ loyalty.TransactionRepository = (*GormLoyaltyTransactionRepository)(nil)
)
