package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTableRepository implements dining.TableRepository using GORM
type GormTableRepository struct {
	db *gorm.DB
}

// NewGormTableRepository creates a new GormTableRepository
func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

// FindByID finds a table by ID within a tenant
func (r *GormTableRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*dining.Table, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and locks a table
func (r *GormTableRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*dining.Table, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormTableRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*dining.Table, error) {
	var model models.TableModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a table
func (r *GormTableRepository) Save(ctx context.Context, table *dining.Table) error {
	return r.db.WithContext(ctx).Save(models.TableModelFromDomain(table)).Error
}

// GormSessionRepository implements dining.SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a session by ID within a tenant
func (r *GormSessionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*dining.TableSession, error) {
	return r.find(r.db.WithContext(ctx).Where("id = ?", id), tenantID)
}

// FindByIDForUpdate finds and locks a session
func (r *GormSessionRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*dining.TableSession, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)).Where("id = ?", id), tenantID)
}

// FindActiveByTable finds the open session of a table
func (r *GormSessionRepository) FindActiveByTable(ctx context.Context, tenantID, tableID uuid.UUID) (*dining.TableSession, error) {
	return r.find(r.db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, dining.SessionStatusActive).
		Order("started_at DESC"), tenantID)
}

func (r *GormSessionRepository) find(db *gorm.DB, tenantID uuid.UUID) (*dining.TableSession, error) {
	var model models.TableSessionModel
	if err := db.Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a session
func (r *GormSessionRepository) Save(ctx context.Context, session *dining.TableSession) error {
	return r.db.WithContext(ctx).Save(models.TableSessionModelFromDomain(session)).Error
}

// GormGuestRepository implements dining.GuestRepository using GORM
type GormGuestRepository struct {
	db *gorm.DB
}

// NewGormGuestRepository creates a new GormGuestRepository
func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// FindByID finds a guest by ID within a tenant
func (r *GormGuestRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*dining.TableGuest, error) {
	var model models.TableGuestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySession lists the guests of a session in seat order
func (r *GormGuestRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]dining.TableGuest, error) {
	var rows []models.TableGuestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("guest_number").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	guests := make([]dining.TableGuest, len(rows))
	for i := range rows {
		guests[i] = *rows[i].ToDomain()
	}
	return guests, nil
}

// MaxGuestNumber returns the highest guest number used in a session, or 0
func (r *GormGuestRepository) MaxGuestNumber(ctx context.Context, tenantID, sessionID uuid.UUID) (int, error) {
	var n int
	if err := r.db.WithContext(ctx).
		Model(&models.TableGuestModel{}).
		Select("COALESCE(MAX(guest_number), 0)").
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Save creates or updates a guest
func (r *GormGuestRepository) Save(ctx context.Context, guest *dining.TableGuest) error {
	return r.db.WithContext(ctx).Save(models.TableGuestModelFromDomain(guest)).Error
}

// GormSplitRepository implements dining.SplitRepository using GORM
type GormSplitRepository struct {
	db *gorm.DB
}

// NewGormSplitRepository creates a new GormSplitRepository
func NewGormSplitRepository(db *gorm.DB) *GormSplitRepository {
	return &GormSplitRepository{db: db}
}

// FindByIDForUpdate locks a split and loads its allocations
func (r *GormSplitRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*dining.TableBillSplit, error) {
	var model models.TableBillSplitModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	if err := r.db.WithContext(ctx).
		Where("split_id = ?", model.ID).
		Find(&model.Allocations).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySession lists the splits of a session, newest first
func (r *GormSplitRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]dining.TableBillSplit, error) {
	var rows []models.TableBillSplitModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	splits := make([]dining.TableBillSplit, len(rows))
	for i := range rows {
		splits[i] = *rows[i].ToDomain()
	}
	return splits, nil
}

// Save writes the split and replaces its allocations
func (r *GormSplitRepository) Save(ctx context.Context, split *dining.TableBillSplit) error {
	model := models.TableBillSplitModelFromDomain(split)
	allocations := model.Allocations
	model.Allocations = nil

	db := r.db.WithContext(ctx)
	if err := db.Save(model).Error; err != nil {
		return fmt.Errorf("save bill split: %w", err)
	}
	if err := db.Where("split_id = ?", split.ID).Delete(&models.SplitAllocationModel{}).Error; err != nil {
		return fmt.Errorf("delete split allocations: %w", err)
	}
	if len(allocations) == 0 {
		return nil
	}
	if err := db.Create(&allocations).Error; err != nil {
		return fmt.Errorf("insert split allocations: %w", err)
	}
	return nil
}

// Delete removes a split and its allocations
func (r *GormSplitRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("split_id = ?", id).Delete(&models.SplitAllocationModel{}).Error; err != nil {
		return err
	}
	return db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.TableBillSplitModel{}).Error
}

// GormAuditLogRepository implements dining.AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an audit row
func (r *GormAuditLogRepository) Create(ctx context.Context, log *dining.OrderItemAuditLog) error {
	return r.db.WithContext(ctx).Create(models.OrderItemAuditLogModelFromDomain(log)).Error
}

// FindByOrderItem returns an item's audit trail, oldest first
func (r *GormAuditLogRepository) FindByOrderItem(ctx context.Context, tenantID, orderItemID uuid.UUID) ([]dining.OrderItemAuditLog, error) {
	var rows []models.OrderItemAuditLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_item_id = ?", tenantID, orderItemID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]dining.OrderItemAuditLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, nil
}

var (
	_ dining.TableRepository    = (*GormTableRepository)(nil)
	_ dining.SessionRepository  = (*GormSessionRepository)(nil)
	_ dining.GuestRepository    = (*GormGuestRepository)(nil)
	_ dining.SplitRepository    = (*GormSplitRepository)(nil)
	_ dining.AuditLogRepository = (*GormAuditLogRepository)(nil)
)
