package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFloorMetricsProvider implements FloorMetricsProvider using GORM.
type GormFloorMetricsProvider struct {
	db *gorm.DB
}

// NewGormFloorMetricsProvider creates a new GormFloorMetricsProvider.
func NewGormFloorMetricsProvider(db *gorm.DB) *GormFloorMetricsProvider {
	return &GormFloorMetricsProvider{db: db}
}

// CountActiveSessions returns the number of seated table sessions for a tenant.
func (p *GormFloorMetricsProvider) CountActiveSessions(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("table_sessions").
		Where("tenant_id = ? AND status = ?", tenantID, "active").
		Count(&count).Error
	return count, err
}

// CountOpenShifts returns the number of open cash shifts for a tenant.
func (p *GormFloorMetricsProvider) CountOpenShifts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("shifts").
		Where("tenant_id = ? AND status = ?", tenantID, "open").
		Count(&count).Error
	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
// Tenants are discovered from the branches that hold cash registers.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns the tenants owning at least one active cash register.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("cash_registers").
		Distinct("tenant_id").
		Where("is_active = ?", true).
		Pluck("tenant_id", &ids).Error
	return ids, err
}
