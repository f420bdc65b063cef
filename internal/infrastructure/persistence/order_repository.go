package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Items.Options")
}

// FindByID loads an order with its items and options
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the order row, then loads its items
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	if err := r.loadItems(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItemIDForUpdate locks and loads the order that owns the item
func (r *GormOrderRepository) FindByItemIDForUpdate(ctx context.Context, tenantID, itemID uuid.UUID) (*ordering.Order, error) {
	var item models.OrderItemModel
	if err := r.db.WithContext(ctx).Select("order_id").Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return r.FindByIDForUpdate(ctx, tenantID, item.OrderID)
}

// FindBySession returns every order of a table session, cancelled ones included
func (r *GormOrderRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]ordering.Order, error) {
	var rows []models.OrderModel
	if err := r.withItems(ctx).
		Where("tenant_id = ? AND table_session_id = ?", tenantID, sessionID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// FindByTable returns the orders placed at a table, optionally within one session
func (r *GormOrderRepository) FindByTable(ctx context.Context, tenantID, tableID uuid.UUID, sessionID *uuid.UUID) ([]ordering.Order, error) {
	query := r.withItems(ctx).Where("tenant_id = ? AND table_id = ?", tenantID, tableID)
	if sessionID != nil {
		query = query.Where("table_session_id = ?", *sessionID)
	}
	var rows []models.OrderModel
	if err := query.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// FindItemsByGuest returns the guest's items on orders that are not cancelled
func (r *GormOrderRepository) FindItemsByGuest(ctx context.Context, tenantID, guestID uuid.UUID) ([]ordering.OrderItem, error) {
	var rows []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Preload("Options").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.tenant_id = ? AND order_items.guest_id = ? AND orders.status <> ?",
			tenantID, guestID, ordering.OrderStatusCancelled).
		Order("order_items.created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]ordering.OrderItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// Save writes the order row and replaces its items and options
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	items := model.Items
	model.Items = nil

	db := r.db.WithContext(ctx)
	if err := db.Save(model).Error; err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	existing := db.Model(&models.OrderItemModel{}).Select("id").Where("order_id = ?", order.ID)
	if err := db.Where("order_item_id IN (?)", existing).Delete(&models.OrderItemOptionModel{}).Error; err != nil {
		return fmt.Errorf("delete order item options: %w", err)
	}
	if err := db.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *GormOrderRepository) loadItems(ctx context.Context, model *models.OrderModel) error {
	return r.db.WithContext(ctx).
		Preload("Options").
		Where("order_id = ?", model.ID).
		Order("created_at, id").
		Find(&model.Items).Error
}

func toOrders(rows []models.OrderModel) []ordering.Order {
	orders := make([]ordering.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
