package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/shopspring/decimal"
)

// TableModel is the persistence model for a floor table
type TableModel struct {
	BaseModel
	TenantID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_table_branch_number,priority:1"`
	BranchID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_table_branch_number,priority:2"`
	Number           string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_table_branch_number,priority:3"`
	Capacity         int                `gorm:"not null;default:0"`
	Status           dining.TableStatus `gorm:"type:varchar(20);not null;default:'free'"`
	CurrentSessionID *uuid.UUID         `gorm:"type:uuid"`
	TotalAmount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (TableModel) TableName() string {
	return "restaurant_tables"
}

// ToDomain converts the persistence model to a domain Table
func (m *TableModel) ToDomain() *dining.Table {
	return &dining.Table{
		ID:               m.ID,
		TenantID:         m.TenantID,
		BranchID:         m.BranchID,
		Number:           m.Number,
		Capacity:         m.Capacity,
		Status:           m.Status,
		CurrentSessionID: m.CurrentSessionID,
		TotalAmount:      m.TotalAmount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// TableModelFromDomain creates a persistence model from a domain Table
func TableModelFromDomain(t *dining.Table) *TableModel {
	return &TableModel{
		BaseModel:        BaseModel{ID: t.ID, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt},
		TenantID:         t.TenantID,
		BranchID:         t.BranchID,
		Number:           t.Number,
		Capacity:         t.Capacity,
		Status:           t.Status,
		CurrentSessionID: t.CurrentSessionID,
		TotalAmount:      t.TotalAmount,
	}
}

// TableSessionModel is the persistence model for the TableSession aggregate root
type TableSessionModel struct {
	TenantAggregateModel
	BranchID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	TableID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status       dining.SessionStatus `gorm:"type:varchar(20);not null;index"`
	OpenedBy     uuid.UUID            `gorm:"type:uuid;not null"`
	CustomerName string               `gorm:"type:varchar(100)"`
	GuestCount   int                  `gorm:"not null;default:0"`
	TotalAmount  decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	PaidAmount   decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	StartedAt    time.Time            `gorm:"not null"`
	EndedAt      *time.Time
}

// TableName returns the table name for GORM
func (TableSessionModel) TableName() string {
	return "table_sessions"
}

// ToDomain converts the persistence model to a domain TableSession
func (m *TableSessionModel) ToDomain() *dining.TableSession {
	return &dining.TableSession{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		BranchID:            m.BranchID,
		TableID:             m.TableID,
		Status:              m.Status,
		OpenedBy:            m.OpenedBy,
		CustomerName:        m.CustomerName,
		GuestCount:          m.GuestCount,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		StartedAt:           m.StartedAt,
		EndedAt:             m.EndedAt,
	}
}

// TableSessionModelFromDomain creates a persistence model from a domain TableSession
func TableSessionModelFromDomain(s *dining.TableSession) *TableSessionModel {
	m := &TableSessionModel{
		BranchID:     s.BranchID,
		TableID:      s.TableID,
		Status:       s.Status,
		OpenedBy:     s.OpenedBy,
		CustomerName: s.CustomerName,
		GuestCount:   s.GuestCount,
		TotalAmount:  s.TotalAmount,
		PaidAmount:   s.PaidAmount,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}

// TableGuestModel is the persistence model for a seated guest
type TableGuestModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	SessionID   uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_guest_session_number,priority:1"`
	GuestNumber int                `gorm:"not null;uniqueIndex:idx_guest_session_number,priority:2"`
	Name        string             `gorm:"type:varchar(100)"`
	AccessToken string             `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status      dining.GuestStatus `gorm:"type:varchar(20);not null"`
	Subtotal    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	JoinedAt    time.Time          `gorm:"not null"`
	UpdatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TableGuestModel) TableName() string {
	return "table_guests"
}

// ToDomain converts the persistence model to a domain TableGuest
func (m *TableGuestModel) ToDomain() *dining.TableGuest {
	return &dining.TableGuest{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SessionID:   m.SessionID,
		GuestNumber: m.GuestNumber,
		Name:        m.Name,
		AccessToken: m.AccessToken,
		Status:      m.Status,
		Subtotal:    m.Subtotal,
		JoinedAt:    m.JoinedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// TableGuestModelFromDomain creates a persistence model from a domain TableGuest
func TableGuestModelFromDomain(g *dining.TableGuest) *TableGuestModel {
	return &TableGuestModel{
		ID:          g.ID,
		TenantID:    g.TenantID,
		SessionID:   g.SessionID,
		GuestNumber: g.GuestNumber,
		Name:        g.Name,
		AccessToken: g.AccessToken,
		Status:      g.Status,
		Subtotal:    g.Subtotal,
		JoinedAt:    g.JoinedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// TableBillSplitModel is the persistence model for a bill split
type TableBillSplitModel struct {
	BaseModel
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	SessionID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	SplitType   dining.SplitType       `gorm:"type:varchar(20);not null"`
	TotalAmount decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	IsFinalized bool                   `gorm:"not null;default:false"`
	FinalizedAt *time.Time
	CreatedBy   uuid.UUID              `gorm:"type:uuid;not null"`
	Allocations []SplitAllocationModel `gorm:"foreignKey:SplitID;references:ID"`
}

// TableName returns the table name for GORM
func (TableBillSplitModel) TableName() string {
	return "table_bill_splits"
}

// ToDomain converts the persistence model to a domain TableBillSplit
func (m *TableBillSplitModel) ToDomain() *dining.TableBillSplit {
	s := &dining.TableBillSplit{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SessionID:   m.SessionID,
		SplitType:   m.SplitType,
		TotalAmount: m.TotalAmount,
		Allocations: make([]dining.SplitAllocation, len(m.Allocations)),
		IsFinalized: m.IsFinalized,
		FinalizedAt: m.FinalizedAt,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i, a := range m.Allocations {
		s.Allocations[i] = dining.SplitAllocation{
			ID:      a.ID,
			SplitID: a.SplitID,
			GuestID: a.GuestID,
			Amount:  a.Amount,
			Paid:    a.Paid,
			PaidAt:  a.PaidAt,
		}
	}
	return s
}

// TableBillSplitModelFromDomain creates a persistence model from a domain TableBillSplit
func TableBillSplitModelFromDomain(s *dining.TableBillSplit) *TableBillSplitModel {
	m := &TableBillSplitModel{
		BaseModel:   BaseModel{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		TenantID:    s.TenantID,
		SessionID:   s.SessionID,
		SplitType:   s.SplitType,
		TotalAmount: s.TotalAmount,
		IsFinalized: s.IsFinalized,
		FinalizedAt: s.FinalizedAt,
		CreatedBy:   s.CreatedBy,
		Allocations: make([]SplitAllocationModel, len(s.Allocations)),
	}
	for i, a := range s.Allocations {
		m.Allocations[i] = SplitAllocationModel{
			ID:      a.ID,
			SplitID: s.ID,
			GuestID: a.GuestID,
			Amount:  a.Amount,
			Paid:    a.Paid,
			PaidAt:  a.PaidAt,
		}
	}
	return m
}

// SplitAllocationModel is one guest's share of a split
type SplitAllocationModel struct {
	ID      uuid.UUID       `gorm:"type:uuid;primary_key"`
	SplitID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_split_guest,priority:1"`
	GuestID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_split_guest,priority:2"`
	Amount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Paid    bool            `gorm:"not null;default:false"`
	PaidAt  *time.Time
}

// TableName returns the table name for GORM
func (SplitAllocationModel) TableName() string {
	return "table_bill_split_allocations"
}

// OrderItemAuditLogModel is an immutable audit row
type OrderItemAuditLogModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SessionID   *uuid.UUID      `gorm:"type:uuid;index"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Action      string          `gorm:"type:varchar(30);not null"`
	FromGuestID *uuid.UUID      `gorm:"type:uuid"`
	ToGuestID   *uuid.UUID      `gorm:"type:uuid"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
	ItemName    string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemAuditLogModel) TableName() string {
	return "order_item_audit_logs"
}

// ToDomain converts the persistence model to a domain audit row
func (m *OrderItemAuditLogModel) ToDomain() dining.OrderItemAuditLog {
	return dining.OrderItemAuditLog{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SessionID:   m.SessionID,
		OrderID:     m.OrderID,
		OrderItemID: m.OrderItemID,
		Action:      m.Action,
		FromGuestID: m.FromGuestID,
		ToGuestID:   m.ToGuestID,
		ActorID:     m.ActorID,
		ItemName:    m.ItemName,
		Quantity:    m.Quantity,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
	}
}

// OrderItemAuditLogModelFromDomain creates a persistence model from a domain audit row
func OrderItemAuditLogModelFromDomain(l *dining.OrderItemAuditLog) *OrderItemAuditLogModel {
	return &OrderItemAuditLogModel{
		ID:          l.ID,
		TenantID:    l.TenantID,
		SessionID:   l.SessionID,
		OrderID:     l.OrderID,
		OrderItemID: l.OrderItemID,
		Action:      l.Action,
		FromGuestID: l.FromGuestID,
		ToGuestID:   l.ToGuestID,
		ActorID:     l.ActorID,
		ItemName:    l.ItemName,
		Quantity:    l.Quantity,
		LineTotal:   l.LineTotal,
		CreatedAt:   l.CreatedAt,
	}
}
