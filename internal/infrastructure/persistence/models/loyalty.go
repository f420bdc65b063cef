package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// CustomerModel holds a customer and their loyalty caches
type CustomerModel struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Phone         string          `gorm:"type:varchar(30);index"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	VisitCount    int             `gorm:"not null;default:0"`
	LoyaltyPoints int             `gorm:"not null;default:0"`
	Tier          loyalty.Tier    `gorm:"type:varchar(20);not null;default:'bronze'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *loyalty.Customer {
	return &loyalty.Customer{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Name:          m.Name,
		Phone:         m.Phone,
		TotalSpent:    m.TotalSpent,
		VisitCount:    m.VisitCount,
		LoyaltyPoints: m.LoyaltyPoints,
		Tier:          m.Tier,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *loyalty.Customer) *CustomerModel {
	return &CustomerModel{
		BaseModel:     BaseModel{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
		TenantID:      c.TenantID,
		Name:          c.Name,
		Phone:         c.Phone,
		TotalSpent:    c.TotalSpent,
		VisitCount:    c.VisitCount,
		LoyaltyPoints: c.LoyaltyPoints,
		Tier:          c.Tier,
	}
}

// LoyaltyProgramModel is a tenant's loyalty configuration
type LoyaltyProgramModel struct {
	BaseModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PointsPerCurrency decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	MaxPointsPerOrder int             `gorm:"not null;default:0"`
	PointValue        decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	MinRedeemPoints   int             `gorm:"not null;default:0"`
	SilverThreshold   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	GoldThreshold     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	PlatinumThreshold decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LoyaltyProgramModel) TableName() string {
	return "loyalty_programs"
}

// ToDomain converts the persistence model to a domain Program
func (m *LoyaltyProgramModel) ToDomain() *loyalty.Program {
	return &loyalty.Program{
		ID:                m.ID,
		TenantID:          m.TenantID,
		PointsPerCurrency: m.PointsPerCurrency,
		MaxPointsPerOrder: m.MaxPointsPerOrder,
		PointValue:        m.PointValue,
		MinRedeemPoints:   m.MinRedeemPoints,
		SilverThreshold:   m.SilverThreshold,
		GoldThreshold:     m.GoldThreshold,
		PlatinumThreshold: m.PlatinumThreshold,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// LoyaltyProgramModelFromDomain creates a persistence model from a domain Program
func LoyaltyProgramModelFromDomain(p *loyalty.Program) *LoyaltyProgramModel {
	return &LoyaltyProgramModel{
		BaseModel:         BaseModel{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		TenantID:          p.TenantID,
		PointsPerCurrency: p.PointsPerCurrency,
		MaxPointsPerOrder: p.MaxPointsPerOrder,
		PointValue:        p.PointValue,
		MinRedeemPoints:   p.MinRedeemPoints,
		SilverThreshold:   p.SilverThreshold,
		GoldThreshold:     p.GoldThreshold,
		PlatinumThreshold: p.PlatinumThreshold,
		IsActive:          p.IsActive,
	}
}

// LoyaltyTransactionModel is an append-only points ledger row
type LoyaltyTransactionModel struct {
	ID           uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID               `gorm:"type:uuid;not null;index:idx_loyalty_tx_customer,priority:1"`
	CustomerID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_loyalty_tx_customer,priority:2"`
	OrderID      *uuid.UUID              `gorm:"type:uuid;index"`
	Type         loyalty.TransactionType `gorm:"type:varchar(20);not null"`
	Points       int                     `gorm:"not null"`
	BalanceAfter int                     `gorm:"not null"`
	Description  string                  `gorm:"type:varchar(500)"`
	CreatedAt    time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LoyaltyTransactionModel) TableName() string {
	return "loyalty_transactions"
}

// ToDomain converts the persistence model to a domain points ledger row
func (m *LoyaltyTransactionModel) ToDomain() loyalty.Transaction {
	return loyalty.Transaction{
		ID:           m.ID,
		TenantID:     m.TenantID,
		CustomerID:   m.CustomerID,
		OrderID:      m.OrderID,
		Type:         m.Type,
		Points:       m.Points,
		BalanceAfter: m.BalanceAfter,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

// LoyaltyTransactionModelFromDomain creates a persistence model from a domain points ledger row
func LoyaltyTransactionModelFromDomain(t *loyalty.Transaction) *LoyaltyTransactionModel {
	return &LoyaltyTransactionModel{
		ID:           t.ID,
		TenantID:     t.TenantID,
		CustomerID:   t.CustomerID,
		OrderID:      t.OrderID,
		Type:         t.Type,
		Points:       t.Points,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}
