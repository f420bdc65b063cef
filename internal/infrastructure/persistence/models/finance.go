package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CashRegisterModel is the persistence model for a cash drawer
type CashRegisterModel struct {
	BaseModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"type:varchar(100);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CashRegisterModel) TableName() string {
	return "cash_registers"
}

// ToDomain converts the persistence model to a domain CashRegister
func (m *CashRegisterModel) ToDomain() *finance.CashRegister {
	return &finance.CashRegister{
		ID:             m.ID,
		TenantID:       m.TenantID,
		BranchID:       m.BranchID,
		Name:           m.Name,
		CurrentBalance: m.CurrentBalance,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CashRegisterModelFromDomain creates a persistence model from a domain CashRegister
func CashRegisterModelFromDomain(r *finance.CashRegister) *CashRegisterModel {
	return &CashRegisterModel{
		BaseModel:      BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		TenantID:       r.TenantID,
		BranchID:       r.BranchID,
		Name:           r.Name,
		CurrentBalance: r.CurrentBalance,
		IsActive:       r.IsActive,
	}
}

// ShiftModel is the persistence model for the Shift aggregate root
type ShiftModel struct {
	TenantAggregateModel
	BranchID              uuid.UUID           `gorm:"type:uuid;not null;index"`
	CashRegisterID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	OperatorID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status                finance.ShiftStatus `gorm:"type:varchar(20);not null;index"`
	OpeningAmount         decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	ClosingAmountExpected *decimal.Decimal    `gorm:"type:numeric(12,2)"`
	ClosingAmountCounted  *decimal.Decimal    `gorm:"type:numeric(12,2)"`
	Discrepancy           *decimal.Decimal    `gorm:"type:numeric(12,2)"`
	TotalRevenue          decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	TotalExpense          decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAdjustment       decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	Notes                 string              `gorm:"type:text"`
	OpenedAt              time.Time           `gorm:"not null"`
	ClosedAt              *time.Time
}

// TableName returns the table name for GORM
func (ShiftModel) TableName() string {
	return "shifts"
}

// ToDomain converts the persistence model to a domain Shift
func (m *ShiftModel) ToDomain() *finance.Shift {
	return &finance.Shift{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(),
		BranchID:              m.BranchID,
		CashRegisterID:        m.CashRegisterID,
		OperatorID:            m.OperatorID,
		Status:                m.Status,
		OpeningAmount:         m.OpeningAmount,
		ClosingAmountExpected: m.ClosingAmountExpected,
		ClosingAmountCounted:  m.ClosingAmountCounted,
		Discrepancy:           m.Discrepancy,
		TotalRevenue:          m.TotalRevenue,
		TotalExpense:          m.TotalExpense,
		TotalAdjustment:       m.TotalAdjustment,
		Notes:                 m.Notes,
		OpenedAt:              m.OpenedAt,
		ClosedAt:              m.ClosedAt,
	}
}

// ShiftModelFromDomain creates a persistence model from a domain Shift
func ShiftModelFromDomain(s *finance.Shift) *ShiftModel {
	m := &ShiftModel{
		BranchID:              s.BranchID,
		CashRegisterID:        s.CashRegisterID,
		OperatorID:            s.OperatorID,
		Status:                s.Status,
		OpeningAmount:         s.OpeningAmount,
		ClosingAmountExpected: s.ClosingAmountExpected,
		ClosingAmountCounted:  s.ClosingAmountCounted,
		Discrepancy:           s.Discrepancy,
		TotalRevenue:          s.TotalRevenue,
		TotalExpense:          s.TotalExpense,
		TotalAdjustment:       s.TotalAdjustment,
		Notes:                 s.Notes,
		OpenedAt:              s.OpenedAt,
		ClosedAt:              s.ClosedAt,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}

// FinancialCategoryModel is the persistence model for a ledger category
type FinancialCategoryModel struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_fin_category_tenant_code,priority:1"`
	Name      string               `gorm:"type:varchar(100);not null"`
	Code      string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_fin_category_tenant_code,priority:2"`
	Kind      finance.CategoryKind `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FinancialCategoryModel) TableName() string {
	return "financial_categories"
}

// ToDomain converts the persistence model to a domain FinancialCategory
func (m *FinancialCategoryModel) ToDomain() *finance.FinancialCategory {
	return &finance.FinancialCategory{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Code:      m.Code,
		Kind:      m.Kind,
		CreatedAt: m.CreatedAt,
	}
}

// FinancialCategoryModelFromDomain creates a persistence model from a domain FinancialCategory
func FinancialCategoryModelFromDomain(c *finance.FinancialCategory) *FinancialCategoryModel {
	return &FinancialCategoryModel{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		Code:      c.Code,
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
	}
}

// FinancialTransactionModel is an append-only money ledger row
type FinancialTransactionModel struct {
	ID             uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type           finance.TransactionType `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal         `gorm:"type:numeric(12,2);not null"`
	Description    string                  `gorm:"type:varchar(500)"`
	PaymentMethod  string                  `gorm:"type:varchar(30);index"`
	Reference      string                  `gorm:"type:varchar(200)"`
	RecordedBy     uuid.UUID               `gorm:"type:uuid;not null"`
	ShiftID        *uuid.UUID              `gorm:"type:uuid;index"`
	CashRegisterID *uuid.UUID              `gorm:"type:uuid;index"`
	CategoryID     *uuid.UUID              `gorm:"type:uuid"`
	OrderID        *uuid.UUID              `gorm:"type:uuid;index"`
	CreatedAt      time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (FinancialTransactionModel) TableName() string {
	return "financial_transactions"
}

// ToDomain converts the persistence model to a domain FinancialTransaction
func (m *FinancialTransactionModel) ToDomain() finance.FinancialTransaction {
	return finance.FinancialTransaction{
		ID:             m.ID,
		TenantID:       m.TenantID,
		BranchID:       m.BranchID,
		Type:           m.Type,
		Amount:         m.Amount,
		Description:    m.Description,
		PaymentMethod:  m.PaymentMethod,
		Reference:      m.Reference,
		RecordedBy:     m.RecordedBy,
		ShiftID:        m.ShiftID,
		CashRegisterID: m.CashRegisterID,
		CategoryID:     m.CategoryID,
		OrderID:        m.OrderID,
		CreatedAt:      m.CreatedAt,
	}
}

// FinancialTransactionModelFromDomain creates a persistence model from a domain ledger row
func FinancialTransactionModelFromDomain(t *finance.FinancialTransaction) *FinancialTransactionModel {
	return &FinancialTransactionModel{
		ID:             t.ID,
		TenantID:       t.TenantID,
		BranchID:       t.BranchID,
		Type:           t.Type,
		Amount:         t.Amount,
		Description:    t.Description,
		PaymentMethod:  t.PaymentMethod,
		Reference:      t.Reference,
		RecordedBy:     t.RecordedBy,
		ShiftID:        t.ShiftID,
		CashRegisterID: t.CashRegisterID,
		CategoryID:     t.CategoryID,
		OrderID:        t.OrderID,
		CreatedAt:      t.CreatedAt,
	}
}
