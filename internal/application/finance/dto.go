package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// OpenShiftRequest represents a request to open a cash shift
type OpenShiftRequest struct {
	CashRegisterID uuid.UUID       `json:"cash_register_id" binding:"required"`
	OpeningAmount  decimal.Decimal `json:"opening_amount"`
	OperatorID     uuid.UUID       `json:"-"`
}

// CloseShiftRequest represents a request to close a cash shift
type CloseShiftRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Notes         string          `json:"notes" binding:"max=500"`
	ClosedBy      uuid.UUID       `json:"-"`
}

// CashMovementRequest represents a manual drawer movement during a shift
type CashMovementRequest struct {
	Type         string          `json:"type" binding:"required,oneof=expense adjustment"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description" binding:"required,max=255"`
	CategoryName string          `json:"category_name" binding:"max=100"`
	RecordedBy   uuid.UUID       `json:"-"`
}

// ShiftResponse represents a shift in API responses
type ShiftResponse struct {
	ID                    uuid.UUID        `json:"id"`
	TenantID              uuid.UUID        `json:"tenant_id"`
	BranchID              uuid.UUID        `json:"branch_id"`
	CashRegisterID        uuid.UUID        `json:"cash_register_id"`
	OperatorID            uuid.UUID        `json:"operator_id"`
	Status                string           `json:"status"`
	OpeningAmount         decimal.Decimal  `json:"opening_amount"`
	ClosingAmountExpected *decimal.Decimal `json:"closing_amount_expected,omitempty"`
	ClosingAmountCounted  *decimal.Decimal `json:"closing_amount_counted,omitempty"`
	Discrepancy           *decimal.Decimal `json:"discrepancy,omitempty"`
	TotalRevenue          decimal.Decimal  `json:"total_revenue"`
	TotalExpense          decimal.Decimal  `json:"total_expense"`
	TotalAdjustment       decimal.Decimal  `json:"total_adjustment"`
	Notes                 string           `json:"notes,omitempty"`
	OpenedAt              time.Time        `json:"opened_at"`
	ClosedAt              *time.Time       `json:"closed_at,omitempty"`
}

// TransactionResponse represents a ledger row in API responses
type TransactionResponse struct {
	ID             uuid.UUID       `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	PaymentMethod  string          `json:"payment_method"`
	ShiftID        *uuid.UUID      `json:"shift_id,omitempty"`
	CashRegisterID *uuid.UUID      `json:"cash_register_id,omitempty"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty"`
	OrderID        *uuid.UUID      `json:"order_id,omitempty"`
	RecordedBy     uuid.UUID       `json:"recorded_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToShiftResponse converts a domain shift to a response DTO
func ToShiftResponse(s *finance.Shift) ShiftResponse {
	return ShiftResponse{
		ID:                    s.ID,
		TenantID:              s.TenantID,
		BranchID:              s.BranchID,
		CashRegisterID:        s.CashRegisterID,
		OperatorID:            s.OperatorID,
		Status:                string(s.Status),
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
}

// ToTransactionResponse converts a ledger row to a response DTO
func ToTransactionResponse(t *finance.FinancialTransaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Description:    t.Description,
		PaymentMethod:  t.PaymentMethod,
		ShiftID:        t.ShiftID,
		CashRegisterID: t.CashRegisterID,
		CategoryID:     t.CategoryID,
		OrderID:        t.OrderID,
		RecordedBy:     t.RecordedBy,
		CreatedAt:      t.CreatedAt,
	}
}
