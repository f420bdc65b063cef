package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a cash-ledger row
type TransactionType string

const (
	TransactionTypeRevenue    TransactionType = "revenue"
	TransactionTypeExpense    TransactionType = "expense"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeRevenue, TransactionTypeExpense, TransactionTypeAdjustment:
		return true
	}
	return false
}

// PaymentMethodCash marks ledger rows that moved physical cash
const PaymentMethodCash = "cash"

// FinancialTransaction is an append-only money ledger row. Amount is always
// positive and the sign comes from Type.
type FinancialTransaction struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	BranchID       uuid.UUID
	Type           TransactionType
	Amount         decimal.Decimal
	Description    string
	PaymentMethod  string
	Reference      string
	RecordedBy     uuid.UUID
	ShiftID        *uuid.UUID
	CashRegisterID *uuid.UUID
	CategoryID     *uuid.UUID
	OrderID        *uuid.UUID
	CreatedAt      time.Time
}

// NewTransactionInput carries the fields of a new ledger row
type NewTransactionInput struct {
	BranchID       uuid.UUID
	Type           TransactionType
	Amount         decimal.Decimal
	Description    string
	PaymentMethod  string
	Reference      string
	RecordedBy     uuid.UUID
	ShiftID        *uuid.UUID
	CashRegisterID *uuid.UUID
	CategoryID     *uuid.UUID
	OrderID        *uuid.UUID
}

// NewFinancialTransaction validates and builds a ledger row
func NewFinancialTransaction(tenantID uuid.UUID, in NewTransactionInput) (*FinancialTransaction, error) {
	if !in.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", fmt.Sprintf("Unknown transaction type %q", in.Type))
	}
	amount := valueobject.RoundMoney(in.Amount)
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if in.RecordedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Transactions must record who made them")
	}
	return &FinancialTransaction{
		ID:             uuid.New(),
		TenantID:       tenantID,
		BranchID:       in.BranchID,
		Type:           in.Type,
		Amount:         amount,
		Description:    in.Description,
		PaymentMethod:  in.PaymentMethod,
		Reference:      in.Reference,
		RecordedBy:     in.RecordedBy,
		ShiftID:        in.ShiftID,
		CashRegisterID: in.CashRegisterID,
		CategoryID:     in.CategoryID,
		OrderID:        in.OrderID,
		CreatedAt:      time.Now(),
	}, nil
}

// SignedAmount is the effect on a cash drawer
func (t *FinancialTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsCash reports whether physical cash moved
func (t *FinancialTransaction) IsCash() bool {
	return t.PaymentMethod == PaymentMethodCash
}

// LedgerTotals aggregates ledger rows per type
type LedgerTotals struct {
	Revenue    decimal.Decimal
	Expense    decimal.Decimal
	Adjustment decimal.Decimal
}

// Net is revenue minus expense plus adjustment
func (t LedgerTotals) Net() decimal.Decimal {
	return t.Revenue.Sub(t.Expense).Add(t.Adjustment)
}

// SumTransactions totals the given rows, optionally only the cash ones
func SumTransactions(txns []FinancialTransaction, cashOnly bool) LedgerTotals {
	totals := LedgerTotals{Revenue: decimal.Zero, Expense: decimal.Zero, Adjustment: decimal.Zero}
	for i := range txns {
		tx := &txns[i]
		if cashOnly && !tx.IsCash() {
			continue
		}
		switch tx.Type {
		case TransactionTypeRevenue:
			totals.Revenue = totals.Revenue.Add(tx.Amount)
		case TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(tx.Amount)
		case TransactionTypeAdjustment:
			totals.Adjustment = totals.Adjustment.Add(tx.Amount)
		}
	}
	return totals
}

// RefundShare is the part of a refund booked under one tender
type RefundShare struct {
	PaymentMethod string
	Amount        decimal.Decimal
}

// SplitRefund spreads a refund over the tenders that paid for it, cash first
// and then in payment order, so only the cash share leaves the drawer. Any
// amount the revenue rows do not cover falls to fallbackMethod.
func SplitRefund(revenue []FinancialTransaction, refund decimal.Decimal, fallbackMethod string) []RefundShare {
	paid := make(map[string]decimal.Decimal)
	order := make([]string, 0, 2)
	for i := range revenue {
		tx := &revenue[i]
		if tx.Type != TransactionTypeRevenue {
			continue
		}
		if _, seen := paid[tx.PaymentMethod]; !seen {
			if tx.IsCash() {
				order = append([]string{tx.PaymentMethod}, order...)
			} else {
				order = append(order, tx.PaymentMethod)
			}
			paid[tx.PaymentMethod] = decimal.Zero
		}
		paid[tx.PaymentMethod] = paid[tx.PaymentMethod].Add(tx.Amount)
	}

	left := refund
	shares := make([]RefundShare, 0, len(order)+1)
	for _, method := range order {
		if !left.IsPositive() {
			break
		}
		amount := decimal.Min(paid[method], left)
		if !amount.IsPositive() {
			continue
		}
		shares = append(shares, RefundShare{PaymentMethod: method, Amount: amount})
		left = left.Sub(amount)
	}
	if left.IsPositive() {
		shares = append(shares, RefundShare{PaymentMethod: fallbackMethod, Amount: left})
	}
	return shares
}
