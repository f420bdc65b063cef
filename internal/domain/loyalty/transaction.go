package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType values are stored as-is and shared with reporting
type TransactionType string

const (
	TransactionTypeEarned   TransactionType = "ganho"
	TransactionTypeRedeemed TransactionType = "resgate"
	TransactionTypeAdjusted TransactionType = "ajuste"
	TransactionTypeExpired  TransactionType = "expirado"
)

// Transaction is an append-only points ledger row with a signed Points value
type Transaction struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	OrderID      *uuid.UUID
	Type         TransactionType
	Points       int
	BalanceAfter int
	Description  string
	CreatedAt    time.Time
}

// FoldPoints recomputes a balance from the ledger
func FoldPoints(txns []Transaction) int {
	total := 0
	for i := range txns {
		total += txns[i].Points
	}
	if total < 0 {
		return 0
	}
	return total
}

// CustomerRepository persists loyalty customers
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
	// PaidOrderSpend folds the spend credited by the customer's live orders
	PaidOrderSpend(ctx context.Context, tenantID, customerID uuid.UUID) (SpendSummary, error)
}

// ProgramRepository loads the tenant's program
type ProgramRepository interface {
	// FindActive returns shared.ErrNotFound when the tenant has no active program
	FindActive(ctx context.Context, tenantID uuid.UUID) (*Program, error)
}

// TransactionRepository appends to and reads the points ledger
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Transaction, error)
}

// SpendSummary is lifetime spend derived from paid, non-cancelled orders
type SpendSummary struct {
	TotalSpent decimal.Decimal
	Visits     int
}
