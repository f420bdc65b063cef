package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/restaurant/backend/internal/domain/shared"
)

// CategoryKind tells revenue categories from expense categories
type CategoryKind string

const (
	CategoryKindRevenue CategoryKind = "revenue"
	CategoryKindExpense CategoryKind = "expense"
)

// Well-known categories resolved by the payment flows
const (
	CategoryNameSales   = "Sales"
	CategoryNameRefunds = "Refunds"
)

// FinancialCategory groups ledger rows per tenant
type FinancialCategory struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Code      string
	Kind      CategoryKind
	CreatedAt time.Time
}

// CategoryCode turns a display name into its stable lookup code
func CategoryCode(name string) string {
	return slug.Make(name)
}

// NewFinancialCategory builds a category, deriving its code from the name
func NewFinancialCategory(tenantID uuid.UUID, name string, kind CategoryKind) (*FinancialCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category name cannot be empty")
	}
	if kind != CategoryKindRevenue && kind != CategoryKindExpense {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category kind must be revenue or expense")
	}
	return &FinancialCategory{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Code:      CategoryCode(name),
		Kind:      kind,
		CreatedAt: time.Now(),
	}, nil
}
