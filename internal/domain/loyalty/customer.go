package loyalty

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Tier is the customer's loyalty level
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var ErrInsufficientPoints = shared.NewDomainError("INSUFFICIENT_POINTS", "Customer does not have enough loyalty points")

// Customer owns the loyalty caches. TotalSpent, VisitCount and LoyaltyPoints
// only change together with a ledger row or a paid/cancelled order.
type Customer struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	Phone         string
	TotalSpent    decimal.Decimal
	VisitCount    int
	LoyaltyPoints int
	Tier          Tier
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCustomer creates a bronze customer with no history
func NewCustomer(tenantID uuid.UUID, name, phone string) *Customer {
	now := time.Now()
	return &Customer{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       name,
		Phone:      phone,
		TotalSpent: decimal.Zero,
		Tier:       TierBronze,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// RecordPaidOrder adds a fully paid order to the customer's history
func (c *Customer) RecordPaidOrder(total decimal.Decimal, program *Program) {
	c.TotalSpent = valueobject.RoundMoney(c.TotalSpent.Add(total))
	c.VisitCount++
	c.refreshTier(program)
}

// AddSpend credits a later change to an order already in the history
func (c *Customer) AddSpend(amount decimal.Decimal, program *Program) {
	c.TotalSpent = valueobject.NonNegative(valueobject.RoundMoney(c.TotalSpent.Add(amount)))
	c.refreshTier(program)
}

// ReversePaidOrder undoes RecordPaidOrder, flooring both counters at zero
func (c *Customer) ReversePaidOrder(total decimal.Decimal, program *Program) {
	c.TotalSpent = valueobject.NonNegative(c.TotalSpent.Sub(total))
	if c.VisitCount > 0 {
		c.VisitCount--
	}
	c.refreshTier(program)
}

func (c *Customer) refreshTier(program *Program) {
	if program != nil {
		c.Tier = program.TierFor(c.TotalSpent)
	}
	c.UpdatedAt = time.Now()
}

// Earn credits points for an order
func (c *Customer) Earn(points int, orderID uuid.UUID) (*Transaction, error) {
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Earned points must be positive")
	}
	c.LoyaltyPoints += points
	c.UpdatedAt = time.Now()
	return c.newTransaction(TransactionTypeEarned, points, &orderID, fmt.Sprintf("Earned on order %s", orderID)), nil
}

// Redeem debits points used as an order discount
func (c *Customer) Redeem(points int, orderID uuid.UUID) (*Transaction, error) {
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Redeemed points must be positive")
	}
	if points > c.LoyaltyPoints {
		return nil, ErrInsufficientPoints
	}
	c.LoyaltyPoints -= points
	c.UpdatedAt = time.Now()
	return c.newTransaction(TransactionTypeRedeemed, -points, &orderID, fmt.Sprintf("Redeemed on order %s", orderID)), nil
}

// Adjust applies a signed change floored at zero. It returns nil when the
// balance did not move.
func (c *Customer) Adjust(delta int, orderID *uuid.UUID, description string) *Transaction {
	next := c.LoyaltyPoints + delta
	if next < 0 {
		next = 0
	}
	applied := next - c.LoyaltyPoints
	if applied == 0 {
		return nil
	}
	c.LoyaltyPoints = next
	c.UpdatedAt = time.Now()
	return c.newTransaction(TransactionTypeAdjusted, applied, orderID, description)
}

func (c *Customer) newTransaction(t TransactionType, points int, orderID *uuid.UUID, description string) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		TenantID:     c.TenantID,
		CustomerID:   c.ID,
		OrderID:      orderID,
		Type:         t,
		Points:       points,
		BalanceAfter: c.LoyaltyPoints,
		Description:  description,
		CreatedAt:    time.Now(),
	}
}
