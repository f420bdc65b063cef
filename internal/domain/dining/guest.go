package dining

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GuestStatus tracks a guest through the meal
type GuestStatus string

const (
	GuestStatusActive       GuestStatus = "active"
	GuestStatusAwaitingBill GuestStatus = "awaiting_bill"
	GuestStatusPaid         GuestStatus = "paid"
	GuestStatusLeft         GuestStatus = "left"
)

// TableGuest is a person seated in a session. Subtotal is derived from the
// items assigned to the guest.
type TableGuest struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SessionID   uuid.UUID
	GuestNumber int
	Name        string
	AccessToken string
	Status      GuestStatus
	Subtotal    decimal.Decimal
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

// JoinGuest seats the next guest number in an active session
func JoinGuest(session *TableSession, lastGuestNumber int, name string) (*TableGuest, error) {
	if !session.IsActive() {
		return nil, ErrSessionEnded
	}
	if lastGuestNumber < 0 {
		return nil, shared.NewDomainError("INVALID_GUEST_NUMBER", "Guest numbers cannot be negative")
	}
	now := time.Now()
	g := &TableGuest{
		ID:          uuid.New(),
		TenantID:    session.TenantID,
		SessionID:   session.ID,
		GuestNumber: lastGuestNumber + 1,
		Name:        name,
		AccessToken: rand.Text(),
		Status:      GuestStatusActive,
		Subtotal:    decimal.Zero,
		JoinedAt:    now,
		UpdatedAt:   now,
	}
	session.AddDomainEvent(NewGuestJoinedEvent(session, g))
	return g, nil
}

// SetSubtotal stores the recomputed subtotal
func (g *TableGuest) SetSubtotal(subtotal decimal.Decimal) {
	g.Subtotal = subtotal
	g.UpdatedAt = time.Now()
}

// MarkPaid settles the guest
func (g *TableGuest) MarkPaid() {
	g.Status = GuestStatusPaid
	g.UpdatedAt = time.Now()
}

// IsSeated reports whether the guest is still part of the bill
func (g *TableGuest) IsSeated() bool {
	return g.Status != GuestStatusLeft
}
