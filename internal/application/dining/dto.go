package dining

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/shopspring/decimal"
)

// StartSessionRequest seats a party at a free table
type StartSessionRequest struct {
	CustomerName string    `json:"customer_name" binding:"max=100"`
	GuestCount   int       `json:"guest_count" binding:"gte=0,lte=100"`
	OpenedBy     uuid.UUID `json:"-"`
}

// JoinGuestRequest adds a guest to a session
type JoinGuestRequest struct {
	Name string `json:"name" binding:"max=100"`
}

// ReassignItemRequest moves an order item to a guest. A nil guest unassigns it.
type ReassignItemRequest struct {
	ToGuestID *uuid.UUID `json:"to_guest_id"`
	ActorID   uuid.UUID  `json:"-"`
}

// CreateSplitRequest proposes a division of the outstanding balance
type CreateSplitRequest struct {
	Type string `json:"type" binding:"required,oneof=equal per_person custom"`
	// CustomAmounts maps guest IDs to amounts for custom splits
	CustomAmounts map[uuid.UUID]decimal.Decimal `json:"custom_amounts"`
	CreatedBy     uuid.UUID                     `json:"-"`
}

// UpdateTableStatusRequest moves a table along its status machine
type UpdateTableStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=free occupied in_progress awaiting_payment closed"`
}

// SessionResponse represents a table session in API responses
type SessionResponse struct {
	ID               uuid.UUID       `json:"id"`
	TableID          uuid.UUID       `json:"table_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	Status           string          `json:"status"`
	CustomerName     string          `json:"customer_name,omitempty"`
	GuestCount       int             `json:"guest_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	StartedAt        time.Time       `json:"started_at"`
	EndedAt          *time.Time      `json:"ended_at,omitempty"`
}

// TableResponse represents a table in API responses
type TableResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	Status           string          `json:"status"`
	CurrentSessionID *uuid.UUID      `json:"current_session_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// TableTotalResponse is the result of recalculating a table's total
type TableTotalResponse struct {
	TableID     uuid.UUID       `json:"table_id"`
	SessionID   *uuid.UUID      `json:"session_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// GuestResponse represents a guest in API responses
type GuestResponse struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   uuid.UUID       `json:"session_id"`
	GuestNumber int             `json:"guest_number"`
	Name        string          `json:"name,omitempty"`
	Status      string          `json:"status"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	JoinedAt    time.Time       `json:"joined_at"`
}

// GuestJoinResponse also carries the guest's access token, shown once
type GuestJoinResponse struct {
	GuestResponse
	AccessToken string `json:"access_token"`
}

// AllocationResponse is one guest's share of a split
type AllocationResponse struct {
	GuestID uuid.UUID       `json:"guest_id"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
}

// SplitResponse represents a bill split in API responses
type SplitResponse struct {
	ID          uuid.UUID            `json:"id"`
	SessionID   uuid.UUID            `json:"session_id"`
	SplitType   string               `json:"split_type"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	IsFinalized bool                 `json:"is_finalized"`
	FinalizedAt *time.Time           `json:"finalized_at,omitempty"`
	Allocations []AllocationResponse `json:"allocations"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ReassignResponse describes a completed reassignment
type ReassignResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderItemID uuid.UUID       `json:"order_item_id"`
	FromGuestID *uuid.UUID      `json:"from_guest_id,omitempty"`
	ToGuestID   *uuid.UUID      `json:"to_guest_id,omitempty"`
	Guests      []GuestResponse `json:"guests"`
}

// SessionSummaryResponse is the full bill view of a session
type SessionSummaryResponse struct {
	Session         SessionResponse `json:"session"`
	Guests          []GuestResponse `json:"guests"`
	Splits          []SplitResponse `json:"splits"`
	OrderCount      int             `json:"order_count"`
	ItemsSubtotal   decimal.Decimal `json:"items_subtotal"`
	UnassignedTotal decimal.Decimal `json:"unassigned_total"`
}

// ToSessionResponse converts a domain session to a response DTO
func ToSessionResponse(s *dining.TableSession) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		TableID:          s.TableID,
		BranchID:         s.BranchID,
		Status:           string(s.Status),
		CustomerName:     s.CustomerName,
		GuestCount:       s.GuestCount,
		TotalAmount:      s.TotalAmount,
		PaidAmount:       s.PaidAmount,
		RemainingBalance: s.RemainingBalance(),
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
	}
}

// ToTableResponse converts a domain table to a response DTO
func ToTableResponse(t *dining.Table) TableResponse {
	return TableResponse{
		ID:               t.ID,
		Number:           t.Number,
		Status:           string(t.Status),
		CurrentSessionID: t.CurrentSessionID,
		TotalAmount:      t.TotalAmount,
	}
}

// ToGuestResponse converts a domain guest to a response DTO
func ToGuestResponse(g *dining.TableGuest) GuestResponse {
	return GuestResponse{
		ID:          g.ID,
		SessionID:   g.SessionID,
		GuestNumber: g.GuestNumber,
		Name:        g.Name,
		Status:      string(g.Status),
		Subtotal:    g.Subtotal,
		JoinedAt:    g.JoinedAt,
	}
}

// ToSplitResponse converts a domain split to a response DTO
func ToSplitResponse(s *dining.TableBillSplit) SplitResponse {
	allocs := make([]AllocationResponse, len(s.Allocations))
	for i, a := range s.Allocations {
		allocs[i] = AllocationResponse{GuestID: a.GuestID, Amount: a.Amount, Paid: a.Paid, PaidAt: a.PaidAt}
	}
	return SplitResponse{
		ID:          s.ID,
		SessionID:   s.SessionID,
		SplitType:   string(s.SplitType),
		TotalAmount: s.TotalAmount,
		IsFinalized: s.IsFinalized,
		FinalizedAt: s.FinalizedAt,
		Allocations: allocs,
		CreatedAt:   s.CreatedAt,
	}
}
