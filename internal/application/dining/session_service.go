package dining

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const defaultGuestJoinURL = "http://localhost:3000/join"

// TableSessionService manages table sessions, guests and bill splits
type TableSessionService struct {
	txScope        unitofwork.TransactionScope
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	guestJoinURL   string
}

// NewTableSessionService creates a new TableSessionService
func NewTableSessionService(txScope unitofwork.TransactionScope, logger *zap.Logger) *TableSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableSessionService{txScope: txScope, logger: logger, guestJoinURL: defaultGuestJoinURL}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TableSessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetGuestJoinURL sets the page guest QR codes point to
func (s *TableSessionService) SetGuestJoinURL(joinURL string) {
	if joinURL != "" {
		s.guestJoinURL = joinURL
	}
}

// StartSession seats a party at a free table
func (s *TableSessionService) StartSession(ctx context.Context, tenantID, tableID uuid.UUID, req StartSessionRequest) (*SessionResponse, error) {
	var (
		session *dining.TableSession
		events  unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		session, err = StartSessionAt(ctx, repos, tenantID, tableID, req.OpenedBy)
		if err != nil {
			return err
		}
		if err := session.Seat(req.CustomerName, req.GuestCount); err != nil {
			return err
		}
		if err := repos.Sessions().Save(ctx, session); err != nil {
			return err
		}
		events.Collect(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("Table session started",
		zap.String("tenant_id", tenantID.String()),
		zap.String("table_id", tableID.String()),
		zap.String("session_id", session.ID.String()),
	)
	resp := ToSessionResponse(session)
	return &resp, nil
}

// StartSessionAt locks a free table and opens a session on it
func StartSessionAt(ctx context.Context, repos unitofwork.Repositories, tenantID, tableID, openedBy uuid.UUID) (*dining.TableSession, error) {
	table, err := repos.Tables().FindByIDForUpdate(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	session, err := table.StartSession(openedBy)
	if err != nil {
		return nil, err
	}
	if err := repos.Sessions().Save(ctx, session); err != nil {
		return nil, err
	}
	if err := repos.Tables().Save(ctx, table); err != nil {
		return nil, err
	}
	return session, nil
}

// SessionForNewOrder returns the table's active session, opening one when the
// table is free. The table row is only locked when a session is opened; the
// lookup is repeated under the lock so concurrent first orders share one session.
func SessionForNewOrder(ctx context.Context, repos unitofwork.Repositories, tenantID, tableID, actor uuid.UUID) (*dining.TableSession, error) {
	table, err := repos.Tables().FindByID(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if session, err := activeSession(ctx, repos, tenantID, table); session != nil || err != nil {
		return session, err
	}

	table, err = repos.Tables().FindByIDForUpdate(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if session, err := activeSession(ctx, repos, tenantID, table); session != nil || err != nil {
		return session, err
	}
	return StartSessionAt(ctx, repos, tenantID, tableID, actor)
}

func activeSession(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, table *dining.Table) (*dining.TableSession, error) {
	if table.CurrentSessionID == nil {
		return nil, nil
	}
	session, err := repos.Sessions().FindByID(ctx, tenantID, *table.CurrentSessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, nil
	}
	return session, nil
}

// AdvanceTableForOrder moves a seated table to in_progress once something is ordered
func AdvanceTableForOrder(ctx context.Context, repos unitofwork.Repositories, tenantID, sessionID uuid.UUID) error {
	session, err := repos.Sessions().FindByIDForUpdate(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive() {
		return dining.ErrSessionEnded
	}
	table, err := repos.Tables().FindByIDForUpdate(ctx, tenantID, session.TableID)
	if err != nil {
		return err
	}
	if table.Status != dining.TableStatusOccupied && table.Status != dining.TableStatusAwaitingPayment {
		return nil
	}
	if err := table.TransitionTo(dining.TableStatusInProgress); err != nil {
		return err
	}
	return repos.Tables().Save(ctx, table)
}

// CalculateTableTotal sums the non-cancelled orders of the table's current
// session into both the session and the table.
func (s *TableSessionService) CalculateTableTotal(ctx context.Context, tenantID, tableID uuid.UUID) (*TableTotalResponse, error) {
	resp := &TableTotalResponse{TableID: tableID, TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		table, err := repos.Tables().FindByID(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		if table.CurrentSessionID == nil {
			return nil
		}
		session, err := RefreshSessionTotals(ctx, repos, tenantID, *table.CurrentSessionID)
		if err != nil {
			return err
		}
		resp.SessionID = &session.ID
		resp.TotalAmount = session.TotalAmount
		resp.PaidAmount = session.PaidAmount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// JoinGuest seats the next guest number in the session
func (s *TableSessionService) JoinGuest(ctx context.Context, tenantID, sessionID uuid.UUID, req JoinGuestRequest) (*GuestJoinResponse, error) {
	var (
		guest  *dining.TableGuest
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		session, err := repos.Sessions().FindByIDForUpdate(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		last, err := repos.Guests().MaxGuestNumber(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		guest, err = dining.JoinGuest(session, last, req.Name)
		if err != nil {
			return err
		}
		if err := repos.Guests().Save(ctx, guest); err != nil {
			return err
		}
		if guest.GuestNumber > session.GuestCount {
			session.GuestCount = guest.GuestNumber
		}
		if err := repos.Sessions().Save(ctx, session); err != nil {
			return err
		}
		events.Collect(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	return &GuestJoinResponse{GuestResponse: ToGuestResponse(guest), AccessToken: guest.AccessToken}, nil
}

// RecalculateGuestTotal refreshes one guest's subtotal
func (s *TableSessionService) RecalculateGuestTotal(ctx context.Context, tenantID, guestID uuid.UUID) (*GuestResponse, error) {
	var guest *dining.TableGuest
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		guest, err = RefreshGuestSubtotal(ctx, repos, tenantID, guestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToGuestResponse(guest)
	return &resp, nil
}

// ReassignOrderItem moves an item between guests of the same session and
// writes an audit row. Served, paid and cancelled orders are locked.
func (s *TableSessionService) ReassignOrderItem(ctx context.Context, tenantID, itemID uuid.UUID, req ReassignItemRequest) (*ReassignResponse, error) {
	var (
		resp   *ReassignResponse
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		order, err := repos.Orders().FindByItemIDForUpdate(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		if order.TableSessionID == nil {
			return shared.NewDomainError("NOT_A_TABLE_ORDER", "Only table orders have guests")
		}
		if req.ToGuestID != nil {
			target, err := repos.Guests().FindByID(ctx, tenantID, *req.ToGuestID)
			if err != nil {
				return err
			}
			if target.SessionID != *order.TableSessionID {
				return shared.NewDomainError("INVALID_GUEST", "Guest is not seated in this order's session")
			}
			if !target.IsSeated() {
				return shared.NewDomainError("INVALID_GUEST", "Guest has left the table")
			}
		}

		item, from, err := order.ReassignItem(itemID, req.ToGuestID)
		if err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}

		log := &dining.OrderItemAuditLog{
			ID:          uuid.New(),
			TenantID:    tenantID,
			SessionID:   order.TableSessionID,
			OrderID:     order.ID,
			OrderItemID: item.ID,
			Action:      dining.AuditActionReassign,
			FromGuestID: from,
			ToGuestID:   req.ToGuestID,
			ActorID:     req.ActorID,
			ItemName:    item.Name,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
			CreatedAt:   item.UpdatedAt,
		}
		if err := repos.AuditLogs().Create(ctx, log); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}

		resp = &ReassignResponse{OrderID: order.ID, OrderItemID: item.ID, FromGuestID: from, ToGuestID: req.ToGuestID}
		for _, id := range []*uuid.UUID{from, req.ToGuestID} {
			if id == nil {
				continue
			}
			g, err := RefreshGuestSubtotal(ctx, repos, tenantID, *id)
			if err != nil {
				return err
			}
			resp.Guests = append(resp.Guests, ToGuestResponse(g))
		}
		events.Add(dining.NewOrderItemReassignedEvent(tenantID, *order.TableSessionID, log))
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return resp, nil
}

// CreateBillSplit proposes a split of the session's outstanding balance.
// It replaces an earlier unfinalized proposal and refuses while a finalized
// split is still being paid.
func (s *TableSessionService) CreateBillSplit(ctx context.Context, tenantID, sessionID uuid.UUID, req CreateSplitRequest) (*SplitResponse, error) {
	var split *dining.TableBillSplit
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		session, err := RefreshSessionTotals(ctx, repos, tenantID, sessionID)
		if err != nil {
			return err
		}
		existing, err := repos.Splits().FindBySession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].IsFinalized && !existing[i].IsSettled() {
				return dining.ErrSplitFinalized
			}
			if !existing[i].IsFinalized {
				if err := repos.Splits().Delete(ctx, tenantID, existing[i].ID); err != nil {
					return err
				}
			}
		}

		guests, err := repos.Guests().FindBySession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		for i := range guests {
			g, err := RefreshGuestSubtotal(ctx, repos, tenantID, guests[i].ID)
			if err != nil {
				return err
			}
			guests[i] = *g
		}

		split, err = dining.NewBillSplit(session, dining.SplitRequest{
			Type:          dining.SplitType(req.Type),
			Amount:        session.RemainingBalance(),
			Guests:        guests,
			CustomAmounts: req.CustomAmounts,
			CreatedBy:     req.CreatedBy,
		})
		if err != nil {
			return err
		}
		return repos.Splits().Save(ctx, split)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSplitResponse(split)
	return &resp, nil
}

// FinalizeBillSplit freezes a split's allocations
func (s *TableSessionService) FinalizeBillSplit(ctx context.Context, tenantID, splitID uuid.UUID) (*SplitResponse, error) {
	var (
		split  *dining.TableBillSplit
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		split, err = repos.Splits().FindByIDForUpdate(ctx, tenantID, splitID)
		if err != nil {
			return err
		}
		if err := split.Finalize(); err != nil {
			return err
		}
		if err := repos.Splits().Save(ctx, split); err != nil {
			return err
		}
		events.Add(dining.NewBillSplitFinalizedEvent(split))
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	resp := ToSplitResponse(split)
	return &resp, nil
}

// MarkAllocationPaid settles one guest's share and marks the guest paid
func (s *TableSessionService) MarkAllocationPaid(ctx context.Context, tenantID, splitID, guestID uuid.UUID) (*SplitResponse, error) {
	var split *dining.TableBillSplit
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		split, err = repos.Splits().FindByIDForUpdate(ctx, tenantID, splitID)
		if err != nil {
			return err
		}
		if _, err := split.MarkAllocationPaid(guestID); err != nil {
			return err
		}
		if err := repos.Splits().Save(ctx, split); err != nil {
			return err
		}
		guest, err := repos.Guests().FindByID(ctx, tenantID, guestID)
		if err != nil {
			return err
		}
		guest.MarkPaid()
		return repos.Guests().Save(ctx, guest)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSplitResponse(split)
	return &resp, nil
}

// EndSession closes the session and frees its table
func (s *TableSessionService) EndSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	var (
		session *dining.TableSession
		events  unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		session, err = endSession(ctx, repos, tenantID, sessionID)
		if err != nil {
			return err
		}
		events.Collect(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("Table session ended",
		zap.String("tenant_id", tenantID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("total", session.TotalAmount.StringFixed(2)),
		zap.String("paid", session.PaidAmount.StringFixed(2)),
	)
	resp := ToSessionResponse(session)
	return &resp, nil
}

func endSession(ctx context.Context, repos unitofwork.Repositories, tenantID, sessionID uuid.UUID) (*dining.TableSession, error) {
	session, err := RefreshSessionTotals(ctx, repos, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	table, err := repos.Tables().FindByIDForUpdate(ctx, tenantID, session.TableID)
	if err != nil {
		return nil, err
	}
	if err := session.End(table); err != nil {
		return nil, err
	}
	if err := repos.Sessions().Save(ctx, session); err != nil {
		return nil, err
	}
	if err := repos.Tables().Save(ctx, table); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateTableStatus moves a table along its status machine. Freeing a table
// that still has an active session ends that session.
func (s *TableSessionService) UpdateTableStatus(ctx context.Context, tenantID, tableID uuid.UUID, req UpdateTableStatusRequest) (*TableResponse, error) {
	target := dining.TableStatus(req.Status)
	var (
		table  *dining.Table
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		current, err := repos.Tables().FindByID(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		if target == dining.TableStatusFree && current.CurrentSessionID != nil && current.Status == dining.TableStatusClosed {
			session, err := endSession(ctx, repos, tenantID, *current.CurrentSessionID)
			switch {
			case err == nil:
				events.Collect(session)
			case !errors.Is(err, dining.ErrSessionEnded):
				return err
			}
		}

		table, err = repos.Tables().FindByIDForUpdate(ctx, tenantID, tableID)
		if err != nil {
			return err
		}
		if err := table.TransitionTo(target); err != nil {
			return err
		}
		return repos.Tables().Save(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	resp := ToTableResponse(table)
	return &resp, nil
}

// GetSessionSummary returns the bill view of a session
func (s *TableSessionService) GetSessionSummary(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionSummaryResponse, error) {
	var resp *SessionSummaryResponse
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		session, err := repos.Sessions().FindByID(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		guests, err := repos.Guests().FindBySession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		splits, err := repos.Splits().FindBySession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		orders, err := repos.Orders().FindBySession(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}

		resp = &SessionSummaryResponse{
			Session:         ToSessionResponse(session),
			Guests:          make([]GuestResponse, len(guests)),
			Splits:          make([]SplitResponse, len(splits)),
			ItemsSubtotal:   decimal.Zero,
			UnassignedTotal: decimal.Zero,
		}
		for i := range guests {
			resp.Guests[i] = ToGuestResponse(&guests[i])
		}
		for i := range splits {
			resp.Splits[i] = ToSplitResponse(&splits[i])
		}
		for i := range orders {
			if orders[i].IsCancelled() {
				continue
			}
			resp.OrderCount++
			for _, item := range orders[i].Items {
				resp.ItemsSubtotal = resp.ItemsSubtotal.Add(item.LineTotal)
				if item.GuestID == nil {
					resp.UnassignedTotal = resp.UnassignedTotal.Add(item.LineTotal)
				}
			}
		}
		resp.ItemsSubtotal = valueobject.RoundMoney(resp.ItemsSubtotal)
		resp.UnassignedTotal = valueobject.RoundMoney(resp.UnassignedTotal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GuestQRCode renders a PNG QR code with the guest's join link
func (s *TableSessionService) GuestQRCode(ctx context.Context, tenantID, sessionID, guestID uuid.UUID, size int) ([]byte, error) {
	var guest *dining.TableGuest
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		guest, err = repos.Guests().FindByID(ctx, tenantID, guestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if guest.SessionID != sessionID {
		return nil, shared.ErrNotFound
	}
	if size <= 0 {
		size = 256
	}

	link, err := url.Parse(s.guestJoinURL)
	if err != nil {
		return nil, fmt.Errorf("parse guest join url: %w", err)
	}
	q := link.Query()
	q.Set("session", sessionID.String())
	q.Set("token", guest.AccessToken)
	link.RawQuery = q.Encode()

	png, err := qrcode.Encode(link.String(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode guest qr code: %w", err)
	}
	return png, nil
}
