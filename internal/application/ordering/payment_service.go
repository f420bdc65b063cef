package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	diningapp "github.com/restaurant/backend/internal/application/dining"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records payments and cancels orders together with every
// ledger row and cache those operations move.
type PaymentService struct {
	txScope         unitofwork.TransactionScope
	idempotency     shared.IdempotencyStore
	idemConfig      shared.IdempotencyConfig
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope unitofwork.TransactionScope, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		txScope:    txScope,
		idemConfig: shared.DefaultIdempotencyConfig(),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PaymentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetIdempotencyStore enables Idempotency-Key handling on RecordPayment
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// RecordPayment applies a payment, books the revenue row against the branch's
// open shift and, when the order becomes fully paid, updates the customer's
// loyalty history. Nothing is committed on error.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	details := req.Details()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	release, err := s.claim(ctx, tenantID, orderID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var (
		order  *ordering.Order
		resp   *PaymentResponse
		events unitofwork.EventBuffer
	)
	err = s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		result, err := order.RecordPayment(req.Amount, details)
		if err != nil {
			return err
		}

		category, err := financeapp.ResolveCategory(ctx, repos, tenantID, finance.CategoryNameSales, finance.CategoryKindRevenue)
		if err != nil {
			return err
		}
		posting, err := financeapp.PostToOpenShift(ctx, repos, tenantID, finance.NewTransactionInput{
			BranchID:      order.BranchID,
			Type:          finance.TransactionTypeRevenue,
			Amount:        result.Amount,
			Description:   fmt.Sprintf("Payment for order %s", order.OrderNumber),
			PaymentMethod: string(details.Method),
			Reference:     details.Reference(),
			RecordedBy:    req.RecordedBy,
			CategoryID:    &category.ID,
			OrderID:       &order.ID,
		})
		if err != nil {
			return err
		}

		points, err := creditCustomer(ctx, repos, tenantID, order)
		if err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if order.TableSessionID != nil {
			if _, err := diningapp.RefreshSessionTotals(ctx, repos, tenantID, *order.TableSessionID); err != nil {
				return err
			}
		}

		resp = &PaymentResponse{
			Amount:        result.Amount,
			Change:        result.Change,
			PaymentStatus: string(result.Status),
			TransactionID: posting.Transaction.ID,
			PointsEarned:  points,
		}
		if posting.Shift != nil {
			resp.ShiftID = &posting.Shift.ID
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, string(details.Method), resp.PaymentStatus, resp.Amount)
	}
	s.logger.Info("Payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("method", string(details.Method)),
		zap.String("amount", resp.Amount.StringFixed(2)),
		zap.String("paid", order.PaidAmount.StringFixed(2)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.String("payment_status", resp.PaymentStatus),
	)
	resp.Order = ToOrderResponse(order)
	return resp, nil
}

// creditCustomer brings the customer's history in line with a paid order.
// The first credit counts the visit and grants points unless the order
// already earned them; later credits only add the change in total, so an
// order edited after payment is never counted twice. It returns the points
// granted.
func creditCustomer(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, order *ordering.Order) (int, error) {
	due, owed := order.CustomerCreditDue()
	if !owed {
		return 0, nil
	}
	program, err := loadProgram(ctx, repos, tenantID)
	if err != nil {
		return 0, err
	}
	customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, *order.CustomerID)
	if err != nil {
		return 0, err
	}
	if order.MarkCustomerCredited(due) {
		customer.RecordPaidOrder(due, program)
	} else {
		customer.AddSpend(due, program)
	}

	points := 0
	if program != nil && order.LoyaltyPointsEarned == 0 {
		points = program.PointsFor(order.TotalAmount)
		if points > 0 {
			ledgerRow, err := customer.Earn(points, order.ID)
			if err != nil {
				return 0, err
			}
			if err := repos.LoyaltyTransactions().Create(ctx, ledgerRow); err != nil {
				return 0, err
			}
			order.StampLoyaltyEarned(points)
		}
	}
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return 0, err
	}
	return points, nil
}

// CancelOrder cancels an order and reverses everything it moved. The refund
// is booked as one expense per tender that paid for the order, stock deducted
// at serve time is restored and the customer's spend and points are rolled
// back.
func (s *PaymentService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest) (*CancellationResponse, error) {
	var (
		order  *ordering.Order
		resp   *CancellationResponse
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		guests := diningapp.GuestIDsOf(order)
		result, err := order.Cancel(req.CancelledBy, req.Reason)
		if err != nil {
			return err
		}
		resp = &CancellationResponse{RefundAmount: result.Refund}

		if result.Refund.IsPositive() {
			resp.RefundTransactionIDs, err = postRefund(ctx, repos, tenantID, order, result, req)
			if err != nil {
				return err
			}
		}

		if order.CustomerID != nil {
			resp.PointsAdjusted, err = reverseCustomer(ctx, repos, tenantID, order, result)
			if err != nil {
				return err
			}
		}

		if result.WasServed {
			actor := req.CancelledBy
			restored, err := inventoryapp.RestoreForOrder(ctx, repos, tenantID, order.ID, &actor)
			if err != nil {
				return err
			}
			resp.StockMovementsWritten = len(restored)
		}

		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if order.TableSessionID != nil {
			if _, err := diningapp.RefreshSessionTotals(ctx, repos, tenantID, *order.TableSessionID); err != nil {
				return err
			}
			if err := diningapp.RefreshGuestSubtotals(ctx, repos, tenantID, guests...); err != nil {
				return err
			}
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordCancellation(ctx, tenantID, resp.RefundAmount)
	}
	s.logger.Info("Order cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("refund", resp.RefundAmount.StringFixed(2)),
		zap.Int("stock_movements", resp.StockMovementsWritten),
		zap.Int("points_adjusted", resp.PointsAdjusted),
	)
	resp.Order = ToOrderResponse(order)
	return resp, nil
}

// postRefund books the refund under the tenders that paid for the order so
// the drawer only gives back the cash it took in.
func postRefund(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, order *ordering.Order,
	result ordering.CancellationResult, req CancelOrderRequest) ([]uuid.UUID, error) {
	category, err := financeapp.ResolveCategory(ctx, repos, tenantID, finance.CategoryNameRefunds, finance.CategoryKindExpense)
	if err != nil {
		return nil, err
	}
	revenue, err := repos.FinancialTransactions().FindByOrder(ctx, tenantID, order.ID)
	if err != nil {
		return nil, err
	}
	shares := finance.SplitRefund(revenue, result.Refund, string(result.PaymentMethod))
	ids := make([]uuid.UUID, 0, len(shares))
	for _, share := range shares {
		posting, err := financeapp.PostToOpenShift(ctx, repos, tenantID, finance.NewTransactionInput{
			BranchID:      order.BranchID,
			Type:          finance.TransactionTypeExpense,
			Amount:        share.Amount,
			Description:   fmt.Sprintf("Refund for cancelled order %s", order.OrderNumber),
			PaymentMethod: share.PaymentMethod,
			Reference:     req.Reason,
			RecordedBy:    req.CancelledBy,
			CategoryID:    &category.ID,
			OrderID:       &order.ID,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, posting.Transaction.ID)
	}
	return ids, nil
}

// reverseCustomer undoes the loyalty effects of a cancelled order. Spend and
// the visit come off exactly as they were credited, while earned points are
// taken back and redeemed points returned in one adjustment row.
func reverseCustomer(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, order *ordering.Order, result ordering.CancellationResult) (int, error) {
	if !result.CreditedCustomer() && result.PointsEarned == 0 && result.PointsRedeemed == 0 {
		return 0, nil
	}
	program, err := loadProgram(ctx, repos, tenantID)
	if err != nil {
		return 0, err
	}
	customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, *order.CustomerID)
	if err != nil {
		return 0, err
	}
	if result.CreditedCustomer() {
		customer.ReversePaidOrder(result.CustomerCredited, program)
	}

	applied := 0
	delta := result.PointsRedeemed - result.PointsEarned
	if ledgerRow := customer.Adjust(delta, &order.ID, fmt.Sprintf("Reversal for cancelled order %s", order.OrderNumber)); ledgerRow != nil {
		if err := repos.LoyaltyTransactions().Create(ctx, ledgerRow); err != nil {
			return 0, err
		}
		applied = ledgerRow.Points
	}
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return 0, err
	}
	return applied, nil
}

// claim reserves an idempotency key for the request. The returned release
// frees the key again when the payment does not commit.
func (s *PaymentService) claim(ctx context.Context, tenantID, orderID uuid.UUID, key string) (func(), error) {
	noop := func() {}
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return noop, nil
	}
	scoped := fmt.Sprintf("payment:%s:%s:%s", tenantID, orderID, key)
	claimed, err := s.idempotency.Claim(ctx, scoped, s.idemConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return nil, shared.ErrDuplicateRequest
	}
	return func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), scoped); err != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("key", scoped),
				zap.Error(err),
			)
		}
	}, nil
}
