package finance

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	categoryOpeningFloat = "Opening Float"
	categoryCashExpenses = "Cash Expenses"
)

// ShiftService opens, closes and books manual movements on cash shifts
type ShiftService struct {
	txScope         unitofwork.TransactionScope
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewShiftService creates a new ShiftService
func NewShiftService(txScope unitofwork.TransactionScope, logger *zap.Logger) *ShiftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{txScope: txScope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ShiftService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *ShiftService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// OpenShift starts a shift on a register that has none open and books the
// opening float as a cash adjustment.
func (s *ShiftService) OpenShift(ctx context.Context, tenantID uuid.UUID, req OpenShiftRequest) (*ShiftResponse, error) {
	var (
		shift  *finance.Shift
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		register, err := repos.CashRegisters().FindByIDForUpdate(ctx, tenantID, req.CashRegisterID)
		if err != nil {
			return err
		}
		existing, err := repos.Shifts().FindOpenByRegister(ctx, tenantID, register.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return finance.ErrShiftAlreadyOpen
		}

		shift, err = finance.OpenShift(register, req.OperatorID, req.OpeningAmount)
		if err != nil {
			return err
		}
		if err := repos.Shifts().Save(ctx, shift); err != nil {
			return err
		}

		if shift.OpeningAmount.IsPositive() {
			category, err := ResolveCategory(ctx, repos, tenantID, categoryOpeningFloat, finance.CategoryKindRevenue)
			if err != nil {
				return err
			}
			tx, err := finance.NewFinancialTransaction(tenantID, finance.NewTransactionInput{
				BranchID:       shift.BranchID,
				Type:           finance.TransactionTypeAdjustment,
				Amount:         shift.OpeningAmount,
				Description:    "Opening float",
				PaymentMethod:  finance.PaymentMethodCash,
				RecordedBy:     req.OperatorID,
				ShiftID:        &shift.ID,
				CashRegisterID: &register.ID,
				CategoryID:     &category.ID,
			})
			if err != nil {
				return err
			}
			if err := repos.FinancialTransactions().Create(ctx, tx); err != nil {
				return err
			}
			register.Book(tx)
			if err := repos.CashRegisters().Save(ctx, register); err != nil {
				return err
			}
		}
		events.Collect(shift)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("Shift opened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("shift_id", shift.ID.String()),
		zap.String("cash_register_id", shift.CashRegisterID.String()),
		zap.String("opening_amount", shift.OpeningAmount.StringFixed(2)),
	)
	resp := ToShiftResponse(shift)
	return &resp, nil
}

// CloseShift reconciles the shift's cash rows against the counted amount
func (s *ShiftService) CloseShift(ctx context.Context, tenantID, shiftID uuid.UUID, req CloseShiftRequest) (*ShiftResponse, error) {
	var (
		shift  *finance.Shift
		events unitofwork.EventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		shift, err = repos.Shifts().FindByIDForUpdate(ctx, tenantID, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return finance.ErrShiftNotOpen
		}
		txns, err := repos.FinancialTransactions().FindByShift(ctx, tenantID, shift.ID)
		if err != nil {
			return err
		}
		if err := shift.Close(txns, req.CountedAmount, req.Notes); err != nil {
			return err
		}
		if err := repos.Shifts().Save(ctx, shift); err != nil {
			return err
		}
		events.Collect(shift)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordShiftDiscrepancy(ctx, tenantID, *shift.Discrepancy)
	}
	s.logger.Info("Shift closed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("shift_id", shift.ID.String()),
		zap.String("expected", shift.ClosingAmountExpected.StringFixed(2)),
		zap.String("counted", shift.ClosingAmountCounted.StringFixed(2)),
		zap.String("discrepancy", shift.Discrepancy.StringFixed(2)),
	)
	resp := ToShiftResponse(shift)
	return &resp, nil
}

// RecordCashMovement books a manual cash expense or adjustment against an open shift
func (s *ShiftService) RecordCashMovement(ctx context.Context, tenantID, shiftID uuid.UUID, req CashMovementRequest) (*TransactionResponse, error) {
	txType := finance.TransactionType(req.Type)
	if txType != finance.TransactionTypeExpense && txType != finance.TransactionTypeAdjustment {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Manual cash movements are expenses or adjustments")
	}
	categoryName := strings.TrimSpace(req.CategoryName)
	if categoryName == "" {
		categoryName = categoryCashExpenses
	}
	kind := finance.CategoryKindExpense
	if txType == finance.TransactionTypeAdjustment {
		kind = finance.CategoryKindRevenue
	}

	var tx *finance.FinancialTransaction
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		shift, err := repos.Shifts().FindByIDForUpdate(ctx, tenantID, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return finance.ErrShiftNotOpen
		}
		category, err := ResolveCategory(ctx, repos, tenantID, categoryName, kind)
		if err != nil {
			return err
		}
		tx, err = finance.NewFinancialTransaction(tenantID, finance.NewTransactionInput{
			BranchID:       shift.BranchID,
			Type:           txType,
			Amount:         req.Amount,
			Description:    req.Description,
			PaymentMethod:  finance.PaymentMethodCash,
			RecordedBy:     req.RecordedBy,
			ShiftID:        &shift.ID,
			CashRegisterID: &shift.CashRegisterID,
			CategoryID:     &category.ID,
		})
		if err != nil {
			return err
		}
		if err := bookOnRegister(ctx, repos, tenantID, shift.CashRegisterID, tx); err != nil {
			return err
		}
		return repos.FinancialTransactions().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cash movement recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("shift_id", shiftID.String()),
		zap.String("type", req.Type),
		zap.String("amount", tx.Amount.StringFixed(2)),
	)
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GetShift returns one shift
func (s *ShiftService) GetShift(ctx context.Context, tenantID, shiftID uuid.UUID) (*ShiftResponse, error) {
	var shift *finance.Shift
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		shift, err = repos.Shifts().FindByID(ctx, tenantID, shiftID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToShiftResponse(shift)
	return &resp, nil
}
