package finance_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type shiftFixture struct {
	ctx      context.Context
	fx       *testutil.Fixtures
	scope    unitofwork.TransactionScope
	service  *financeapp.ShiftService
	events   *testutil.RecordingPublisher
	register *finance.CashRegister
	operator uuid.UUID
}

func newShiftFixture(t *testing.T) *shiftFixture {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(db)
	scope := persistence.NewGormTransactionScope(db)
	events := testutil.NewRecordingPublisher()
	service := financeapp.NewShiftService(scope, zap.NewNop())
	service.SetEventPublisher(events)
	return &shiftFixture{
		ctx:      context.Background(),
		fx:       fx,
		scope:    scope,
		service:  service,
		events:   events,
		register: fx.CashRegister(t),
		operator: uuid.New(),
	}
}

func (f *shiftFixture) open(t *testing.T, opening string) *financeapp.ShiftResponse {
	t.Helper()
	shift, err := f.service.OpenShift(f.ctx, f.fx.TenantID, financeapp.OpenShiftRequest{
		CashRegisterID: f.register.ID,
		OpeningAmount:  decimal.RequireFromString(opening),
		OperatorID:     f.operator,
	})
	require.NoError(t, err)
	return shift
}

func (f *shiftFixture) movement(t *testing.T, shiftID uuid.UUID, txType, amount string) *financeapp.TransactionResponse {
	t.Helper()
	tx, err := f.service.RecordCashMovement(f.ctx, f.fx.TenantID, shiftID, financeapp.CashMovementRequest{
		Type:        txType,
		Amount:      decimal.RequireFromString(amount),
		Description: txType + " " + amount,
		RecordedBy:  f.operator,
	})
	require.NoError(t, err)
	return tx
}

func TestShiftService_OpenBooksFloat(t *testing.T) {
	f := newShiftFixture(t)

	shift := f.open(t, "100")
	assert.Equal(t, "open", shift.Status)
	assert.Equal(t, f.fx.BranchID, shift.BranchID)
	assert.True(t, decimal.NewFromInt(100).Equal(shift.OpeningAmount))
	assert.True(t, decimal.NewFromInt(100).Equal(f.fx.RegisterBalance(t, f.register.ID)))

	var rows []models.FinancialTransactionModel
	require.NoError(t, f.fx.DB.Where("shift_id = ?", shift.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, finance.TransactionTypeAdjustment, rows[0].Type)
	assert.Equal(t, finance.PaymentMethodCash, rows[0].PaymentMethod)

	_, err := f.service.OpenShift(f.ctx, f.fx.TenantID, financeapp.OpenShiftRequest{
		CashRegisterID: f.register.ID,
		OpeningAmount:  decimal.NewFromInt(10),
		OperatorID:     f.operator,
	})
	assert.ErrorIs(t, err, finance.ErrShiftAlreadyOpen)
	assert.Equal(t, 1, f.events.Count(finance.EventTypeShiftOpened))
}

func TestShiftService_CloseReconcilesCash(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.open(t, "100")

	f.movement(t, shift.ID, "adjustment", "50")
	expense := f.movement(t, shift.ID, "expense", "20")
	require.NotNil(t, expense.CategoryID)
	assert.True(t, decimal.NewFromInt(130).Equal(f.fx.RegisterBalance(t, f.register.ID)))

	// card revenue is tagged with the shift but never reaches the drawer
	err := f.scope.Execute(f.ctx, func(repos unitofwork.Repositories) error {
		category, err := financeapp.ResolveCategory(f.ctx, repos, f.fx.TenantID, finance.CategoryNameSales, finance.CategoryKindRevenue)
		if err != nil {
			return err
		}
		posting, err := financeapp.PostToOpenShift(f.ctx, repos, f.fx.TenantID, finance.NewTransactionInput{
			BranchID:      f.fx.BranchID,
			Type:          finance.TransactionTypeRevenue,
			Amount:        decimal.NewFromInt(40),
			Description:   "card sale",
			PaymentMethod: "credit_card",
			RecordedBy:    uuid.New(),
			CategoryID:    &category.ID,
		})
		if err != nil {
			return err
		}
		require.NotNil(t, posting.Shift)
		assert.Equal(t, shift.ID, posting.Shift.ID)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(130).Equal(f.fx.RegisterBalance(t, f.register.ID)))

	closed, err := f.service.CloseShift(f.ctx, f.fx.TenantID, shift.ID, financeapp.CloseShiftRequest{
		CountedAmount: decimal.NewFromInt(135),
		Notes:         "tip jar mixed in",
		ClosedBy:      f.operator,
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)
	require.NotNil(t, closed.ClosingAmountExpected)
	require.NotNil(t, closed.Discrepancy)
	assert.True(t, decimal.NewFromInt(130).Equal(*closed.ClosingAmountExpected))
	assert.True(t, decimal.NewFromInt(5).Equal(*closed.Discrepancy))
	assert.True(t, decimal.NewFromInt(150).Equal(closed.TotalAdjustment))
	assert.True(t, decimal.NewFromInt(20).Equal(closed.TotalExpense))
	assert.True(t, closed.TotalRevenue.IsZero())
	assert.NotNil(t, closed.ClosedAt)

	_, err = f.service.CloseShift(f.ctx, f.fx.TenantID, shift.ID, financeapp.CloseShiftRequest{CountedAmount: decimal.Zero})
	assert.ErrorIs(t, err, finance.ErrShiftNotOpen)
	_, err = f.service.RecordCashMovement(f.ctx, f.fx.TenantID, shift.ID, financeapp.CashMovementRequest{
		Type:        "expense",
		Amount:      decimal.NewFromInt(1),
		Description: "late",
		RecordedBy:  f.operator,
	})
	assert.ErrorIs(t, err, finance.ErrShiftNotOpen)

	reloaded, err := f.service.GetShift(f.ctx, f.fx.TenantID, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", reloaded.Status)
	assert.Equal(t, 1, f.events.Count(finance.EventTypeShiftClosed))

	// the register is free for the next shift
	f.open(t, "0")
}

func TestShiftService_CashMovementValidation(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.open(t, "0")
	assert.True(t, f.fx.RegisterBalance(t, f.register.ID).IsZero(), "a zero float books nothing")

	_, err := f.service.RecordCashMovement(f.ctx, f.fx.TenantID, shift.ID, financeapp.CashMovementRequest{
		Type:        "revenue",
		Amount:      decimal.NewFromInt(5),
		Description: "sneaky",
		RecordedBy:  f.operator,
	})
	assert.Error(t, err)

	_, err = f.service.RecordCashMovement(f.ctx, f.fx.TenantID, shift.ID, financeapp.CashMovementRequest{
		Type:        "expense",
		Amount:      decimal.Zero,
		Description: "nothing",
		RecordedBy:  f.operator,
	})
	assert.Error(t, err)

	tx := f.movement(t, shift.ID, "expense", "12.50")
	assert.Equal(t, "expense", tx.Type)
	assert.True(t, decimal.RequireFromString("-12.50").Equal(f.fx.RegisterBalance(t, f.register.ID)))
}
