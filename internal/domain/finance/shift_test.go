package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func cashTx(t *testing.T, typ TransactionType, amount string) FinancialTransaction {
	t.Helper()
	tx, err := NewFinancialTransaction(uuid.New(), NewTransactionInput{
		Type: typ, Amount: amt(amount), PaymentMethod: PaymentMethodCash, RecordedBy: uuid.New(),
	})
	require.NoError(t, err)
	return *tx
}

func TestShift_Close(t *testing.T) {
	register := NewCashRegister(uuid.New(), uuid.New(), "Caixa 1")
	shift, err := OpenShift(register, uuid.New(), amt("100"))
	require.NoError(t, err)

	card, err := NewFinancialTransaction(register.TenantID, NewTransactionInput{
		Type: TransactionTypeRevenue, Amount: amt("70"), PaymentMethod: "credit_card", RecordedBy: uuid.New(),
	})
	require.NoError(t, err)

	txns := []FinancialTransaction{
		cashTx(t, TransactionTypeAdjustment, "100"),
		cashTx(t, TransactionTypeRevenue, "50"),
		cashTx(t, TransactionTypeExpense, "20"),
		*card,
	}
	require.NoError(t, shift.Close(txns, amt("135"), "end of day"))

	assert.Equal(t, ShiftStatusClosed, shift.Status)
	assert.Equal(t, "130.00", shift.ClosingAmountExpected.StringFixed(2))
	assert.Equal(t, "135.00", shift.ClosingAmountCounted.StringFixed(2))
	assert.Equal(t, "5.00", shift.Discrepancy.StringFixed(2))
	assert.Equal(t, "50.00", shift.TotalRevenue.StringFixed(2))
	assert.NotNil(t, shift.ClosedAt)

	err = shift.Close(txns, amt("135"), "")
	assert.ErrorIs(t, err, ErrShiftNotOpen)
}

func TestOpenShift_Validation(t *testing.T) {
	register := NewCashRegister(uuid.New(), uuid.New(), "Caixa 2")
	_, err := OpenShift(register, uuid.New(), amt("-1"))
	assert.Error(t, err)

	register.IsActive = false
	_, err = OpenShift(register, uuid.New(), amt("10"))
	assert.ErrorIs(t, err, ErrRegisterInactive)
}

func TestCashRegister_Book(t *testing.T) {
	register := NewCashRegister(uuid.New(), uuid.New(), "Caixa 3")
	in := cashTx(t, TransactionTypeRevenue, "40")
	out := cashTx(t, TransactionTypeExpense, "15.5")
	register.Book(&in)
	register.Book(&out)
	assert.Equal(t, "24.50", register.CurrentBalance.StringFixed(2))
}

func TestNewFinancialTransaction_RejectsNonPositive(t *testing.T) {
	_, err := NewFinancialTransaction(uuid.New(), NewTransactionInput{Type: TransactionTypeRevenue, Amount: decimal.Zero, RecordedBy: uuid.New()})
	assert.Error(t, err)
	_, err = NewFinancialTransaction(uuid.New(), NewTransactionInput{Type: "loan", Amount: amt("1"), RecordedBy: uuid.New()})
	assert.Error(t, err)
}

func TestCategoryCode(t *testing.T) {
	assert.Equal(t, "sales", CategoryCode(CategoryNameSales))
	assert.Equal(t, "refunds", CategoryCode(CategoryNameRefunds))
	assert.Equal(t, "despesas-com-fornecedor", CategoryCode("Despesas com Fornecedor"))
}
