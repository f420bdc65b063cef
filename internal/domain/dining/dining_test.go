package dining

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seatedTable(t *testing.T) (*Table, *TableSession) {
	t.Helper()
	table := NewTable(uuid.New(), uuid.New(), "12", 4)
	session, err := table.StartSession(uuid.New())
	require.NoError(t, err)
	return table, session
}

func guests(t *testing.T, s *TableSession, subtotals ...string) []TableGuest {
	t.Helper()
	out := make([]TableGuest, 0, len(subtotals))
	for i, st := range subtotals {
		g, err := JoinGuest(s, i, "")
		require.NoError(t, err)
		g.SetSubtotal(money(st))
		out = append(out, *g)
	}
	return out
}

func TestTable_StartAndEndSession(t *testing.T) {
	table, session := seatedTable(t)
	assert.Equal(t, TableStatusOccupied, table.Status)
	assert.Equal(t, session.ID, *table.CurrentSessionID)

	_, err := table.StartSession(uuid.New())
	assert.ErrorIs(t, err, ErrTableOccupied)

	table.SetTotal(money("88.00"))
	require.NoError(t, session.End(table))
	assert.Equal(t, TableStatusFree, table.Status)
	assert.Nil(t, table.CurrentSessionID)
	assert.True(t, table.TotalAmount.IsZero())
	assert.Equal(t, SessionStatusEnded, session.Status)

	assert.ErrorIs(t, session.End(table), ErrSessionEnded)
}

func TestTable_TransitionTo(t *testing.T) {
	table, _ := seatedTable(t)
	require.NoError(t, table.TransitionTo(TableStatusInProgress))
	require.NoError(t, table.TransitionTo(TableStatusAwaitingPayment))
	require.NoError(t, table.TransitionTo(TableStatusInProgress))
	require.NoError(t, table.TransitionTo(TableStatusAwaitingPayment))
	require.NoError(t, table.TransitionTo(TableStatusClosed))
	assert.Error(t, table.TransitionTo(TableStatusOccupied))
	require.NoError(t, table.TransitionTo(TableStatusFree))
	assert.Nil(t, table.CurrentSessionID)
}

func TestJoinGuest_SequentialNumbers(t *testing.T) {
	_, session := seatedTable(t)
	g1, err := JoinGuest(session, 0, "Ana")
	require.NoError(t, err)
	g2, err := JoinGuest(session, g1.GuestNumber, "Bruno")
	require.NoError(t, err)
	assert.Equal(t, 1, g1.GuestNumber)
	assert.Equal(t, 2, g2.GuestNumber)
	assert.NotEqual(t, g1.AccessToken, g2.AccessToken)
	assert.NotEmpty(t, g1.AccessToken)
}

func TestNewBillSplit(t *testing.T) {
	t.Run("equal split sums to amount", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "0", "0", "0")
		split, err := NewBillSplit(session, SplitRequest{Type: SplitTypeEqual, Amount: money("100"), Guests: gs})
		require.NoError(t, err)
		require.Len(t, split.Allocations, 3)
		assert.Equal(t, "33.34", split.Allocations[0].Amount.StringFixed(2))
		assert.True(t, split.AllocatedTotal().Equal(money("100")))
	})

	t.Run("per person weights by subtotal", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "30", "60")
		split, err := NewBillSplit(session, SplitRequest{Type: SplitTypePerPerson, Amount: money("99.00"), Guests: gs})
		require.NoError(t, err)
		assert.Equal(t, "33.00", split.Allocations[0].Amount.StringFixed(2))
		assert.Equal(t, "66.00", split.Allocations[1].Amount.StringFixed(2))
	})

	t.Run("per person absorbs rounding residue", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "10", "10", "10")
		split, err := NewBillSplit(session, SplitRequest{Type: SplitTypePerPerson, Amount: money("10.00"), Guests: gs})
		require.NoError(t, err)
		assert.True(t, split.AllocatedTotal().Equal(money("10")))
		assert.Equal(t, "3.34", split.Allocations[0].Amount.StringFixed(2))
	})

	t.Run("per person never goes negative", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "0", "1", "1")
		split, err := NewBillSplit(session, SplitRequest{Type: SplitTypePerPerson, Amount: money("0.05"), Guests: gs})
		require.NoError(t, err)
		for _, a := range split.Allocations {
			assert.False(t, a.Amount.IsNegative(), "allocation %s", a.Amount)
		}
		assert.True(t, split.Allocations[0].Amount.IsZero())
		assert.True(t, split.AllocatedTotal().Equal(money("0.05")))

		tiny := guests(t, session, "1", "1", "1", "1", "1", "1")
		split, err = NewBillSplit(session, SplitRequest{Type: SplitTypePerPerson, Amount: money("0.03"), Guests: tiny})
		require.NoError(t, err)
		for _, a := range split.Allocations {
			assert.False(t, a.Amount.IsNegative())
		}
		assert.True(t, split.AllocatedTotal().Equal(money("0.03")))
	})

	t.Run("custom must match balance", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "0", "0")
		_, err := NewBillSplit(session, SplitRequest{
			Type:          SplitTypeCustom,
			Amount:        money("50"),
			Guests:        gs,
			CustomAmounts: map[uuid.UUID]decimal.Decimal{gs[0].ID: money("20"), gs[1].ID: money("20")},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)

		split, err := NewBillSplit(session, SplitRequest{
			Type:          SplitTypeCustom,
			Amount:        money("50"),
			Guests:        gs,
			CustomAmounts: map[uuid.UUID]decimal.Decimal{gs[0].ID: money("20"), gs[1].ID: money("30")},
		})
		require.NoError(t, err)
		assert.Equal(t, "30.00", split.Allocations[1].Amount.StringFixed(2))
	})

	t.Run("guests that left are excluded", func(t *testing.T) {
		_, session := seatedTable(t)
		gs := guests(t, session, "0", "0")
		gs[1].Status = GuestStatusLeft
		split, err := NewBillSplit(session, SplitRequest{Type: SplitTypeEqual, Amount: money("40"), Guests: gs})
		require.NoError(t, err)
		require.Len(t, split.Allocations, 1)
		assert.Equal(t, "40.00", split.Allocations[0].Amount.StringFixed(2))
	})

	t.Run("no guests", func(t *testing.T) {
		_, session := seatedTable(t)
		_, err := NewBillSplit(session, SplitRequest{Type: SplitTypeEqual, Amount: money("40")})
		assert.ErrorIs(t, err, ErrNoGuests)
	})
}

func TestBillSplit_FinalizeAndPay(t *testing.T) {
	_, session := seatedTable(t)
	gs := guests(t, session, "0", "0")
	split, err := NewBillSplit(session, SplitRequest{Type: SplitTypeEqual, Amount: money("20"), Guests: gs})
	require.NoError(t, err)

	_, err = split.MarkAllocationPaid(gs[0].ID)
	assert.ErrorIs(t, err, ErrSplitNotFinalized)

	require.NoError(t, split.Finalize())
	assert.ErrorIs(t, split.Finalize(), ErrSplitFinalized)

	_, err = split.MarkAllocationPaid(gs[0].ID)
	require.NoError(t, err)
	assert.False(t, split.IsSettled())
	_, err = split.MarkAllocationPaid(gs[1].ID)
	require.NoError(t, err)
	assert.True(t, split.IsSettled())
}
