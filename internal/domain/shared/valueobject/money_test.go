package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"-2.345", "-2.35"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestAllocate(t *testing.T) {
	t.Run("distributes remainder cents to first parts", func(t *testing.T) {
		parts, err := Allocate(decimal.RequireFromString("100"), 3)
		require.NoError(t, err)
		require.Len(t, parts, 3)
		assert.Equal(t, "33.34", parts[0].StringFixed(2))
		assert.Equal(t, "33.33", parts[1].StringFixed(2))
		assert.Equal(t, "33.33", parts[2].StringFixed(2))
		assert.True(t, Sum(parts...).Equal(decimal.NewFromInt(100)))
	})

	t.Run("single part returns whole", func(t *testing.T) {
		parts, err := Allocate(decimal.RequireFromString("12.5"), 1)
		require.NoError(t, err)
		assert.Equal(t, "12.50", parts[0].StringFixed(2))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := Allocate(decimal.NewFromInt(10), 0)
		assert.Error(t, err)
	})
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(decimal.RequireFromString("10.00"), decimal.RequireFromString("9.99")))
	assert.False(t, WithinTolerance(decimal.RequireFromString("10.00"), decimal.RequireFromString("9.98")))
}

func TestNonNegativeAndPercentage(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-3)).IsZero())
	assert.True(t, Percentage(decimal.NewFromInt(10), decimal.NewFromInt(10)).Equal(decimal.NewFromInt(1)))
}
