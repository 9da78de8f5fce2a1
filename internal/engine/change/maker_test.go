package change

import (
	"testing"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategies(t *testing.T) {
	tests := []struct {
		name        string
		strategy    Strategy
		deliverable int64
		want        []Item
	}{
		{
			name:        "greedy",
			strategy:    Greedy{},
			deliverable: 1380,
			want: []Item{
				{Denomination: 1000, Count: 1, Subtotal: 1000},
				{Denomination: 250, Count: 1, Subtotal: 250},
				{Denomination: 100, Count: 1, Subtotal: 100},
				{Denomination: 25, Count: 1, Subtotal: 25},
				{Denomination: 5, Count: 1, Subtotal: 5},
			},
		},
		{
			name:        "avoid awkward remainder holds back a 100",
			strategy:    AvoidAwkwardRemainder{},
			deliverable: 1110,
			want: []Item{
				{Denomination: 1000, Count: 1, Subtotal: 1000},
				{Denomination: 50, Count: 2, Subtotal: 100},
				{Denomination: 10, Count: 1, Subtotal: 10},
			},
		},
		{
			name:        "avoid awkward remainder keeps exact large notes",
			strategy:    AvoidAwkwardRemainder{},
			deliverable: 2000,
			want:        []Item{{Denomination: 1000, Count: 2, Subtotal: 2000}},
		},
		{
			name:        "prefer mid notes swaps half of the thousands",
			strategy:    PreferMidNotes{},
			deliverable: 3750,
			want: []Item{
				{Denomination: 1000, Count: 2, Subtotal: 2000},
				{Denomination: 500, Count: 3, Subtotal: 1500},
				{Denomination: 250, Count: 1, Subtotal: 250},
			},
		},
		{
			name:        "prefer mid notes with a single thousand",
			strategy:    PreferMidNotes{},
			deliverable: 1005,
			want: []Item{
				{Denomination: 1000, Count: 1, Subtotal: 1000},
				{Denomination: 5, Count: 1, Subtotal: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Breakdown(tt.deliverable))
		})
	}
}

func mustCombinations(t *testing.T, maker *Maker, amount decimal.Decimal) []Combination {
	t.Helper()
	combinations, err := maker.Combinations(amount)
	require.NoError(t, err)
	return combinations
}

func TestMaker_Combinations(t *testing.T) {
	maker := NewMaker()

	t.Run("1383 leaves 3 written off", func(t *testing.T) {
		combinations := mustCombinations(t, maker, decimal.NewFromInt(1383))
		require.NotEmpty(t, combinations)

		best := combinations[0]
		assert.Equal(t, "greedy", best.Strategy)
		assert.Equal(t, int64(5), best.TotalNotes)
		assert.Equal(t, int64(1380), best.TotalAmount)
		for _, c := range combinations {
			assert.True(t, decimal.NewFromInt(3).Equal(c.Remainder))
			assert.False(t, c.IsExact)
		}
	})

	t.Run("duplicates are dropped and order follows note count", func(t *testing.T) {
		combinations := mustCombinations(t, maker, decimal.NewFromInt(4000))
		require.Len(t, combinations, 2)
		assert.Equal(t, "greedy", combinations[0].Strategy)
		assert.Equal(t, int64(4), combinations[0].TotalNotes)
		assert.Equal(t, "prefer_mid_notes", combinations[1].Strategy)
		assert.Equal(t, int64(6), combinations[1].TotalNotes)
		assert.True(t, combinations[0].IsExact)
	})

	t.Run("below the smallest note", func(t *testing.T) {
		combinations := mustCombinations(t, maker, decimal.RequireFromString("3.5"))
		require.Len(t, combinations, 1)
		assert.Empty(t, combinations[0].Breakdown)
		assert.Equal(t, int64(0), combinations[0].TotalAmount)
		assert.True(t, decimal.RequireFromString("3.5").Equal(combinations[0].Remainder))
		assert.False(t, combinations[0].IsExact)
	})

	t.Run("nothing owed", func(t *testing.T) {
		for _, amount := range []int64{0, -20} {
			combinations := mustCombinations(t, maker, decimal.NewFromInt(amount))
			require.Len(t, combinations, 1)
			assert.Empty(t, combinations[0].Breakdown)
			assert.True(t, combinations[0].Remainder.IsZero())
			assert.True(t, combinations[0].IsExact)
		}
	})

	t.Run("duplicates keep the earlier strategy", func(t *testing.T) {
		maker := NewMaker(PreferMidNotes{}, Greedy{})
		combinations := mustCombinations(t, maker, decimal.NewFromInt(1500))
		require.Len(t, combinations, 1, "both strategies give 1000+500")
		assert.Equal(t, "prefer_mid_notes", combinations[0].Strategy)
	})
}

func TestMaker_Conservation(t *testing.T) {
	maker := NewMaker()
	values := []decimal.Decimal{
		decimal.NewFromInt(MaxAmount),
		decimal.NewFromInt(MaxAmount - 3),
	}
	for amount := int64(0); amount <= 5000; amount += 7 {
		values = append(values, decimal.NewFromInt(amount).Add(decimal.RequireFromString("0.25")))
	}

	for _, value := range values {
		for _, c := range mustCombinations(t, maker, value) {
			var sum int64
			for _, item := range c.Breakdown {
				assert.GreaterOrEqual(t, item.Count, int64(0))
				sum += item.Count * int64(item.Denomination)
			}
			assert.Equal(t, c.TotalAmount, sum)
			assert.Equal(t, int64(0), c.TotalAmount%shared.MinUnit)
			assert.True(t, value.Equal(decimal.NewFromInt(c.TotalAmount).Add(c.Remainder)), "amount %s", value)
		}
	}
}

func TestMaker_RejectsAmountAboveLimit(t *testing.T) {
	maker := NewMaker()
	for _, raw := range []string{"1000000000000.5", "10000000000000000000", "1e40"} {
		combinations, err := maker.Combinations(decimal.RequireFromString(raw))
		assert.ErrorIs(t, err, ErrAmountTooLarge, raw)
		assert.Nil(t, combinations)
	}
}

func TestDeliverable(t *testing.T) {
	deliverable, writtenOff, err := Deliverable(decimal.RequireFromString("1384.75"))
	require.NoError(t, err)
	assert.Equal(t, int64(1380), deliverable)
	assert.True(t, decimal.RequireFromString("4.75").Equal(writtenOff))

	_, _, err = Deliverable(decimal.RequireFromString("10000000000000000000"))
	assert.ErrorIs(t, err, ErrAmountTooLarge)
}
