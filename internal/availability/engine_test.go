package availability

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	counts map[string]int64
	err    error
}

func (f *fakeLedger) TierCounts(_ context.Context, _ int64, _ Tier) (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in       string
		expected Tier
		wantErr  bool
	}{
		{"CNF", TierConfirmed, false},
		{"cnf", TierConfirmed, false},
		{"RAC", TierRAC, false},
		{"wl", TierWaitlist, false},
		{"", "", true},
		{"CONFIRMED", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tier, err := ParseTier(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tier)
		})
	}
}

func TestSeatCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty ledger yields seven zero rows", func(t *testing.T) {
		engine := NewEngine(&fakeLedger{counts: map[string]int64{}})

		counts, err := engine.SeatCounts(ctx, 1, TierConfirmed)
		require.NoError(t, err)
		require.Len(t, counts, 7)
		for _, c := range counts {
			assert.Zero(t, c.Count, "category %s", c.Category)
		}
	})

	t.Run("Counts land in their buckets and sum up", func(t *testing.T) {
		engine := NewEngine(&fakeLedger{counts: map[string]int64{
			"SL":  12,
			"AC3": 4,
			"2S":  30,
		}})

		counts, err := engine.SeatCounts(ctx, 1, TierWaitlist)
		require.NoError(t, err)
		require.Len(t, counts, 7)

		byCat := make(map[string]int64)
		var total int64
		for _, c := range counts {
			byCat[c.Category] = c.Count
			total += c.Count
		}
		assert.Equal(t, int64(12), byCat["SL"])
		assert.Equal(t, int64(4), byCat["AC3"])
		assert.Equal(t, int64(30), byCat["2S"])
		assert.Equal(t, int64(0), byCat["FC"])
		assert.Equal(t, int64(46), total)
	})

	t.Run("Rows ordered ascending by category name", func(t *testing.T) {
		engine := NewEngine(&fakeLedger{counts: map[string]int64{"SL": 1}})

		counts, err := engine.SeatCounts(ctx, 1, TierRAC)
		require.NoError(t, err)

		names := make([]string, len(counts))
		for i, c := range counts {
			names[i] = c.Category
		}
		assert.True(t, sort.StringsAreSorted(names))
	})

	t.Run("Ledger failure discards everything", func(t *testing.T) {
		engine := NewEngine(&fakeLedger{err: errors.New("connection reset")})

		counts, err := engine.SeatCounts(ctx, 1, TierConfirmed)
		assert.Error(t, err)
		assert.Nil(t, counts)
	})
}

func TestFillCategories(t *testing.T) {
	t.Run("Unknown categories are dropped", func(t *testing.T) {
		out := FillCategories(map[string]int64{"SL": 2, "3A": 9})

		require.Len(t, out, 7)
		for _, c := range out {
			assert.NotEqual(t, "3A", c.Category)
		}
	})
}
