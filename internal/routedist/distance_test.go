package routedist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	t.Run("Source station at distance zero", func(t *testing.T) {
		m := New(1)
		require.NoError(t, m.Add(10, 0))

		d, ok := m.Distance(10)
		assert.True(t, ok)
		assert.Equal(t, 0.0, d)
	})

	t.Run("Duplicate station is a conflict", func(t *testing.T) {
		m := New(1)
		require.NoError(t, m.Add(10, 0))

		err := m.Add(10, 25)
		assert.ErrorIs(t, err, ErrDuplicateStation)

		// Original entry untouched
		d, _ := m.Distance(10)
		assert.Equal(t, 0.0, d)
	})

	t.Run("Negative distance rejected", func(t *testing.T) {
		m := New(1)
		err := m.Add(10, -5)
		assert.ErrorIs(t, err, ErrNegativeDistance)
	})
}

func TestDistanceBetween(t *testing.T) {
	m, err := FromEntries(7, []Entry{
		{StationID: 100, Distance: 0},
		{StationID: 101, Distance: 10},
		{StationID: 102, Distance: 25},
	})
	require.NoError(t, err)

	t.Run("Between intermediate stations", func(t *testing.T) {
		d, err := m.DistanceBetween(101, 102)
		require.NoError(t, err)
		assert.Equal(t, 15.0, d)
	})

	t.Run("Symmetric in magnitude", func(t *testing.T) {
		forward, err := m.DistanceBetween(100, 102)
		require.NoError(t, err)
		backward, err := m.DistanceBetween(102, 100)
		require.NoError(t, err)
		assert.Equal(t, forward, backward)
		assert.Equal(t, 25.0, forward)
	})

	t.Run("Unmapped station fails", func(t *testing.T) {
		_, err := m.DistanceBetween(101, 999)
		assert.ErrorIs(t, err, ErrStationNotOnRoute)

		_, err = m.DistanceBetween(999, 101)
		assert.ErrorIs(t, err, ErrStationNotOnRoute)
	})
}

func TestStations(t *testing.T) {
	m, err := FromEntries(3, []Entry{
		{StationID: 5, Distance: 120},
		{StationID: 9, Distance: 0},
		{StationID: 2, Distance: 45.5},
	})
	require.NoError(t, err)

	stations := m.Stations()
	require.Len(t, stations, 3)

	// Ordered ascending by distance, non-decreasing traversal
	for i := 1; i < len(stations); i++ {
		assert.GreaterOrEqual(t, stations[i].Distance, stations[i-1].Distance)
	}
	assert.Equal(t, int64(9), stations[0].StationID)
	assert.Equal(t, int64(5), stations[2].StationID)
}

func TestTotal(t *testing.T) {
	t.Run("Total is the farthest entry", func(t *testing.T) {
		m, err := FromEntries(3, []Entry{
			{StationID: 9, Distance: 0},
			{StationID: 2, Distance: 45.5},
			{StationID: 5, Distance: 120},
		})
		require.NoError(t, err)
		assert.Equal(t, 120.0, m.Total())
	})

	t.Run("Empty route has total zero", func(t *testing.T) {
		m := New(4)
		assert.Equal(t, 0.0, m.Total())
	})
}

func TestFromEntries(t *testing.T) {
	t.Run("Rejects duplicate rows", func(t *testing.T) {
		_, err := FromEntries(1, []Entry{
			{StationID: 10, Distance: 0},
			{StationID: 10, Distance: 30},
		})
		assert.ErrorIs(t, err, ErrDuplicateStation)
	})

	t.Run("Rejects negative rows", func(t *testing.T) {
		_, err := FromEntries(1, []Entry{
			{StationID: 10, Distance: -1},
		})
		assert.ErrorIs(t, err, ErrNegativeDistance)
	})
}
