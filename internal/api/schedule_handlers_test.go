package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/railbook_core/internal/models"
	"github.com/railbook/railbook_core/internal/routedist"
)

func mappedRoute(t *testing.T) *routedist.DistanceMap {
	t.Helper()
	dm, err := routedist.FromEntries(1, []routedist.Entry{
		{StationID: 1, Distance: 0},
		{StationID: 2, Distance: 10},
		{StationID: 3, Distance: 25},
	})
	require.NoError(t, err)
	return dm
}

func journeyStops(stationIDs ...int64) []models.ScheduleStop {
	stops := make([]models.ScheduleStop, len(stationIDs))
	for i, id := range stationIDs {
		stops[i] = models.ScheduleStop{StationID: id, StopNumber: i}
	}
	return stops
}

func TestAnnotateDistances(t *testing.T) {
	t.Run("origin always reads zero", func(t *testing.T) {
		stops := journeyStops(1, 2, 3)
		annotateDistances(stops, mappedRoute(t))

		require.NotNil(t, stops[0].Distance)
		assert.Equal(t, 0.0, *stops[0].Distance)
	})

	t.Run("later stops carry the leg from the previous stop", func(t *testing.T) {
		stops := journeyStops(1, 2, 3)
		annotateDistances(stops, mappedRoute(t))

		require.NotNil(t, stops[1].Distance)
		assert.Equal(t, 10.0, *stops[1].Distance)
		require.NotNil(t, stops[2].Distance)
		assert.Equal(t, 15.0, *stops[2].Distance)
	})

	t.Run("unmapped station leaves the leg nil", func(t *testing.T) {
		stops := journeyStops(1, 9, 3)
		annotateDistances(stops, mappedRoute(t))

		require.NotNil(t, stops[0].Distance)
		assert.Equal(t, 0.0, *stops[0].Distance)
		assert.Nil(t, stops[1].Distance)
		assert.Nil(t, stops[2].Distance)
	})

	t.Run("empty schedule is a no-op", func(t *testing.T) {
		annotateDistances(nil, mappedRoute(t))
	})
}
