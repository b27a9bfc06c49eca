package itinerary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves schedule rows from memory
type fakeSource struct {
	stops  []Stop
	trains map[int64]TrainInfo
}

func (f *fakeSource) ArrivalsOn(_ context.Context, stationID int64, date time.Time) ([]Stop, error) {
	var out []Stop
	for _, s := range f.stops {
		y1, m1, d1 := s.Arrival.Date()
		y2, m2, d2 := date.Date()
		if s.StationID == stationID && y1 == y2 && m1 == m2 && d1 == d2 {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) Arrivals(_ context.Context, stationID int64) ([]Stop, error) {
	var out []Stop
	for _, s := range f.stops {
		if s.StationID == stationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) TrainsByJourney(_ context.Context, ids []int64) (map[int64]TrainInfo, error) {
	out := make(map[int64]TrainInfo)
	for _, id := range ids {
		if t, ok := f.trains[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 14, hour, min, 0, 0, time.UTC)
}

var day = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

// Route with stops S0(#0), S1(#1), S2(#2) served by journey 1
func chainSource() *fakeSource {
	return &fakeSource{
		stops: []Stop{
			{ScheduleID: 11, JourneyID: 1, StationID: 100, Station: "Central", Arrival: at(8, 0), StopNumber: 0},
			{ScheduleID: 12, JourneyID: 1, StationID: 101, Station: "Midway", Arrival: at(9, 30), StopNumber: 1},
			{ScheduleID: 13, JourneyID: 1, StationID: 102, Station: "Harbor", Arrival: at(11, 0), StopNumber: 2},
		},
		trains: map[int64]TrainInfo{
			1: {TrainID: 12301, TrainName: "Coastal Express"},
		},
	}
}

func TestFindJourneys(t *testing.T) {
	ctx := context.Background()

	t.Run("Direct leg between intermediate stops", func(t *testing.T) {
		engine := NewEngine(chainSource())

		legs, err := engine.FindJourneys(ctx, 101, 102, day)
		require.NoError(t, err)
		require.Len(t, legs, 1)

		leg := legs[0]
		assert.Equal(t, int64(1), leg.JourneyID)
		assert.Equal(t, int64(12301), leg.TrainID)
		assert.Equal(t, "Coastal Express", leg.TrainName)
		assert.Equal(t, "Midway", leg.StartStation)
		assert.Equal(t, "Harbor", leg.EndStation)
		assert.Equal(t, int64(12), leg.StartScheduleID)
		assert.Equal(t, int64(13), leg.EndScheduleID)
		assert.Equal(t, 1, leg.StartStopNumber)
		assert.Equal(t, 2, leg.EndStopNumber)
		// 9:30 -> 11:00
		assert.Equal(t, int64(5400), leg.TravelTimeSecs)
	})

	t.Run("Reversed query is empty, not an error", func(t *testing.T) {
		engine := NewEngine(chainSource())

		legs, err := engine.FindJourneys(ctx, 102, 101, day)
		require.NoError(t, err)
		assert.Empty(t, legs)
	})

	t.Run("Swapped queries are disjoint", func(t *testing.T) {
		src := chainSource()
		// Second journey running the opposite direction the same day
		src.stops = append(src.stops,
			Stop{ScheduleID: 21, JourneyID: 2, StationID: 102, Station: "Harbor", Arrival: at(14, 0), StopNumber: 0},
			Stop{ScheduleID: 22, JourneyID: 2, StationID: 101, Station: "Midway", Arrival: at(15, 30), StopNumber: 1},
		)
		src.trains[2] = TrainInfo{TrainID: 12302, TrainName: "Coastal Express Return"}
		engine := NewEngine(src)

		forward, err := engine.FindJourneys(ctx, 101, 102, day)
		require.NoError(t, err)
		backward, err := engine.FindJourneys(ctx, 102, 101, day)
		require.NoError(t, err)

		require.Len(t, forward, 1)
		require.Len(t, backward, 1)
		assert.NotEqual(t, forward[0].JourneyID, backward[0].JourneyID)
	})

	t.Run("Zero station ids fail fast", func(t *testing.T) {
		engine := NewEngine(chainSource())

		_, err := engine.FindJourneys(ctx, 0, 102, day)
		assert.ErrorIs(t, err, ErrInvalidStation)

		_, err = engine.FindJourneys(ctx, 101, 0, day)
		assert.ErrorIs(t, err, ErrInvalidStation)
	})

	t.Run("No service on the date", func(t *testing.T) {
		engine := NewEngine(chainSource())

		legs, err := engine.FindJourneys(ctx, 101, 102, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, legs)
	})

	t.Run("Legs sorted by start time", func(t *testing.T) {
		src := chainSource()
		src.stops = append(src.stops,
			Stop{ScheduleID: 31, JourneyID: 3, StationID: 101, Station: "Midway", Arrival: at(6, 0), StopNumber: 0},
			Stop{ScheduleID: 32, JourneyID: 3, StationID: 102, Station: "Harbor", Arrival: at(7, 15), StopNumber: 1},
		)
		src.trains[3] = TrainInfo{TrainID: 12303, TrainName: "Dawn Passenger"}
		engine := NewEngine(src)

		legs, err := engine.FindJourneys(ctx, 101, 102, day)
		require.NoError(t, err)
		require.Len(t, legs, 2)
		assert.Equal(t, int64(3), legs[0].JourneyID)
		assert.Equal(t, int64(1), legs[1].JourneyID)
		assert.True(t, legs[0].StartTime.Before(legs[1].StartTime))
	})
}

func TestPairStops(t *testing.T) {
	t.Run("Duplicate stop pairs collapse to one leg", func(t *testing.T) {
		starts := []Stop{
			{ScheduleID: 1, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 0},
			{ScheduleID: 1, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 0},
		}
		ends := []Stop{
			{ScheduleID: 2, JourneyID: 9, StationID: 101, Arrival: at(9, 0), StopNumber: 1},
		}

		legs := pairStops(starts, ends)
		assert.Len(t, legs, 1)
	})

	t.Run("Equal stop numbers never pair", func(t *testing.T) {
		starts := []Stop{{ScheduleID: 1, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 1}}
		ends := []Stop{{ScheduleID: 2, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 1}}

		assert.Empty(t, pairStops(starts, ends))
	})

	t.Run("Different journeys never pair", func(t *testing.T) {
		starts := []Stop{{ScheduleID: 1, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 0}}
		ends := []Stop{{ScheduleID: 2, JourneyID: 8, StationID: 101, Arrival: at(9, 0), StopNumber: 1}}

		assert.Empty(t, pairStops(starts, ends))
	})

	t.Run("One journey can serve several station pairs", func(t *testing.T) {
		// Loop service passing the destination twice after the source
		starts := []Stop{
			{ScheduleID: 1, JourneyID: 9, StationID: 100, Arrival: at(8, 0), StopNumber: 0},
		}
		ends := []Stop{
			{ScheduleID: 2, JourneyID: 9, StationID: 101, Arrival: at(9, 0), StopNumber: 1},
			{ScheduleID: 3, JourneyID: 9, StationID: 101, Arrival: at(12, 0), StopNumber: 4},
		}

		legs := pairStops(starts, ends)
		require.Len(t, legs, 2)
		assert.Equal(t, 1, legs[0].EndStopNumber)
		assert.Equal(t, 4, legs[1].EndStopNumber)
	})
}
