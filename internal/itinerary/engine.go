// Package itinerary finds the journeys serving a station pair on a date.
//
// A journey qualifies when it stops at both stations and its stop sequence
// visits the source before the destination. Pairing, deduplication and
// ordering are pure Go over schedule rows supplied by a StopSource, so the
// engine runs the same against Postgres or an in-memory fixture.
package itinerary

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrInvalidStation is returned when a station id is missing or zero
var ErrInvalidStation = errors.New("missing or invalid station id")

// Stop is one schedule row at a station
type Stop struct {
	ScheduleID int64
	JourneyID  int64
	StationID  int64
	Station    string
	Arrival    time.Time
	StopNumber int
}

// TrainInfo identifies the train running a journey
type TrainInfo struct {
	TrainID   int64
	TrainName string
}

// StopSource supplies schedule rows and train lookups for the engine
type StopSource interface {
	// ArrivalsOn returns the stops at a station whose arrival falls on the
	// given calendar date.
	ArrivalsOn(ctx context.Context, stationID int64, date time.Time) ([]Stop, error)
	// Arrivals returns all stops at a station regardless of date.
	Arrivals(ctx context.Context, stationID int64) ([]Stop, error)
	// TrainsByJourney resolves train id and name for a set of journeys.
	TrainsByJourney(ctx context.Context, journeyIDs []int64) (map[int64]TrainInfo, error)
}

// Leg is one direct connection between the requested stations
type Leg struct {
	JourneyID       int64     `json:"journey_id"`
	TrainID         int64     `json:"train_id"`
	TrainName       string    `json:"train_name"`
	StartStationID  int64     `json:"start_station_id"`
	StartScheduleID int64     `json:"start_schedule_id"`
	StartStation    string    `json:"start_station"`
	EndStationID    int64     `json:"end_station_id"`
	EndScheduleID   int64     `json:"end_schedule_id"`
	EndStation      string    `json:"end_station"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	StartStopNumber int       `json:"start_stop_number"`
	EndStopNumber   int       `json:"end_stop_number"`
	TravelTimeSecs  int64     `json:"travel_time"`
}

// Engine finds journeys between stations
type Engine struct {
	source StopSource
}

// NewEngine creates an itinerary engine over the given stop source
func NewEngine(source StopSource) *Engine {
	return &Engine{source: source}
}

// FindJourneys returns every journey leg from sourceID to destID whose source
// arrival falls on date. An empty result is not an error: it correctly covers
// journeys that pass the destination before the source.
func (e *Engine) FindJourneys(ctx context.Context, sourceID, destID int64, date time.Time) ([]Leg, error) {
	if sourceID <= 0 || destID <= 0 {
		return nil, ErrInvalidStation
	}

	starts, err := e.source.ArrivalsOn(ctx, sourceID, date)
	if err != nil {
		return nil, err
	}
	if len(starts) == 0 {
		return []Leg{}, nil
	}

	ends, err := e.source.Arrivals(ctx, destID)
	if err != nil {
		return nil, err
	}

	legs := pairStops(starts, ends)
	if len(legs) == 0 {
		return []Leg{}, nil
	}

	journeyIDs := make([]int64, 0, len(legs))
	seen := make(map[int64]bool)
	for _, l := range legs {
		if !seen[l.JourneyID] {
			seen[l.JourneyID] = true
			journeyIDs = append(journeyIDs, l.JourneyID)
		}
	}

	trains, err := e.source.TrainsByJourney(ctx, journeyIDs)
	if err != nil {
		return nil, err
	}
	for i := range legs {
		if t, ok := trains[legs[i].JourneyID]; ok {
			legs[i].TrainID = t.TrainID
			legs[i].TrainName = t.TrainName
		}
	}

	return legs, nil
}

// pairStops matches start and end stops of the same journey where the start
// stop number precedes the end stop number. Output is deduplicated by
// (journey, start stop, end stop) and sorted by start time ascending.
func pairStops(starts, ends []Stop) []Leg {
	endsByJourney := make(map[int64][]Stop, len(ends))
	for _, e := range ends {
		endsByJourney[e.JourneyID] = append(endsByJourney[e.JourneyID], e)
	}

	type legKey struct {
		journeyID int64
		startStop int
		endStop   int
	}

	var legs []Leg
	dedup := make(map[legKey]bool)

	for _, s := range starts {
		for _, e := range endsByJourney[s.JourneyID] {
			if s.StopNumber >= e.StopNumber {
				continue
			}
			key := legKey{s.JourneyID, s.StopNumber, e.StopNumber}
			if dedup[key] {
				continue
			}
			dedup[key] = true

			legs = append(legs, Leg{
				JourneyID:       s.JourneyID,
				StartStationID:  s.StationID,
				StartScheduleID: s.ScheduleID,
				StartStation:    s.Station,
				EndStationID:    e.StationID,
				EndScheduleID:   e.ScheduleID,
				EndStation:      e.Station,
				StartTime:       s.Arrival,
				EndTime:         e.Arrival,
				StartStopNumber: s.StopNumber,
				EndStopNumber:   e.StopNumber,
				TravelTimeSecs:  int64(e.Arrival.Sub(s.Arrival) / time.Second),
			})
		}
	}

	sort.Slice(legs, func(i, j int) bool {
		if legs[i].StartTime.Equal(legs[j].StartTime) {
			if legs[i].JourneyID == legs[j].JourneyID {
				return legs[i].EndStopNumber < legs[j].EndStopNumber
			}
			return legs[i].JourneyID < legs[j].JourneyID
		}
		return legs[i].StartTime.Before(legs[j].StartTime)
	})

	return legs
}
