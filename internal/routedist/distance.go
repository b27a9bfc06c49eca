// Package routedist models a route's distance map: the cumulative distance of
// every station on a route measured from the route's source station.
package routedist

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrStationNotOnRoute is returned when a station has no distance-map entry
	ErrStationNotOnRoute = errors.New("station has no distance entry on this route")
	// ErrDuplicateStation is returned when a (route, station) pair already exists
	ErrDuplicateStation = errors.New("station already present on this route")
	// ErrNegativeDistance marks a distance below zero, which is a data error
	ErrNegativeDistance = errors.New("distance must be non-negative")
)

// Entry is one station's cumulative distance from the route source
type Entry struct {
	StationID int64   `json:"station_id"`
	Distance  float64 `json:"distance"`
}

// DistanceMap holds the distance entries of a single route.
// The source station's entry has distance 0.
type DistanceMap struct {
	RouteID int64
	entries map[int64]float64
}

// New creates an empty distance map for a route
func New(routeID int64) *DistanceMap {
	return &DistanceMap{
		RouteID: routeID,
		entries: make(map[int64]float64),
	}
}

// FromEntries builds a distance map from existing rows, e.g. a database load.
// Duplicate stations and negative distances are rejected.
func FromEntries(routeID int64, entries []Entry) (*DistanceMap, error) {
	m := New(routeID)
	for _, e := range entries {
		if err := m.Add(e.StationID, e.Distance); err != nil {
			return nil, fmt.Errorf("station %d: %w", e.StationID, err)
		}
	}
	return m, nil
}

// Add inserts a station at the given cumulative distance.
// An existing (route, station) pair is a conflict, never overwritten.
func (m *DistanceMap) Add(stationID int64, distance float64) error {
	if distance < 0 {
		return ErrNegativeDistance
	}
	if _, ok := m.entries[stationID]; ok {
		return ErrDuplicateStation
	}
	m.entries[stationID] = distance
	return nil
}

// Distance returns a station's cumulative distance from the source
func (m *DistanceMap) Distance(stationID int64) (float64, bool) {
	d, ok := m.entries[stationID]
	return d, ok
}

// DistanceBetween returns the distance between two stations on the route,
// symmetric in magnitude. Fails if either station lacks an entry.
func (m *DistanceMap) DistanceBetween(a, b int64) (float64, error) {
	da, ok := m.entries[a]
	if !ok {
		return 0, fmt.Errorf("station %d: %w", a, ErrStationNotOnRoute)
	}
	db, ok := m.entries[b]
	if !ok {
		return 0, fmt.Errorf("station %d: %w", b, ErrStationNotOnRoute)
	}
	return math.Abs(db - da), nil
}

// Stations returns all entries ordered ascending by distance
func (m *DistanceMap) Stations() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for id, d := range m.entries {
		out = append(out, Entry{StationID: id, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].StationID < out[j].StationID
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Len returns the number of stations on the route
func (m *DistanceMap) Len() int {
	return len(m.entries)
}

// Total returns the route's total distance: the maximum entry.
// The source sits at 0, so this equals the farthest station's distance.
func (m *DistanceMap) Total() float64 {
	total := 0.0
	for _, d := range m.entries {
		if d > total {
			total = d
		}
	}
	return total
}
