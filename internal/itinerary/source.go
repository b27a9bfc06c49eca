package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads schedule rows from Postgres
type PGSource struct {
	db *pgxpool.Pool
}

// NewPGSource creates a stop source backed by a connection pool
func NewPGSource(db *pgxpool.Pool) *PGSource {
	return &PGSource{db: db}
}

// ArrivalsOn returns the stops at a station whose arrival time falls on the
// given calendar date.
func (s *PGSource) ArrivalsOn(ctx context.Context, stationID int64, date time.Time) ([]Stop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sc.sched_id, sc.journey_id, sc.station_id, st.station_name,
			sc.sched_toa, sc.stop_number
		FROM schedule sc
		JOIN station st ON st.station_id = sc.station_id
		WHERE sc.station_id = $1
		  AND sc.sched_toa::date = $2::date
		ORDER BY sc.sched_toa
	`, stationID, date)
	if err != nil {
		return nil, fmt.Errorf("querying arrivals at station %d: %w", stationID, err)
	}
	defer rows.Close()

	return scanStops(rows)
}

// Arrivals returns all stops at a station
func (s *PGSource) Arrivals(ctx context.Context, stationID int64) ([]Stop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sc.sched_id, sc.journey_id, sc.station_id, st.station_name,
			sc.sched_toa, sc.stop_number
		FROM schedule sc
		JOIN station st ON st.station_id = sc.station_id
		WHERE sc.station_id = $1
		ORDER BY sc.sched_toa
	`, stationID)
	if err != nil {
		return nil, fmt.Errorf("querying arrivals at station %d: %w", stationID, err)
	}
	defer rows.Close()

	return scanStops(rows)
}

// TrainsByJourney resolves the train running each journey
func (s *PGSource) TrainsByJourney(ctx context.Context, journeyIDs []int64) (map[int64]TrainInfo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT j.journey_id, t.train_id, t.train_name
		FROM journey j
		JOIN train t ON t.train_id = j.train_id
		WHERE j.journey_id = ANY($1)
	`, journeyIDs)
	if err != nil {
		return nil, fmt.Errorf("querying trains for journeys: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]TrainInfo, len(journeyIDs))
	for rows.Next() {
		var journeyID int64
		var t TrainInfo
		if err := rows.Scan(&journeyID, &t.TrainID, &t.TrainName); err != nil {
			return nil, fmt.Errorf("scanning train row: %w", err)
		}
		out[journeyID] = t
	}
	return out, rows.Err()
}

type stopRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStops(rows stopRows) ([]Stop, error) {
	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.ScheduleID, &st.JourneyID, &st.StationID,
			&st.Station, &st.Arrival, &st.StopNumber); err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}
