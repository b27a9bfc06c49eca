package routedist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Load reads a route's distance map from the database
func Load(ctx context.Context, pool *pgxpool.Pool, routeID int64) (*DistanceMap, error) {
	rows, err := pool.Query(ctx, `
		SELECT station_id, distance
		FROM distance_map
		WHERE route_id = $1
		ORDER BY distance
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("loading distance map for route %d: %w", routeID, err)
	}
	defer rows.Close()

	m := New(routeID)
	for rows.Next() {
		var stationID int64
		var distance float64
		if err := rows.Scan(&stationID, &distance); err != nil {
			return nil, fmt.Errorf("scanning distance entry: %w", err)
		}
		if err := m.Add(stationID, distance); err != nil {
			return nil, fmt.Errorf("route %d station %d: %w", routeID, stationID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// Insert adds one station to a route's distance map.
// A duplicate (route, station) pair maps to ErrDuplicateStation.
func Insert(ctx context.Context, pool *pgxpool.Pool, routeID, stationID int64, distance float64) error {
	if distance < 0 {
		return ErrNegativeDistance
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO distance_map (route_id, station_id, distance)
		VALUES ($1, $2, $3)
	`, routeID, stationID, distance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateStation
		}
		return fmt.Errorf("inserting distance entry: %w", err)
	}

	return nil
}

// Between loads both stations' distances for a route and returns the
// absolute difference. ErrStationNotOnRoute when either is unmapped.
func Between(ctx context.Context, pool *pgxpool.Pool, routeID, stationA, stationB int64) (float64, error) {
	var da, db float64

	err := pool.QueryRow(ctx, `
		SELECT distance FROM distance_map WHERE route_id = $1 AND station_id = $2
	`, routeID, stationA).Scan(&da)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("station %d: %w", stationA, ErrStationNotOnRoute)
	}
	if err != nil {
		return 0, err
	}

	err = pool.QueryRow(ctx, `
		SELECT distance FROM distance_map WHERE route_id = $1 AND station_id = $2
	`, routeID, stationB).Scan(&db)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("station %d: %w", stationB, ErrStationNotOnRoute)
	}
	if err != nil {
		return 0, err
	}

	if db > da {
		return db - da, nil
	}
	return da - db, nil
}
