package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
	"github.com/railbook/railbook_core/internal/routedist"
)

// RouteStationInfo is one station on a route with its distance from source
type RouteStationInfo struct {
	StationID   int64   `json:"station_id"`
	StationName string  `json:"station_name"`
	Distance    float64 `json:"distance"`
}

// RouteDetail is a route with its ordered station chain
type RouteDetail struct {
	models.Route
	Stations []RouteStationInfo `json:"stations"`
}

// ListRoutes handles GET /api/route
func ListRoutes(c *fiber.Ctx) error {
	p := parsePageParams(c)

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	var total int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM route`).Scan(&total); err != nil {
		log.Printf("Route count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(ctx, `
		SELECT r.route_id, r.route_name, r.source_station_id,
			COUNT(dm.station_id) AS station_count,
			COALESCE(MAX(dm.distance), 0) AS total_distance
		FROM route r
		LEFT JOIN distance_map dm ON dm.route_id = r.route_id
		GROUP BY r.route_id, r.route_name, r.source_station_id
		ORDER BY r.route_id
		LIMIT $1 OFFSET $2
	`, p.Limit, p.Offset)
	if err != nil {
		log.Printf("Route query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	type routeRow struct {
		models.Route
		StationCount  int64   `json:"station_count"`
		TotalDistance float64 `json:"total_distance"`
	}

	var routes []routeRow
	for rows.Next() {
		var r routeRow
		if err := rows.Scan(&r.ID, &r.Name, &r.SourceStationID, &r.StationCount, &r.TotalDistance); err != nil {
			log.Printf("Route scan error: %v", err)
			continue
		}
		routes = append(routes, r)
	}
	if routes == nil {
		routes = []routeRow{}
	}

	return c.JSON(paginated(routes, p, total))
}

// CreateRoute handles POST /api/route. The route and its source station's
// zero-distance map entry are created in one transaction.
func CreateRoute(c *fiber.Ctx) error {
	var route models.Route
	if err := c.BodyParser(&route); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if route.Name == "" || route.SourceStationID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "route_name and source_station_id are required"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Printf("Route transaction error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO route (route_name, source_station_id)
		VALUES ($1, $2)
		RETURNING route_id
	`, route.Name, route.SourceStationID).Scan(&route.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "route already exists"})
		}
		log.Printf("Route insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO distance_map (route_id, station_id, distance)
		VALUES ($1, $2, 0)
	`, route.ID, route.SourceStationID)
	if err != nil {
		log.Printf("Distance map insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Route commit error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(route)
}

// AddRouteStation handles POST /api/route/:route_id/station. A station
// already mapped on the route is a conflict, not an update.
func AddRouteStation(c *fiber.Ctx) error {
	routeID, err := paramID(c, "route_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		StationID int64   `json:"station_id"`
		Distance  float64 `json:"distance"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.StationID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "station_id is required"})
	}
	if body.Distance < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "distance must be non-negative"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if err := routedist.Insert(c.Context(), pool, routeID, body.StationID, body.Distance); err != nil {
		if errors.Is(err, routedist.ErrDuplicateStation) {
			return c.Status(409).JSON(fiber.Map{"error": "station already mapped on this route"})
		}
		log.Printf("Distance map insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(fiber.Map{
		"route_id":   routeID,
		"station_id": body.StationID,
		"distance":   body.Distance,
	})
}

// RouteStations handles GET /api/route/:route_id/station, returning the
// station chain in travel order.
func RouteStations(c *fiber.Ctx) error {
	routeID, err := paramID(c, "route_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	var route models.Route
	err = pool.QueryRow(ctx, `
		SELECT route_id, route_name, source_station_id FROM route WHERE route_id = $1
	`, routeID).Scan(&route.ID, &route.Name, &route.SourceStationID)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "route not found"})
		}
		log.Printf("Route query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(ctx, `
		SELECT dm.station_id, s.station_name, dm.distance
		FROM distance_map dm
		JOIN station s ON s.station_id = dm.station_id
		WHERE dm.route_id = $1
		ORDER BY dm.distance, dm.station_id
	`, routeID)
	if err != nil {
		log.Printf("Route stations query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var stations []RouteStationInfo
	for rows.Next() {
		var s RouteStationInfo
		if err := rows.Scan(&s.StationID, &s.StationName, &s.Distance); err != nil {
			log.Printf("Route station scan error: %v", err)
			continue
		}
		stations = append(stations, s)
	}
	if stations == nil {
		stations = []RouteStationInfo{}
	}

	return c.JSON(RouteDetail{Route: route, Stations: stations})
}

// RouteDistance handles GET /api/route/:route_id/distance?from=&to=
func RouteDistance(c *fiber.Ctx) error {
	routeID, err := paramID(c, "route_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	from, err1 := strconv.ParseInt(c.Query("from"), 10, 64)
	to, err2 := strconv.ParseInt(c.Query("to"), 10, 64)
	if err1 != nil || err2 != nil || from <= 0 || to <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "from and to station ids are required"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	distance, err := routedist.Between(c.Context(), pool, routeID, from, to)
	if err != nil {
		if errors.Is(err, routedist.ErrStationNotOnRoute) {
			return c.Status(404).JSON(fiber.Map{"error": "station not mapped on this route"})
		}
		log.Printf("Route distance error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"route_id": routeID,
		"from":     from,
		"to":       to,
		"distance": distance,
	})
}
