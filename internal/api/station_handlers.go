package api

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
)

// validStationTypes guards the station_type filter and create payloads
var validStationTypes = map[models.StationType]bool{
	models.StationJunction: true,
	models.StationTerminus: true,
	models.StationHalt:     true,
	models.StationStop:     true,
}

// CreateStation handles POST /api/station
func CreateStation(c *fiber.Ctx) error {
	var station models.Station
	if err := c.BodyParser(&station); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if station.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "station_name is required"})
	}
	if !validStationTypes[station.Type] {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("invalid station_type: %q", station.Type)})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = pool.QueryRow(c.Context(), `
		INSERT INTO station (station_name, station_type)
		VALUES ($1, $2)
		RETURNING station_id
	`, station.Name, string(station.Type)).Scan(&station.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "station already exists"})
		}
		log.Printf("Station insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(station)
}

// ListStations handles GET /api/station with optional name and type filters
func ListStations(c *fiber.Ctx) error {
	p := parsePageParams(c)
	nameFilter := c.Query("station_name")
	typeFilter := c.Query("station_type")

	if typeFilter != "" && !validStationTypes[models.StationType(typeFilter)] {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("invalid station_type: %q", typeFilter)})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	query := `SELECT station_id, station_name, station_type FROM station WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM station WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if nameFilter != "" {
		argCount++
		clause := fmt.Sprintf(" AND station_name ILIKE $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+nameFilter+"%")
	}
	if typeFilter != "" {
		argCount++
		clause := fmt.Sprintf(" AND station_type = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, typeFilter)
	}

	var total int64
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Station count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	query += fmt.Sprintf(" ORDER BY station_id LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Station query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Type); err != nil {
			log.Printf("Station scan error: %v", err)
			continue
		}
		stations = append(stations, s)
	}
	if stations == nil {
		stations = []models.Station{}
	}

	return c.JSON(paginated(stations, p, total))
}

// GetStation handles GET /api/station/:station_id
func GetStation(c *fiber.Ctx) error {
	stationID, err := paramID(c, "station_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var s models.Station
	err = pool.QueryRow(c.Context(), `
		SELECT station_id, station_name, station_type FROM station WHERE station_id = $1
	`, stationID).Scan(&s.ID, &s.Name, &s.Type)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "station not found"})
		}
		log.Printf("Station query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(s)
}
