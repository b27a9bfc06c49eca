package api

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/cache"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/itinerary"
	"github.com/railbook/railbook_core/internal/models"
)

// journeySearchTTL bounds how stale a cached itinerary result may be
const journeySearchTTL = 2 * time.Minute

// ListJourneys handles GET /api/journey with optional filters
func ListJourneys(c *fiber.Ctx) error {
	p := parsePageParams(c)

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	query := `
		SELECT journey_id, start_time, end_time, train_id, start_station_id, end_station_id
		FROM journey WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM journey WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if trainID, err := strconv.ParseInt(c.Query("train_id"), 10, 64); err == nil && trainID > 0 {
		argCount++
		clause := fmt.Sprintf(" AND train_id = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, trainID)
	}
	if startID, err := strconv.ParseInt(c.Query("start_station_id"), 10, 64); err == nil && startID > 0 {
		argCount++
		clause := fmt.Sprintf(" AND start_station_id = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, startID)
	}
	if endID, err := strconv.ParseInt(c.Query("end_station_id"), 10, 64); err == nil && endID > 0 {
		argCount++
		clause := fmt.Sprintf(" AND end_station_id = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, endID)
	}
	if dateStr := c.Query("date"); dateStr != "" {
		if _, err := time.Parse("2006-01-02", dateStr); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date format (use YYYY-MM-DD)"})
		}
		argCount++
		clause := fmt.Sprintf(" AND start_time::date = $%d::date", argCount)
		query += clause
		countQuery += clause
		args = append(args, dateStr)
	}

	var total int64
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Journey count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	query += fmt.Sprintf(" ORDER BY start_time, journey_id LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Journey query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var journeys []models.Journey
	for rows.Next() {
		var j models.Journey
		if err := rows.Scan(&j.ID, &j.StartTime, &j.EndTime, &j.TrainID, &j.StartStationID, &j.EndStationID); err != nil {
			log.Printf("Journey scan error: %v", err)
			continue
		}
		journeys = append(journeys, j)
	}
	if journeys == nil {
		journeys = []models.Journey{}
	}

	return c.JSON(paginated(journeys, p, total))
}

// CreateJourney handles POST /api/journey
func CreateJourney(c *fiber.Ctx) error {
	var j models.Journey
	if err := c.BodyParser(&j); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if j.TrainID <= 0 || j.StartStationID <= 0 || j.EndStationID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "train_id, start_station_id and end_station_id are required"})
	}
	if !j.EndTime.After(j.StartTime) {
		return c.Status(400).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = pool.QueryRow(c.Context(), `
		INSERT INTO journey (start_time, end_time, train_id, start_station_id, end_station_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING journey_id
	`, j.StartTime, j.EndTime, j.TrainID, j.StartStationID, j.EndStationID).Scan(&j.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "journey already exists"})
		}
		log.Printf("Journey insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(j)
}

// GetJourney handles GET /api/journey/:journey_id
func GetJourney(c *fiber.Ctx) error {
	journeyID, err := paramID(c, "journey_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var j models.Journey
	err = pool.QueryRow(c.Context(), `
		SELECT journey_id, start_time, end_time, train_id, start_station_id, end_station_id
		FROM journey WHERE journey_id = $1
	`, journeyID).Scan(&j.ID, &j.StartTime, &j.EndTime, &j.TrainID, &j.StartStationID, &j.EndStationID)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "journey not found"})
		}
		log.Printf("Journey query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(j)
}

// UpdateJourney handles PUT /api/journey/:journey_id, shifting its window
func UpdateJourney(c *fiber.Ctx) error {
	journeyID, err := paramID(c, "journey_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.StartTime == nil && body.EndTime == nil {
		return c.Status(400).JSON(fiber.Map{"error": "nothing to update"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	tag, err := pool.Exec(c.Context(), `
		UPDATE journey
		SET start_time = COALESCE($2::timestamptz, start_time),
			end_time = COALESCE($3::timestamptz, end_time)
		WHERE journey_id = $1
	`, journeyID, body.StartTime, body.EndTime)
	if err != nil {
		log.Printf("Journey update error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "journey not found"})
	}

	return c.JSON(fiber.Map{"updated": journeyID})
}

// DeleteJourney handles DELETE /api/journey/:journey_id
func DeleteJourney(c *fiber.Ctx) error {
	journeyID, err := paramID(c, "journey_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	tag, err := pool.Exec(c.Context(), `DELETE FROM journey WHERE journey_id = $1`, journeyID)
	if err != nil {
		log.Printf("Journey delete error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "journey not found"})
	}

	return c.JSON(fiber.Map{"deleted": journeyID})
}

// JourneysByTrain handles GET /api/journey/train/:train_no
func JourneysByTrain(c *fiber.Ctx) error {
	trainNo, err := paramID(c, "train_no")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT journey_id, start_time, end_time, train_id, start_station_id, end_station_id
		FROM journey
		WHERE train_id = $1
		ORDER BY start_time
	`, trainNo)
	if err != nil {
		log.Printf("Journey query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var journeys []models.Journey
	for rows.Next() {
		var j models.Journey
		if err := rows.Scan(&j.ID, &j.StartTime, &j.EndTime, &j.TrainID, &j.StartStationID, &j.EndStationID); err != nil {
			log.Printf("Journey scan error: %v", err)
			continue
		}
		journeys = append(journeys, j)
	}
	if journeys == nil {
		journeys = []models.Journey{}
	}

	return c.JSON(fiber.Map{"data": journeys, "total": len(journeys)})
}

// JourneysBetween handles GET /api/journey/between?source=&destination=&date=.
// Results are served from Redis when fresh; the date defaults to today.
func JourneysBetween(c *fiber.Ctx) error {
	sourceID, err1 := strconv.ParseInt(c.Query("source"), 10, 64)
	destID, err2 := strconv.ParseInt(c.Query("destination"), 10, 64)
	if err1 != nil || err2 != nil {
		return c.Status(400).JSON(fiber.Map{"error": "source and destination station ids are required"})
	}

	dateStr := c.Query("date", time.Now().UTC().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date format (use YYYY-MM-DD)"})
	}

	ctx := c.Context()

	cacheKey := cache.ItineraryKey(sourceID, destID, dateStr)
	var cached []itinerary.Leg
	if err := cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return c.JSON(fiber.Map{"data": cached, "total": len(cached), "date": dateStr})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	engine := itinerary.NewEngine(itinerary.NewPGSource(pool))
	legs, err := engine.FindJourneys(ctx, sourceID, destID, date)
	if err != nil {
		if errors.Is(err, itinerary.ErrInvalidStation) {
			return c.Status(400).JSON(fiber.Map{"error": "source and destination must be positive station ids"})
		}
		log.Printf("Itinerary search error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if err := cache.SetJSON(ctx, cacheKey, legs, journeySearchTTL); err != nil {
		log.Printf("Cache set error: %v", err)
	}

	return c.JSON(fiber.Map{"data": legs, "total": len(legs), "date": dateStr})
}
