package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
	"github.com/railbook/railbook_core/internal/routedist"
)

// ListSchedules handles GET /api/schedules
func ListSchedules(c *fiber.Ctx) error {
	p := parsePageParams(c)

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	var total int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schedule`).Scan(&total); err != nil {
		log.Printf("Schedule count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(ctx, `
		SELECT sc.sched_id, sc.journey_id, sc.station_id, s.station_name,
			sc.sched_toa, sc.sched_tod, sc.stop_number, sc.route_id
		FROM schedule sc
		JOIN station s ON s.station_id = sc.station_id
		ORDER BY sc.journey_id, sc.stop_number
		LIMIT $1 OFFSET $2
	`, p.Limit, p.Offset)
	if err != nil {
		log.Printf("Schedule query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	stops, err := scanScheduleStops(rows)
	if err != nil {
		log.Printf("Schedule scan error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(paginated(stops, p, total))
}

type scheduleRows interface {
	Next() bool
	Scan(dest ...interface{}) error
}

func scanScheduleStops(rows scheduleRows) ([]models.ScheduleStop, error) {
	var stops []models.ScheduleStop
	for rows.Next() {
		var st models.ScheduleStop
		if err := rows.Scan(&st.ID, &st.JourneyID, &st.StationID, &st.StationName,
			&st.Arrival, &st.Departure, &st.StopNumber, &st.RouteID); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	if stops == nil {
		stops = []models.ScheduleStop{}
	}
	return stops, nil
}

// CreateSchedule handles POST /api/schedules. Inserting a stop at an
// occupied position shifts that stop and everything after it one place
// down the journey, inside one transaction.
func CreateSchedule(c *fiber.Ctx) error {
	var st models.ScheduleStop
	if err := c.BodyParser(&st); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if st.JourneyID <= 0 || st.StationID <= 0 || st.RouteID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "journey_id, station_id and route_id are required"})
	}
	if st.StopNumber < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "stop_number must be non-negative"})
	}
	if st.Departure.Before(st.Arrival) {
		return c.Status(400).JSON(fiber.Map{"error": "sched_tod must not precede sched_toa"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Printf("Schedule transaction error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE schedule
		SET stop_number = stop_number + 1
		WHERE journey_id = $1 AND stop_number >= $2
	`, st.JourneyID, st.StopNumber)
	if err != nil {
		log.Printf("Schedule shift error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO schedule (journey_id, station_id, sched_toa, sched_tod, stop_number, route_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING sched_id
	`, st.JourneyID, st.StationID, st.Arrival, st.Departure, st.StopNumber, st.RouteID).Scan(&st.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "station already scheduled on this journey"})
		}
		log.Printf("Schedule insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Schedule commit error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(st)
}

// GetSchedule handles GET /api/schedules/:sched_id
func GetSchedule(c *fiber.Ctx) error {
	schedID, err := paramID(c, "sched_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var st models.ScheduleStop
	err = pool.QueryRow(c.Context(), `
		SELECT sc.sched_id, sc.journey_id, sc.station_id, s.station_name,
			sc.sched_toa, sc.sched_tod, sc.stop_number, sc.route_id
		FROM schedule sc
		JOIN station s ON s.station_id = sc.station_id
		WHERE sc.sched_id = $1
	`, schedID).Scan(&st.ID, &st.JourneyID, &st.StationID, &st.StationName,
		&st.Arrival, &st.Departure, &st.StopNumber, &st.RouteID)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "schedule entry not found"})
		}
		log.Printf("Schedule query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(st)
}

// UpdateSchedule handles PUT /api/schedules/:sched_id, adjusting times only.
// Reordering stops is a delete-and-insert, not an update.
func UpdateSchedule(c *fiber.Ctx) error {
	schedID, err := paramID(c, "sched_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		Arrival   *string `json:"sched_toa"`
		Departure *string `json:"sched_tod"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Arrival == nil && body.Departure == nil {
		return c.Status(400).JSON(fiber.Map{"error": "nothing to update"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	tag, err := pool.Exec(c.Context(), `
		UPDATE schedule
		SET sched_toa = COALESCE($2::timestamptz, sched_toa),
			sched_tod = COALESCE($3::timestamptz, sched_tod)
		WHERE sched_id = $1
	`, schedID, body.Arrival, body.Departure)
	if err != nil {
		log.Printf("Schedule update error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "schedule entry not found"})
	}

	return c.JSON(fiber.Map{"updated": schedID})
}

// DeleteSchedule handles DELETE /api/schedules/:sched_id
func DeleteSchedule(c *fiber.Ctx) error {
	schedID, err := paramID(c, "sched_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	tag, err := pool.Exec(c.Context(), `DELETE FROM schedule WHERE sched_id = $1`, schedID)
	if err != nil {
		log.Printf("Schedule delete error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "schedule entry not found"})
	}

	return c.JSON(fiber.Map{"deleted": schedID})
}

// SchedulesByJourney handles GET /api/schedules/journey/:journey_id. Each
// stop's distance from the previous one is derived from the route's
// distance map at read time; the origin is always 0 and stops on an
// unmapped leg carry no distance.
func SchedulesByJourney(c *fiber.Ctx) error {
	journeyID, err := paramID(c, "journey_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	rows, err := pool.Query(ctx, `
		SELECT sc.sched_id, sc.journey_id, sc.station_id, s.station_name,
			sc.sched_toa, sc.sched_tod, sc.stop_number, sc.route_id
		FROM schedule sc
		JOIN station s ON s.station_id = sc.station_id
		WHERE sc.journey_id = $1
		ORDER BY sc.stop_number
	`, journeyID)
	if err != nil {
		log.Printf("Schedule query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	stops, err := scanScheduleStops(rows)
	rows.Close()
	if err != nil {
		log.Printf("Schedule scan error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if len(stops) > 0 {
		dm, err := routedist.Load(ctx, pool, stops[0].RouteID)
		if err != nil {
			log.Printf("Distance map load error: %v", err)
		} else {
			annotateDistances(stops, dm)
		}
	}

	return c.JSON(fiber.Map{"data": stops, "total": len(stops)})
}

// annotateDistances fills each stop's distance from its predecessor. The
// journey origin (stop number 0) always reads 0 regardless of the map;
// legs with an unmapped station stay nil.
func annotateDistances(stops []models.ScheduleStop, dm *routedist.DistanceMap) {
	for i := range stops {
		if stops[i].StopNumber == 0 {
			zero := 0.0
			stops[i].Distance = &zero
			continue
		}
		if i == 0 {
			continue
		}
		d, err := dm.DistanceBetween(stops[i-1].StationID, stops[i].StationID)
		if err != nil {
			continue
		}
		dist := d
		stops[i].Distance = &dist
	}
}
