package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/cache"
	"github.com/railbook/railbook_core/internal/db"
)

// statTTL caches aggregate reports, which tolerate staleness well
const statTTL = 5 * time.Minute

// TotalJourneys handles GET /api/stat/total-journeys
func TotalJourneys(c *fiber.Ctx) error {
	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var total int64
	if err := pool.QueryRow(c.Context(), `SELECT COUNT(*) FROM journey`).Scan(&total); err != nil {
		log.Printf("Journey count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"total_journeys": total})
}

// TotalPassengers handles GET /api/stat/total-passengers
func TotalPassengers(c *fiber.Ctx) error {
	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var total int64
	if err := pool.QueryRow(c.Context(), `SELECT COUNT(*) FROM passenger`).Scan(&total); err != nil {
		log.Printf("Passenger count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"total_passengers": total})
}

// BusiestRoute handles GET /api/stat/busiest-route, ranking routes by
// scheduled stops across all journeys.
func BusiestRoute(c *fiber.Ctx) error {
	ctx := c.Context()

	var cached fiber.Map
	if err := cache.GetJSON(ctx, "stat:busiest-route", &cached); err == nil {
		return c.JSON(cached)
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var (
		routeID   int64
		routeName string
		count     int64
	)
	err = pool.QueryRow(ctx, `
		SELECT r.route_id, r.route_name, COUNT(sc.sched_id) AS stop_count
		FROM route r
		JOIN schedule sc ON sc.route_id = r.route_id
		GROUP BY r.route_id, r.route_name
		ORDER BY stop_count DESC
		LIMIT 1
	`).Scan(&routeID, &routeName, &count)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "no scheduled routes"})
		}
		log.Printf("Busiest route query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	resp := fiber.Map{"route_id": routeID, "route_name": routeName, "scheduled_stops": count}
	if err := cache.SetJSON(ctx, "stat:busiest-route", resp, statTTL); err != nil {
		log.Printf("Cache set error: %v", err)
	}

	return c.JSON(resp)
}

// BusiestStation handles GET /api/stat/busiest-station, ranking stations
// by how many journeys stop there.
func BusiestStation(c *fiber.Ctx) error {
	ctx := c.Context()

	var cached fiber.Map
	if err := cache.GetJSON(ctx, "stat:busiest-station", &cached); err == nil {
		return c.JSON(cached)
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var (
		stationID   int64
		stationName string
		count       int64
	)
	err = pool.QueryRow(ctx, `
		SELECT s.station_id, s.station_name, COUNT(sc.sched_id) AS stop_count
		FROM station s
		JOIN schedule sc ON sc.station_id = s.station_id
		GROUP BY s.station_id, s.station_name
		ORDER BY stop_count DESC
		LIMIT 1
	`).Scan(&stationID, &stationName, &count)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "no scheduled stations"})
		}
		log.Printf("Busiest station query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	resp := fiber.Map{"station_id": stationID, "station_name": stationName, "scheduled_stops": count}
	if err := cache.SetJSON(ctx, "stat:busiest-station", resp, statTTL); err != nil {
		log.Printf("Cache set error: %v", err)
	}

	return c.JSON(resp)
}

// ReservationDistribution handles GET /api/stat/reservation-status-distribution
func ReservationDistribution(c *fiber.Ctx) error {
	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT reservation_status, COUNT(*)
		FROM reservation_status
		GROUP BY reservation_status
		ORDER BY reservation_status
	`)
	if err != nil {
		log.Printf("Distribution query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	distribution := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("Distribution scan error: %v", err)
			continue
		}
		distribution[status] = count
	}

	return c.JSON(fiber.Map{"distribution": distribution})
}

// GenderDistribution handles GET /api/stat/gender-distribution
func GenderDistribution(c *fiber.Ctx) error {
	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT sex, COUNT(*)
		FROM passenger
		GROUP BY sex
		ORDER BY sex
	`)
	if err != nil {
		log.Printf("Gender distribution query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	distribution := make(map[string]int64)
	for rows.Next() {
		var sex string
		var count int64
		if err := rows.Scan(&sex, &count); err != nil {
			log.Printf("Gender distribution scan error: %v", err)
			continue
		}
		distribution[sex] = count
	}

	return c.JSON(fiber.Map{"distribution": distribution})
}

// BusiestTrains handles GET /api/stat/busiest-trains, ranking trains by
// how many bookings their journeys carry.
func BusiestTrains(c *fiber.Ctx) error {
	ctx := c.Context()

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(ctx, `
		SELECT t.train_id, t.train_name, COUNT(b.booking_id) AS bookings
		FROM train t
		JOIN journey j ON j.train_id = t.train_id
		LEFT JOIN booking b ON b.journey_id = j.journey_id
		GROUP BY t.train_id, t.train_name
		ORDER BY bookings DESC, t.train_id
		LIMIT 10
	`)
	if err != nil {
		log.Printf("Busiest trains query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	type trainRank struct {
		TrainNo   int64  `json:"train_no"`
		TrainName string `json:"train_name"`
		Bookings  int64  `json:"bookings"`
	}

	var ranking []trainRank
	for rows.Next() {
		var r trainRank
		if err := rows.Scan(&r.TrainNo, &r.TrainName, &r.Bookings); err != nil {
			log.Printf("Busiest trains scan error: %v", err)
			continue
		}
		ranking = append(ranking, r)
	}
	if ranking == nil {
		ranking = []trainRank{}
	}

	return c.JSON(fiber.Map{"data": ranking, "total": len(ranking)})
}

// BusiestTimePeriod handles GET /api/stat/busiest-time-period, bucketing
// journey departures by hour of day.
func BusiestTimePeriod(c *fiber.Ctx) error {
	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT EXTRACT(HOUR FROM start_time)::int AS hour, COUNT(*)
		FROM journey
		GROUP BY hour
		ORDER BY COUNT(*) DESC, hour
	`)
	if err != nil {
		log.Printf("Time period query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	type hourBucket struct {
		Hour     int   `json:"hour"`
		Journeys int64 `json:"journeys"`
	}

	var buckets []hourBucket
	for rows.Next() {
		var b hourBucket
		if err := rows.Scan(&b.Hour, &b.Journeys); err != nil {
			log.Printf("Time period scan error: %v", err)
			continue
		}
		buckets = append(buckets, b)
	}
	if buckets == nil {
		buckets = []hourBucket{}
	}

	resp := fiber.Map{"data": buckets}
	if len(buckets) > 0 {
		resp["busiest_hour"] = buckets[0].Hour
	}

	return c.JSON(resp)
}
