package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/availability"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
)

// CreateSeat handles POST /api/seat
func CreateSeat(c *fiber.Ctx) error {
	var seat models.Seat
	if err := c.BodyParser(&seat); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if seat.No <= 0 || seat.CoachID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "seat_no and coach_id are required"})
	}
	if seat.Category != models.SeatPoolConfirmed && seat.Category != models.SeatPoolRAC {
		return c.Status(400).JSON(fiber.Map{"error": "seat_category must be CNF or RAC"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = pool.QueryRow(c.Context(), `
		INSERT INTO seat (seat_no, seat_type, coach_id, seat_category)
		VALUES ($1, $2, $3, $4)
		RETURNING seat_id
	`, seat.No, seat.Type, seat.CoachID, string(seat.Category)).Scan(&seat.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "seat already exists in this coach"})
		}
		log.Printf("Seat insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(seat)
}

// SeatsByCoach handles GET /api/seat/coach/:coach_id
func SeatsByCoach(c *fiber.Ctx) error {
	coachID, err := paramID(c, "coach_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT seat_id, seat_no, seat_type, coach_id, seat_category
		FROM seat
		WHERE coach_id = $1
		ORDER BY seat_no
	`, coachID)
	if err != nil {
		log.Printf("Seat query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.No, &s.Type, &s.CoachID, &s.Category); err != nil {
			log.Printf("Seat scan error: %v", err)
			continue
		}
		seats = append(seats, s)
	}
	if seats == nil {
		seats = []models.Seat{}
	}

	return c.JSON(fiber.Map{"data": seats, "total": len(seats)})
}

// SeatPoolsByTrain handles GET /api/seat/pools/:train_no. Every coach
// category appears in the response even when the train has no coach of
// that type.
func SeatPoolsByTrain(c *fiber.Ctx) error {
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
		SELECT co.coach_type, s.seat_category, COUNT(*)
		FROM seat s
		JOIN coach co ON co.coach_id = s.coach_id
		WHERE co.train_id = $1
		GROUP BY co.coach_type, s.seat_category
	`, trainNo)
	if err != nil {
		log.Printf("Seat pool query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	cnf := make(map[string]int64)
	rac := make(map[string]int64)
	for rows.Next() {
		var coachType, category string
		var count int64
		if err := rows.Scan(&coachType, &category, &count); err != nil {
			log.Printf("Seat pool scan error: %v", err)
			continue
		}
		switch category {
		case string(models.SeatPoolConfirmed):
			cnf[coachType] = count
		case string(models.SeatPoolRAC):
			rac[coachType] = count
		}
	}

	return c.JSON(fiber.Map{
		"train_no": trainNo,
		"cnf":      availability.FillCategories(cnf),
		"rac":      availability.FillCategories(rac),
	})
}
