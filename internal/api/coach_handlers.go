package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/availability"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
)

// CoachWithSeats is a coach row plus its seat count
type CoachWithSeats struct {
	models.Coach
	SeatCount int64 `json:"seat_count"`
}

// CoachesByTrain handles GET /api/coach/:train_no
func CoachesByTrain(c *fiber.Ctx) error {
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
		SELECT co.coach_id, co.coach_name, co.coach_type, co.fare, co.train_id,
			COUNT(s.seat_id) AS seat_count
		FROM coach co
		LEFT JOIN seat s ON s.coach_id = co.coach_id
		WHERE co.train_id = $1
		GROUP BY co.coach_id, co.coach_name, co.coach_type, co.fare, co.train_id
		ORDER BY co.coach_id
	`, trainNo)
	if err != nil {
		log.Printf("Coach query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var coaches []CoachWithSeats
	for rows.Next() {
		var co CoachWithSeats
		if err := rows.Scan(&co.ID, &co.Name, &co.Type, &co.Fare, &co.TrainID, &co.SeatCount); err != nil {
			log.Printf("Coach scan error: %v", err)
			continue
		}
		coaches = append(coaches, co)
	}
	if coaches == nil {
		coaches = []CoachWithSeats{}
	}

	return c.JSON(fiber.Map{"data": coaches, "total": len(coaches)})
}

// CreateCoach handles POST /api/coach
func CreateCoach(c *fiber.Ctx) error {
	var coach models.Coach
	if err := c.BodyParser(&coach); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if coach.Name == "" || coach.TrainID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "coach_name and train_id are required"})
	}
	if !validCoachType(coach.Type) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid coach_type"})
	}
	if coach.Fare < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "fare must be non-negative"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = pool.QueryRow(c.Context(), `
		INSERT INTO coach (coach_name, coach_type, fare, train_id)
		VALUES ($1, $2, $3, $4)
		RETURNING coach_id
	`, coach.Name, coach.Type, coach.Fare, coach.TrainID).Scan(&coach.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "coach already exists on this train"})
		}
		log.Printf("Coach insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(coach)
}

// CoachFare handles GET /api/coach/fare/:train_no/:coach_type
func CoachFare(c *fiber.Ctx) error {
	trainNo, err := paramID(c, "train_no")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	coachType := c.Params("coach_type")
	if !validCoachType(coachType) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid coach_type"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var fare float64
	err = pool.QueryRow(c.Context(), `
		SELECT MIN(fare) FROM coach WHERE train_id = $1 AND coach_type = $2
		HAVING COUNT(*) > 0
	`, trainNo, coachType).Scan(&fare)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "no coach of this type on the train"})
		}
		log.Printf("Fare query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"train_no":   trainNo,
		"coach_type": coachType,
		"fare":       fare,
	})
}

func validCoachType(t string) bool {
	for _, cat := range availability.CoachCategories {
		if cat == t {
			return true
		}
	}
	return false
}
