package api

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
)

var validTrainTypes = map[models.TrainType]bool{
	models.TrainExpress:     true,
	models.TrainMail:        true,
	models.TrainSuperfast:   true,
	models.TrainVandeBharat: true,
	models.TrainMEMU:        true,
	models.TrainIntercity:   true,
}

// trainSortColumns whitelists the sortable columns so a request value never
// reaches the query verbatim. The key column is train_id in the schema but
// surfaces as train_no in JSON, so both spellings sort by it.
var trainSortColumns = map[string]string{
	"train_no":   "train_id",
	"train_id":   "train_id",
	"train_name": "train_name",
	"train_type": "train_type",
}

// ListTrains handles GET /api/trains
func ListTrains(c *fiber.Ctx) error {
	p := parsePageParams(c)
	typeFilter := c.Query("train_type")

	sortCol, ok := trainSortColumns[c.Query("sort_by", "train_no")]
	if !ok {
		sortCol = "train_id"
	}
	order := "ASC"
	if c.Query("order") == "desc" {
		order = "DESC"
	}

	if typeFilter != "" && !validTrainTypes[models.TrainType(typeFilter)] {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("invalid train_type: %q", typeFilter)})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	query := `SELECT train_id, train_name, train_type FROM train WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM train WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if typeFilter != "" {
		argCount++
		clause := fmt.Sprintf(" AND train_type = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, typeFilter)
	}

	var total int64
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Train count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, order, argCount+1, argCount+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Train query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var trains []models.Train
	for rows.Next() {
		var t models.Train
		if err := rows.Scan(&t.No, &t.Name, &t.Type); err != nil {
			log.Printf("Train scan error: %v", err)
			continue
		}
		trains = append(trains, t)
	}
	if trains == nil {
		trains = []models.Train{}
	}

	return c.JSON(paginated(trains, p, total))
}

// CreateTrain handles POST /api/trains
func CreateTrain(c *fiber.Ctx) error {
	var train models.Train
	if err := c.BodyParser(&train); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if train.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "train_name is required"})
	}
	if !validTrainTypes[train.Type] {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("invalid train_type: %q", train.Type)})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	err = pool.QueryRow(c.Context(), `
		INSERT INTO train (train_name, train_type)
		VALUES ($1, $2)
		RETURNING train_id
	`, train.Name, string(train.Type)).Scan(&train.No)
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "train already exists"})
		}
		log.Printf("Train insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(train)
}

// GetTrain handles GET /api/trains/:train_no
func GetTrain(c *fiber.Ctx) error {
	trainNo, err := paramID(c, "train_no")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var t models.Train
	err = pool.QueryRow(c.Context(), `
		SELECT train_id, train_name, train_type FROM train WHERE train_id = $1
	`, trainNo).Scan(&t.No, &t.Name, &t.Type)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "train not found"})
		}
		log.Printf("Train query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(t)
}
