package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/models"
)

// transaction lifecycle states written by the payment endpoints
var validTxnStatuses = map[string]bool{
	"PND":    true,
	"DONE":   true,
	"FAILED": true,
}

// CreateTransaction handles POST /api/transaction. The external reference
// is generated server-side so callers cannot collide.
func CreateTransaction(c *fiber.Ctx) error {
	var txn models.Transaction
	if err := c.BodyParser(&txn); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if txn.TotalAmount < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "total_amount must be non-negative"})
	}
	switch txn.PaymentMode {
	case models.PayCash, models.PayCreditCard, models.PayDebitCard, models.PayNetBanking, models.PayUPI:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid payment_mode"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	txn.Reference = uuid.NewString()
	txn.Status = "PND"

	err = pool.QueryRow(c.Context(), `
		INSERT INTO payment_transaction (txn_ref, total_amount, txn_status, payment_mode)
		VALUES ($1, $2, $3, $4)
		RETURNING txn_id
	`, txn.Reference, txn.TotalAmount, txn.Status, string(txn.PaymentMode)).Scan(&txn.ID)
	if err != nil {
		log.Printf("Transaction insert error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(201).JSON(txn)
}

// UpdateTransactionStatus handles PUT /api/transaction/:txn_id/status
func UpdateTransactionStatus(c *fiber.Ctx) error {
	txnID, err := paramID(c, "txn_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		Status string `json:"txn_status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !validTxnStatuses[body.Status] {
		return c.Status(400).JSON(fiber.Map{"error": "invalid txn_status"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	tag, err := pool.Exec(c.Context(), `
		UPDATE payment_transaction SET txn_status = $2 WHERE txn_id = $1
	`, txnID, body.Status)
	if err != nil {
		log.Printf("Transaction update error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "transaction not found"})
	}

	return c.JSON(fiber.Map{"txn_id": txnID, "txn_status": body.Status})
}

// GetTransaction handles GET /api/transaction/:txn_id
func GetTransaction(c *fiber.Ctx) error {
	txnID, err := paramID(c, "txn_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var txn models.Transaction
	err = pool.QueryRow(c.Context(), `
		SELECT txn_id, txn_ref, total_amount, txn_status, payment_mode
		FROM payment_transaction WHERE txn_id = $1
	`, txnID).Scan(&txn.ID, &txn.Reference, &txn.TotalAmount, &txn.Status, &txn.PaymentMode)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "transaction not found"})
		}
		log.Printf("Transaction query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(txn)
}

// ListTransactions handles GET /api/transaction
func ListTransactions(c *fiber.Ctx) error {
	p := parsePageParams(c)

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	var total int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM payment_transaction`).Scan(&total); err != nil {
		log.Printf("Transaction count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(ctx, `
		SELECT txn_id, txn_ref, total_amount, txn_status, payment_mode
		FROM payment_transaction
		ORDER BY txn_id DESC
		LIMIT $1 OFFSET $2
	`, p.Limit, p.Offset)
	if err != nil {
		log.Printf("Transaction query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Reference, &t.TotalAmount, &t.Status, &t.PaymentMode); err != nil {
			log.Printf("Transaction scan error: %v", err)
			continue
		}
		txns = append(txns, t)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}

	return c.JSON(paginated(txns, p, total))
}
