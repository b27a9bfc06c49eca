package api

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/railbook/railbook_core/internal/availability"
	"github.com/railbook/railbook_core/internal/booking"
	"github.com/railbook/railbook_core/internal/cache"
	"github.com/railbook/railbook_core/internal/db"
)

// seatCountTTL keeps availability responses fresh enough for booking flows
const seatCountTTL = 30 * time.Second

// SeatAvailability handles GET /api/booking/seat/:tier/:journey_id.
// Every coach category appears in the response, zero-filled when no
// reservation of this tier exists for it.
func SeatAvailability(c *fiber.Ctx) error {
	tier, err := availability.ParseTier(c.Params("tier"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	journeyID, err := paramID(c, "journey_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()

	cacheKey := cache.SeatCountKey(journeyID, string(tier))
	var cached []availability.CategoryCount
	if err := cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return c.JSON(fiber.Map{"data": cached, "journey_id": journeyID, "tier": tier})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	engine := availability.NewEngine(availability.NewPGLedger(pool))
	counts, err := engine.SeatCounts(ctx, journeyID, tier)
	if err != nil {
		log.Printf("Seat count error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	if err := cache.SetJSON(ctx, cacheKey, counts, seatCountTTL); err != nil {
		log.Printf("Cache set error: %v", err)
	}

	return c.JSON(fiber.Map{"data": counts, "journey_id": journeyID, "tier": tier})
}

// CreateBooking handles POST /api/booking. The whole passenger group is
// booked atomically under one payment transaction.
func CreateBooking(c *fiber.Ctx) error {
	var req booking.GroupBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	result, err := booking.NewWorkflow(pool).CreateGroupBooking(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidRequest),
			errors.Is(err, booking.ErrNoPassengers),
			errors.Is(err, booking.ErrUnknownCategory):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("Booking error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	// Counts for this journey changed under every tier
	invalidateSeatCounts(ctx, req.JourneyID)

	return c.Status(201).JSON(result)
}

func invalidateSeatCounts(ctx context.Context, journeyID int64) {
	keys := []string{
		cache.SeatCountKey(journeyID, string(availability.TierConfirmed)),
		cache.SeatCountKey(journeyID, string(availability.TierRAC)),
		cache.SeatCountKey(journeyID, string(availability.TierWaitlist)),
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		log.Printf("Cache invalidate error: %v", err)
	}
}

// BookingRecord is one booking row joined with its passenger and
// reservation state.
type BookingRecord struct {
	BookingID     int64     `json:"booking_id"`
	BookingTime   time.Time `json:"booking_time"`
	BookingStatus string    `json:"booking_status"`
	PNR           int64     `json:"pnr"`
	PassengerName string    `json:"pass_name"`
	JourneyID     int64     `json:"journey_id"`
	StartStation  string    `json:"start_station"`
	EndStation    string    `json:"end_station"`
	Amount        float64   `json:"amount"`
	Tier          string    `json:"reservation_status"`
	Category      string    `json:"reservation_category"`
	TxnID         int64     `json:"txn_id"`
}

// BookingsByEmail handles GET /api/booking?email=
func BookingsByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email is required"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	rows, err := pool.Query(c.Context(), `
		SELECT b.booking_id, b.booking_time, b.booking_status, b.pnr, p.pass_name,
			b.journey_id, ss.station_name, es.station_name, b.amount,
			rs.reservation_status, rs.reservation_category, b.txn_id
		FROM booking b
		JOIN passenger p ON p.pnr = b.pnr
		JOIN reservation_status rs ON rs.pnr = b.pnr
		JOIN station ss ON ss.station_id = b.start_station_id
		JOIN station es ON es.station_id = b.end_station_id
		WHERE p.email = $1
		ORDER BY b.booking_time DESC
	`, email)
	if err != nil {
		log.Printf("Booking query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	defer rows.Close()

	var records []BookingRecord
	for rows.Next() {
		var r BookingRecord
		if err := rows.Scan(&r.BookingID, &r.BookingTime, &r.BookingStatus, &r.PNR, &r.PassengerName,
			&r.JourneyID, &r.StartStation, &r.EndStation, &r.Amount,
			&r.Tier, &r.Category, &r.TxnID); err != nil {
			log.Printf("Booking scan error: %v", err)
			continue
		}
		records = append(records, r)
	}
	if records == nil {
		records = []BookingRecord{}
	}

	return c.JSON(fiber.Map{"data": records, "total": len(records)})
}

// PNRStatus handles GET /api/booking/pnr/:pnr
func PNRStatus(c *fiber.Ctx) error {
	pnr, err := paramID(c, "pnr")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var r BookingRecord
	err = pool.QueryRow(c.Context(), `
		SELECT b.booking_id, b.booking_time, b.booking_status, b.pnr, p.pass_name,
			b.journey_id, ss.station_name, es.station_name, b.amount,
			rs.reservation_status, rs.reservation_category, b.txn_id
		FROM booking b
		JOIN passenger p ON p.pnr = b.pnr
		JOIN reservation_status rs ON rs.pnr = b.pnr
		JOIN station ss ON ss.station_id = b.start_station_id
		JOIN station es ON es.station_id = b.end_station_id
		WHERE b.pnr = $1
	`, pnr).Scan(&r.BookingID, &r.BookingTime, &r.BookingStatus, &r.PNR, &r.PassengerName,
		&r.JourneyID, &r.StartStation, &r.EndStation, &r.Amount,
		&r.Tier, &r.Category, &r.TxnID)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "pnr not found"})
		}
		log.Printf("PNR query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(r)
}

// CancelBooking handles POST /api/booking/cancel. The refund follows the
// time-to-departure policy and the cancellation commits atomically.
func CancelBooking(c *fiber.Ctx) error {
	var body struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.BookingID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "booking_id is required"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	ctx := c.Context()

	var (
		amount    float64
		txnID     int64
		journeyID int64
		departure time.Time
	)
	err = pool.QueryRow(ctx, `
		SELECT b.amount, b.txn_id, b.journey_id, j.start_time
		FROM booking b
		JOIN journey j ON j.journey_id = b.journey_id
		WHERE b.booking_id = $1
	`, body.BookingID).Scan(&amount, &txnID, &journeyID, &departure)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "booking not found"})
		}
		log.Printf("Booking lookup error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	refund := booking.RefundAmount(amount, departure, time.Now().UTC())

	record, err := booking.NewWorkflow(pool).Cancel(ctx, body.BookingID, refund, txnID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "booking not found"})
		}
		if errors.Is(err, booking.ErrAlreadyCancelled) {
			return c.Status(409).JSON(fiber.Map{"error": "booking already cancelled"})
		}
		log.Printf("Cancellation error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	invalidateSeatCounts(ctx, journeyID)

	return c.JSON(record)
}
