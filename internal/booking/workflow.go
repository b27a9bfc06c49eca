// Package booking implements the booking and cancellation workflows. Every
// multi-statement flow runs inside a single database transaction: all
// statements commit together or none do.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbook/railbook_core/internal/availability"
	"github.com/railbook/railbook_core/internal/models"
)

var (
	// ErrBookingNotFound is returned when the booking id matches nothing
	ErrBookingNotFound = errors.New("booking not found")
	// ErrAlreadyCancelled guards against a second refund on the same booking
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrNoPassengers rejects a group booking without passengers
	ErrNoPassengers = errors.New("at least one passenger is required")
	// ErrInvalidRequest rejects a booking request with missing ids
	ErrInvalidRequest = errors.New("missing or invalid booking parameters")
	// ErrUnknownCategory rejects a coach category outside the fixed set
	ErrUnknownCategory = errors.New("unknown coach category")
)

// PassengerInput is one traveler in a group booking
type PassengerInput struct {
	Name       string `json:"pass_name"`
	Age        int    `json:"age"`
	Sex        string `json:"sex"`
	Disability bool   `json:"disability"`
}

// GroupBookingRequest books one or more passengers on a journey under a
// single payment transaction.
type GroupBookingRequest struct {
	JourneyID           int64              `json:"journey_id"`
	StartStationID      int64              `json:"start_station_id"`
	EndStationID        int64              `json:"end_station_id"`
	ReservationCategory string             `json:"reservation_category"`
	PaymentMode         models.PaymentMode `json:"mode"`
	Email               string             `json:"email"`
	FarePerSeat         float64            `json:"fare"`
	Passengers          []PassengerInput   `json:"passenger_data"`
}

// Validate checks the request before any statement runs
func (r *GroupBookingRequest) Validate() error {
	if r.JourneyID <= 0 || r.StartStationID <= 0 || r.EndStationID <= 0 {
		return ErrInvalidRequest
	}
	if r.Email == "" || r.FarePerSeat < 0 {
		return ErrInvalidRequest
	}
	if len(r.Passengers) == 0 {
		return ErrNoPassengers
	}
	if !validCategory(r.ReservationCategory) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, r.ReservationCategory)
	}
	switch r.PaymentMode {
	case models.PayCash, models.PayCreditCard, models.PayDebitCard, models.PayNetBanking, models.PayUPI:
	default:
		return fmt.Errorf("%w: payment mode %q", ErrInvalidRequest, r.PaymentMode)
	}
	return nil
}

func validCategory(cat string) bool {
	for _, c := range availability.CoachCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// GroupBookingResult reports what the committed transaction created
type GroupBookingResult struct {
	TxnID      int64               `json:"txn_id"`
	TxnRef     string              `json:"txn_ref"`
	PNRs       []int64             `json:"pnrs"`
	BookingIDs []int64             `json:"booking_ids"`
	Tiers      []availability.Tier `json:"tiers"`
}

// Workflow runs booking and cancellation flows against the store
type Workflow struct {
	db *pgxpool.Pool
}

// NewWorkflow creates a booking workflow over the given pool
func NewWorkflow(db *pgxpool.Pool) *Workflow {
	return &Workflow{db: db}
}

// CreateGroupBooking atomically creates the payment transaction, one
// passenger, booking and reservation row per traveler, and assigns each a
// tier from the remaining CNF and RAC pool capacity. Any failure rolls the
// whole group back: partial passenger insertion is a correctness violation.
func (w *Workflow) CreateGroupBooking(ctx context.Context, req *GroupBookingRequest) (*GroupBookingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	total := req.FarePerSeat * float64(len(req.Passengers))
	txnRef := uuid.NewString()

	var txnID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO payment_transaction (txn_ref, total_amount, txn_status, payment_mode)
		VALUES ($1, $2, 'PND', $3)
		RETURNING txn_id
	`, txnRef, total, string(req.PaymentMode)).Scan(&txnID)
	if err != nil {
		return nil, fmt.Errorf("creating payment transaction: %w", err)
	}

	cnfCap, racCap, err := poolCapacity(ctx, tx, req.JourneyID, req.ReservationCategory)
	if err != nil {
		return nil, err
	}
	cnfUsed, racUsed, err := poolUsage(ctx, tx, req.JourneyID, req.ReservationCategory)
	if err != nil {
		return nil, err
	}

	result := &GroupBookingResult{TxnID: txnID, TxnRef: txnRef}

	for _, p := range req.Passengers {
		var pnr int64
		err = tx.QueryRow(ctx, `
			INSERT INTO passenger (email, pass_name, age, sex, disability)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING pnr
		`, req.Email, p.Name, p.Age, p.Sex, p.Disability).Scan(&pnr)
		if err != nil {
			return nil, fmt.Errorf("creating passenger record: %w", err)
		}

		tier := assignTier(cnfCap, racCap, cnfUsed, racUsed)
		switch tier {
		case availability.TierConfirmed:
			cnfUsed++
		case availability.TierRAC:
			racUsed++
		}

		var bookingID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO booking (booking_time, booking_status, pnr, journey_id,
				start_station_id, end_station_id, amount, txn_id)
			VALUES (NOW(), 'PND', $1, $2, $3, $4, $5, $6)
			RETURNING booking_id
		`, pnr, req.JourneyID, req.StartStationID, req.EndStationID, req.FarePerSeat, txnID).Scan(&bookingID)
		if err != nil {
			return nil, fmt.Errorf("creating booking record: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservation_status (pnr, reservation_status, reservation_category)
			VALUES ($1, $2, $3)
		`, pnr, string(tier), req.ReservationCategory)
		if err != nil {
			return nil, fmt.Errorf("creating reservation record: %w", err)
		}

		result.PNRs = append(result.PNRs, pnr)
		result.BookingIDs = append(result.BookingIDs, bookingID)
		result.Tiers = append(result.Tiers, tier)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing booking transaction: %w", err)
	}

	return result, nil
}

// assignTier picks the first tier with remaining pool capacity
func assignTier(cnfCap, racCap, cnfUsed, racUsed int64) availability.Tier {
	if cnfUsed < cnfCap {
		return availability.TierConfirmed
	}
	if racUsed < racCap {
		return availability.TierRAC
	}
	return availability.TierWaitlist
}

// poolCapacity sizes the CNF and RAC seat pools for the journey's train and
// the requested coach category.
func poolCapacity(ctx context.Context, tx pgx.Tx, journeyID int64, category string) (cnf, rac int64, err error) {
	err = tx.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE s.seat_category = 'CNF'),
			COUNT(*) FILTER (WHERE s.seat_category = 'RAC')
		FROM seat s
		JOIN coach c ON c.coach_id = s.coach_id
		JOIN journey j ON j.train_id = c.train_id
		WHERE j.journey_id = $1 AND c.coach_type = $2
	`, journeyID, category).Scan(&cnf, &rac)
	if err != nil {
		return 0, 0, fmt.Errorf("sizing seat pools: %w", err)
	}
	return cnf, rac, nil
}

// poolUsage counts live reservations already holding CNF and RAC positions
func poolUsage(ctx context.Context, tx pgx.Tx, journeyID int64, category string) (cnf, rac int64, err error) {
	err = tx.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE rs.reservation_status = 'CNF'),
			COUNT(*) FILTER (WHERE rs.reservation_status = 'RAC')
		FROM reservation_status rs
		JOIN booking b ON b.pnr = rs.pnr
		WHERE b.journey_id = $1
		  AND rs.reservation_category = $2
		  AND b.booking_status IN ('CNF', 'PND')
	`, journeyID, category).Scan(&cnf, &rac)
	if err != nil {
		return 0, 0, fmt.Errorf("counting pool usage: %w", err)
	}
	return cnf, rac, nil
}

// Cancel flips the booking to cancelled and writes the immutable
// cancellation record in one transaction. Both steps commit together or
// neither does; an unknown booking id rolls back with ErrBookingNotFound.
func (w *Workflow) Cancel(ctx context.Context, bookingID int64, refundAmount float64, txnID int64) (*models.Cancellation, error) {
	if bookingID <= 0 {
		return nil, ErrInvalidRequest
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning cancellation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE booking
		SET booking_status = 'CNC'
		WHERE booking_id = $1 AND booking_status <> 'CNC'
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("updating booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a second cancellation from an unknown id, so a
		// retried cancel can never write a second refund record.
		var status string
		err := tx.QueryRow(ctx, `
			SELECT booking_status FROM booking WHERE booking_id = $1
		`, bookingID).Scan(&status)
		if err == nil && status == string(models.BookingCancelled) {
			return nil, ErrAlreadyCancelled
		}
		return nil, ErrBookingNotFound
	}

	record := &models.Cancellation{
		BookingID:    bookingID,
		CancelTime:   time.Now().UTC(),
		RefundAmount: refundAmount,
		Status:       "COMPLETED",
		TxnID:        txnID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO cancellation_record (booking_id, cancel_time, refund_amount, cancel_status, txn_id)
		VALUES ($1, $2, $3, 'COMPLETED', $4)
		RETURNING cancel_id
	`, bookingID, record.CancelTime, refundAmount, txnID).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting cancellation record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing cancellation: %w", err)
	}

	return record, nil
}
