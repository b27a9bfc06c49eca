package availability

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLedger counts reservations straight from the reservation_status table
type PGLedger struct {
	db *pgxpool.Pool
}

// NewPGLedger creates a ledger source backed by a connection pool
func NewPGLedger(db *pgxpool.Pool) *PGLedger {
	return &PGLedger{db: db}
}

// TierCounts groups the journey's reservations at the given tier by coach
// category. Cancelled and failed bookings never count toward availability.
func (l *PGLedger) TierCounts(ctx context.Context, journeyID int64, tier Tier) (map[string]int64, error) {
	rows, err := l.db.Query(ctx, `
		SELECT rs.reservation_category, COUNT(*)
		FROM reservation_status rs
		JOIN booking b ON rs.pnr = b.pnr
		WHERE b.journey_id = $1
		  AND rs.reservation_status = $2
		  AND b.booking_status IN ('CNF', 'PND')
		GROUP BY rs.reservation_category
	`, journeyID, string(tier))
	if err != nil {
		return nil, fmt.Errorf("counting %s reservations for journey %d: %w", tier, journeyID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}
