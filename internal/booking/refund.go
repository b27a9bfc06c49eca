package booking

import "time"

// Refund cutoffs measured back from scheduled departure
const (
	fullRefundWindow = 48 * time.Hour
	halfRefundWindow = 12 * time.Hour
)

// RefundAmount returns the refund owed for cancelling a booking of the
// given fare at the given moment. More than 48 hours before departure the
// full fare is returned; within 48 hours half; within 12 hours a quarter.
// After departure nothing is refunded.
func RefundAmount(fare float64, departure, now time.Time) float64 {
	if fare <= 0 {
		return 0
	}
	remaining := departure.Sub(now)
	switch {
	case remaining <= 0:
		return 0
	case remaining >= fullRefundWindow:
		return fare
	case remaining >= halfRefundWindow:
		return fare * 0.5
	default:
		return fare * 0.25
	}
}
