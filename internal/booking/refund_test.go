package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/railbook/railbook_core/internal/availability"
	"github.com/railbook/railbook_core/internal/models"
)

func TestRefundAmount(t *testing.T) {
	departure := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		fare float64
		now  time.Time
		want float64
	}{
		{"well before departure", 1200, departure.Add(-96 * time.Hour), 1200},
		{"exactly 48h before", 1200, departure.Add(-48 * time.Hour), 1200},
		{"one day before", 1200, departure.Add(-24 * time.Hour), 600},
		{"exactly 12h before", 1200, departure.Add(-12 * time.Hour), 600},
		{"two hours before", 1200, departure.Add(-2 * time.Hour), 300},
		{"at departure", 1200, departure, 0},
		{"after departure", 1200, departure.Add(3 * time.Hour), 0},
		{"zero fare", 0, departure.Add(-96 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RefundAmount(tt.fare, departure, tt.now)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestGroupBookingRequestValidate(t *testing.T) {
	valid := func() *GroupBookingRequest {
		return &GroupBookingRequest{
			JourneyID:           7,
			StartStationID:      1,
			EndStationID:        4,
			ReservationCategory: "SL",
			PaymentMode:         models.PayUPI,
			Email:               "rider@example.com",
			FarePerSeat:         540,
			Passengers: []PassengerInput{
				{Name: "Asha Verma", Age: 34, Sex: "F"},
			},
		}
	}

	t.Run("accepts a complete request", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("rejects missing journey", func(t *testing.T) {
		req := valid()
		req.JourneyID = 0
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("rejects empty passenger list", func(t *testing.T) {
		req := valid()
		req.Passengers = nil
		assert.ErrorIs(t, req.Validate(), ErrNoPassengers)
	})

	t.Run("rejects unknown coach category", func(t *testing.T) {
		req := valid()
		req.ReservationCategory = "3A"
		assert.ErrorIs(t, req.Validate(), ErrUnknownCategory)
	})

	t.Run("rejects unknown payment mode", func(t *testing.T) {
		req := valid()
		req.PaymentMode = "BTC"
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("rejects negative fare", func(t *testing.T) {
		req := valid()
		req.FarePerSeat = -10
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})
}

func TestAssignTier(t *testing.T) {
	tests := []struct {
		name             string
		cnfCap, racCap   int64
		cnfUsed, racUsed int64
		want             availability.Tier
	}{
		{"confirmed pool open", 10, 4, 3, 0, availability.TierConfirmed},
		{"confirmed full falls to rac", 10, 4, 10, 1, availability.TierRAC},
		{"both pools full waitlists", 10, 4, 10, 4, availability.TierWaitlist},
		{"no coaches of category", 0, 0, 0, 0, availability.TierWaitlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignTier(tt.cnfCap, tt.racCap, tt.cnfUsed, tt.racUsed)
			assert.Equal(t, tt.want, got)
		})
	}
}
