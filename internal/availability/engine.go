// Package availability computes per-coach-category seat counts for a journey
// across the confirmed, RAC and waitlist tiers.
package availability

import (
	"context"
	"fmt"
	"strings"
)

// CoachCategories is the fixed set of coach-type buckets, ordered ascending.
// Every count result carries exactly these seven rows, zero-filled, so the
// list is shared by all availability queries rather than derived from data.
var CoachCategories = []string{"2S", "AC1", "AC2", "AC3", "CC", "FC", "SL"}

// Tier is a reservation queue position
type Tier string

const (
	TierConfirmed Tier = "CNF"
	TierRAC       Tier = "RAC"
	TierWaitlist  Tier = "WL"
)

// ParseTier validates a tier string, case-insensitively
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToUpper(s)) {
	case TierConfirmed:
		return TierConfirmed, nil
	case TierRAC:
		return TierRAC, nil
	case TierWaitlist:
		return TierWaitlist, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// CategoryCount is the seat count for one coach-category bucket
type CategoryCount struct {
	Category string `json:"reservation_category"`
	Count    int64  `json:"seat_count"`
}

// LedgerSource supplies raw reservation counts grouped by coach category.
// Only reservations whose parent booking is confirmed or pending count.
type LedgerSource interface {
	TierCounts(ctx context.Context, journeyID int64, tier Tier) (map[string]int64, error)
}

// Engine answers seat-count queries for journeys
type Engine struct {
	ledger LedgerSource
}

// NewEngine creates an availability engine over the given ledger
func NewEngine(ledger LedgerSource) *Engine {
	return &Engine{ledger: ledger}
}

// SeatCounts returns one row per fixed coach category with the number of
// reservations at the requested tier for the journey. All-or-nothing: a
// ledger failure discards any partial result.
func (e *Engine) SeatCounts(ctx context.Context, journeyID int64, tier Tier) ([]CategoryCount, error) {
	counts, err := e.ledger.TierCounts(ctx, journeyID, tier)
	if err != nil {
		return nil, err
	}
	return FillCategories(counts), nil
}

// FillCategories merges raw grouped counts into the fixed category list,
// zero-filling buckets without matches. Counts outside the fixed set are
// dropped.
func FillCategories(counts map[string]int64) []CategoryCount {
	out := make([]CategoryCount, 0, len(CoachCategories))
	for _, cat := range CoachCategories {
		out = append(out, CategoryCount{Category: cat, Count: counts[cat]})
	}
	return out
}
