package rules

import (
	"fmt"
	"strings"
	"time"

	"staycal/internal/domain/shared/dates"
)

// SeasonType orders seasonal periods by demand level. Higher wins when
// periods overlap.
type SeasonType int

const (
	SeasonMinimum SeasonType = iota
	SeasonLow
	SeasonStandard
	SeasonMedium
	SeasonHigh
)

var seasonNames = map[SeasonType]string{
	SeasonMinimum:  "minimum",
	SeasonLow:      "low",
	SeasonStandard: "standard",
	SeasonMedium:   "medium",
	SeasonHigh:     "high",
}

func (s SeasonType) String() string {
	if name, ok := seasonNames[s]; ok {
		return name
	}
	return fmt.Sprintf("season(%d)", int(s))
}

func ParseSeasonType(name string) (SeasonType, error) {
	for s, n := range seasonNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("rules: unknown season type %q", name)
}

// SeasonalPricingPeriod scales the (weekend-adjusted) base price across an
// inclusive date range. Periods are soft-disabled, never deleted.
type SeasonalPricingPeriod struct {
	ID               string     `bson:"_id" json:"id"`
	PropertyID       string     `bson:"property_id" json:"property_id"`
	StartDate        dates.Date `bson:"start_date" json:"start_date"`
	EndDate          dates.Date `bson:"end_date" json:"end_date"`
	SeasonType       SeasonType `bson:"season_type" json:"season_type"`
	PriceMultiplier  float64    `bson:"price_multiplier" json:"price_multiplier"`
	MinStayOverride  int        `bson:"min_stay_override,omitempty" json:"min_stay_override,omitempty"`
	Enabled          bool       `bson:"enabled" json:"enabled"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
}

// Covers reports whether the date falls inside the period's inclusive
// range.
func (p SeasonalPricingPeriod) Covers(d dates.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// seasonPrecedence is the overlapping-period policy in one place: highest
// season type wins, latest created period breaks ties.
func seasonPrecedence(a, b SeasonalPricingPeriod) bool {
	if a.SeasonType != b.SeasonType {
		return a.SeasonType > b.SeasonType
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// SelectSeason resolves which enabled period governs a date when several
// overlap. Returns false when none cover it.
func SelectSeason(periods []SeasonalPricingPeriod, d dates.Date) (SeasonalPricingPeriod, bool) {
	var winner SeasonalPricingPeriod
	found := false
	for _, p := range periods {
		if !p.Enabled || !p.Covers(d) {
			continue
		}
		if !found || seasonPrecedence(p, winner) {
			winner = p
			found = true
		}
	}
	return winner, found
}
