package rules

import (
	"fmt"
	"strings"
	"time"

	"staycal/internal/domain/shared/money"
)

// ConfigError reports required pricing configuration that is absent for a
// property. Generation refuses to run on it rather than guessing defaults.
type ConfigError struct {
	PropertyID string
	Missing    []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rules: property %s pricing config missing required fields: %s",
		e.PropertyID, strings.Join(e.Missing, ", "))
}

// LengthOfStayDiscountTier grants a percentage off the accommodation total
// once a stay reaches the nights threshold.
type LengthOfStayDiscountTier struct {
	NightsThreshold    int     `bson:"nights_threshold" json:"nights_threshold"`
	DiscountPercentage float64 `bson:"discount_percentage" json:"discount_percentage"`
	Enabled            bool    `bson:"enabled" json:"enabled"`
}

// PropertyPricingConfig is the base pricing rule set of one property. All
// other rule entities layer on top of it.
type PropertyPricingConfig struct {
	PropertyID                  string                     `bson:"_id" json:"property_id"`
	BasePricePerNight           money.Money                `bson:"base_price_per_night" json:"base_price_per_night"`
	BaseOccupancy               int                        `bson:"base_occupancy" json:"base_occupancy"`
	MaxGuests                   int                        `bson:"max_guests" json:"max_guests"`
	ExtraGuestFeePerNight       money.Money                `bson:"extra_guest_fee_per_night" json:"extra_guest_fee_per_night"`
	CleaningFee                 money.Money                `bson:"cleaning_fee" json:"cleaning_fee"`
	WeekendAdjustmentMultiplier float64                    `bson:"weekend_adjustment_multiplier" json:"weekend_adjustment_multiplier"`
	WeekendDays                 []time.Weekday             `bson:"weekend_days" json:"weekend_days"`
	DefaultMinimumStay          int                        `bson:"default_minimum_stay" json:"default_minimum_stay"`
	DiscountTiers               []LengthOfStayDiscountTier `bson:"discount_tiers" json:"discount_tiers"`
	UpdatedAt                   time.Time                  `bson:"updated_at" json:"updated_at"`
}

// Validate returns a ConfigError naming every absent required field. There
// are deliberately no fallbacks here; an incomplete config is an admin
// problem to surface, not to paper over.
func (c PropertyPricingConfig) Validate() error {
	var missing []string
	if c.BasePricePerNight.Amount <= 0 {
		missing = append(missing, "base_price_per_night")
	}
	if c.BasePricePerNight.Currency == "" {
		missing = append(missing, "base_currency")
	}
	if c.BaseOccupancy <= 0 {
		missing = append(missing, "base_occupancy")
	}
	if c.MaxGuests <= 0 {
		missing = append(missing, "max_guests")
	}
	if c.DefaultMinimumStay <= 0 {
		missing = append(missing, "default_minimum_stay")
	}
	if len(missing) > 0 {
		return &ConfigError{PropertyID: c.PropertyID, Missing: missing}
	}
	if c.MaxGuests < c.BaseOccupancy {
		return &ConfigError{PropertyID: c.PropertyID, Missing: []string{"max_guests >= base_occupancy"}}
	}
	return nil
}

// IsWeekend reports whether the weekday belongs to the configured weekend
// set.
func (c PropertyPricingConfig) IsWeekend(day time.Weekday) bool {
	for _, w := range c.WeekendDays {
		if w == day {
			return true
		}
	}
	return false
}

// BestDiscountTier picks among enabled tiers whose threshold the stay
// reaches, preferring the highest percentage. Thresholds only gate
// eligibility; when percentages are non-monotonic the guest still gets the
// best qualifying rate.
func (c PropertyPricingConfig) BestDiscountTier(nights int) (LengthOfStayDiscountTier, bool) {
	var best LengthOfStayDiscountTier
	found := false
	for _, tier := range c.DiscountTiers {
		if !tier.Enabled || nights < tier.NightsThreshold {
			continue
		}
		if !found || tier.DiscountPercentage > best.DiscountPercentage {
			best = tier
			found = true
		}
	}
	return best, found
}

// ParseWeekday converts a lowercase English weekday name as the admin API
// sends it.
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("rules: unknown weekday %q", name)
}
