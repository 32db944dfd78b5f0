package rules

import (
	"strings"
	"time"

	"staycal/internal/domain/shared/money"
)

// Coupon is an optional booking-time discount applied on top of the
// length-of-stay discount. Either PercentOff or AmountOff is set.
type Coupon struct {
	Code       string      `bson:"_id" json:"code"`
	PercentOff float64     `bson:"percent_off,omitempty" json:"percent_off,omitempty"`
	AmountOff  money.Money `bson:"amount_off,omitempty" json:"amount_off,omitempty"`
	ValidFrom  time.Time   `bson:"valid_from" json:"valid_from"`
	ValidTo    time.Time   `bson:"valid_to" json:"valid_to"`
	Enabled    bool        `bson:"enabled" json:"enabled"`
}

// Usable reports whether the coupon may be applied at the given instant.
func (c Coupon) Usable(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidTo.IsZero() && now.After(c.ValidTo) {
		return false
	}
	return true
}

// NormalizeCode canonicalizes coupon codes for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
