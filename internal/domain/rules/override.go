package rules

import (
	"fmt"
	"time"

	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// DateOverride pins price and availability for one property on one date.
// It outranks every other pricing source.
type DateOverride struct {
	ID              string      `bson:"_id" json:"id"`
	PropertyID      string      `bson:"property_id" json:"property_id"`
	Date            dates.Date  `bson:"date" json:"date"`
	CustomPrice     money.Money `bson:"custom_price" json:"custom_price"`
	Available       bool        `bson:"available" json:"available"`
	MinStayOverride int         `bson:"min_stay_override,omitempty" json:"min_stay_override,omitempty"`
	FlatRate        bool        `bson:"flat_rate" json:"flat_rate"`
	Reason          string      `bson:"reason,omitempty" json:"reason,omitempty"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
}

// OverrideID is the deterministic document key: one override per property
// per date.
func OverrideID(propertyID string, d dates.Date) string {
	return fmt.Sprintf("%s_%s", propertyID, d)
}

func (o DateOverride) WithID() DateOverride {
	o.ID = OverrideID(o.PropertyID, o.Date)
	return o
}
