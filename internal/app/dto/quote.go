package dto

// NightPrice is one night's resolved price within a quote.
type NightPrice struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
	PriceSource string `json:"price_source"`
}

// Quote is the full price breakdown for a stay.
type Quote struct {
	PropertyID           string       `json:"property_id"`
	CheckIn              string       `json:"check_in"`
	CheckOut             string       `json:"check_out"`
	Nights               int          `json:"nights"`
	Guests               int          `json:"guests"`
	Currency             string       `json:"currency"`
	NightlyPrices        []NightPrice `json:"nightly_prices"`
	AccommodationCents   int64        `json:"accommodation_cents"`
	CleaningFeeCents     int64        `json:"cleaning_fee_cents"`
	StayDiscountCents    int64        `json:"stay_discount_cents"`
	StayDiscountPercent  float64      `json:"stay_discount_percent,omitempty"`
	CouponDiscountCents  int64        `json:"coupon_discount_cents"`
	CouponApplied        bool         `json:"coupon_applied"`
	TotalCents           int64        `json:"total_cents"`
}

// Unavailable carries the structured reason a stay cannot be priced as
// requested.
type Unavailable struct {
	Reason           string   `json:"reason"`
	UnavailableDates []string `json:"unavailable_dates,omitempty"`
	MinimumStay      int      `json:"minimum_stay,omitempty"`
}

// QuoteResult is either a quote or a structured unavailability, never both.
type QuoteResult struct {
	Quote       *Quote       `json:"quote,omitempty"`
	Unavailable *Unavailable `json:"unavailable,omitempty"`
}
