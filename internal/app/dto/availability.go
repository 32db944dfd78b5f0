package dto

// Unavailability reasons returned to callers. These are expected outcomes
// of the booking flow, not failures.
const (
	ReasonUnavailableDates = "unavailable_dates"
	ReasonMinimumStay      = "minimum_stay"
)

// AvailabilityResult answers whether a stay range is bookable.
type AvailabilityResult struct {
	PropertyID       string   `json:"property_id"`
	CheckIn          string   `json:"check_in"`
	CheckOut         string   `json:"check_out"`
	Available        bool     `json:"available"`
	Reason           string   `json:"reason,omitempty"`
	UnavailableDates []string `json:"unavailable_dates,omitempty"`
	// MinimumStay is the required nights for a stay starting on check-in.
	MinimumStay int `json:"minimum_stay"`
	// CheckoutDisabledDates is the checkout-picker view: the unavailable set
	// shifted forward one day (same-day turnover keeps a checkout day
	// selectable) plus the days before check-in + minimum stay. Populated
	// only when the checkout view is requested.
	CheckoutDisabledDates []string `json:"checkout_disabled_dates,omitempty"`
}
