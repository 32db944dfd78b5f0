package availability

import (
	"context"

	"staycal/internal/app/apperr"
	"staycal/internal/app/dto"
	"staycal/internal/app/queries"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/dates"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	PropertyID string
	CheckIn    dates.Date
	CheckOut   dates.Date
	// CheckoutView derives the disabled-date set for a checkout picker
	// instead of the raw availability answer.
	CheckoutView bool
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	Calendars calendar.Repository
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityResult, error) {
	stay, err := dates.NewStayRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.AvailabilityResult{}, apperr.Validation("check-out must be after check-in")
	}

	months, err := h.Calendars.MonthsTouching(ctx, q.PropertyID, stay)
	if err != nil {
		return dto.AvailabilityResult{}, err
	}

	entries, err := collectEntries(q.PropertyID, stay, months)
	if err != nil {
		return dto.AvailabilityResult{}, err
	}

	result := dto.AvailabilityResult{
		PropertyID: q.PropertyID,
		CheckIn:    q.CheckIn.String(),
		CheckOut:   q.CheckOut.String(),
	}

	var unavailable []dates.Date
	for _, day := range stay.Days() {
		if !entries[day].Available {
			unavailable = append(unavailable, day)
		}
	}

	minStay := entries[q.CheckIn].MinimumStay
	if minStay < 1 {
		minStay = 1
	}
	result.MinimumStay = minStay

	switch {
	case len(unavailable) > 0:
		result.Reason = dto.ReasonUnavailableDates
		for _, d := range unavailable {
			result.UnavailableDates = append(result.UnavailableDates, d.String())
		}
	case stay.Nights() < minStay:
		result.Reason = dto.ReasonMinimumStay
	default:
		result.Available = true
	}

	if q.CheckoutView {
		result.CheckoutDisabledDates = checkoutDisabled(q.CheckIn, minStay, unavailable)
	}
	return result, nil
}

// collectEntries indexes the day entries a stay touches, surfacing a
// DataGapError when a month has no generated calendar.
func collectEntries(propertyID string, stay dates.StayRange, months []*calendar.CalendarMonth) (map[dates.Date]calendar.DayEntry, error) {
	byMonth := make(map[dates.MonthKey]*calendar.CalendarMonth, len(months))
	for _, m := range months {
		byMonth[m.Month] = m
	}
	out := make(map[dates.Date]calendar.DayEntry, stay.Nights())
	for _, day := range stay.Days() {
		doc, ok := byMonth[dates.MonthOf(day)]
		if !ok {
			return nil, &calendar.DataGapError{PropertyID: propertyID, Month: dates.MonthOf(day)}
		}
		entry, ok := doc.Entry(day)
		if !ok {
			return nil, &calendar.DataGapError{PropertyID: propertyID, Month: doc.Month}
		}
		out[day] = entry
	}
	return out, nil
}

// checkoutDisabled derives the checkout-picker view from the raw
// unavailable set. A night blocked on day D still allows checking out on D
// (same-day turnover), so each blocked date disables D+1 for checkout.
// Days at or before check-in + minimum stay are disabled as well.
func checkoutDisabled(checkIn dates.Date, minStay int, unavailable []dates.Date) []string {
	seen := map[dates.Date]struct{}{}
	var out []string
	add := func(d dates.Date) {
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d.String())
	}
	for i := 0; i < minStay; i++ {
		add(checkIn.AddDays(i))
	}
	for _, d := range unavailable {
		add(d.AddDays(1))
	}
	return out
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityResult] = (*CheckAvailabilityHandler)(nil)
