package bookingapp

import (
	"context"
	"errors"

	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

// lockDays marks the stay's nights within one month document unavailable,
// tagging each with the booking reference. It fails without mutating when
// any night is already blocked, which is what makes the read-check-flip
// atomic under the version CAS of Replace.
func lockDays(doc *calendar.CalendarMonth, stay dates.StayRange, ref string) ([]dates.Date, error) {
	var blocked []dates.Date
	for _, day := range stay.Days() {
		if dates.MonthOf(day) != doc.Month {
			continue
		}
		entry, ok := doc.Days[day.Day]
		if !ok {
			return nil, &calendar.DataGapError{PropertyID: doc.PropertyID, Month: doc.Month}
		}
		if !entry.Available {
			blocked = append(blocked, day)
		}
	}
	if len(blocked) > 0 {
		return blocked, nil
	}
	for _, day := range stay.Days() {
		if dates.MonthOf(day) != doc.Month {
			continue
		}
		entry := doc.Days[day.Day]
		entry.Available = false
		entry.LockRef = ref
		doc.SetEntry(day.Day, entry)
	}
	return nil, nil
}

// unlockDays releases the nights this booking locked. A day stays
// unavailable if a date override blocks it independent of bookings: the
// override always outranks booking-derived availability.
func unlockDays(ctx context.Context, overrides rules.OverrideRepository, doc *calendar.CalendarMonth, stay dates.StayRange, ref string) error {
	for _, day := range stay.Days() {
		if dates.MonthOf(day) != doc.Month {
			continue
		}
		entry, ok := doc.Days[day.Day]
		if !ok || entry.LockRef != ref {
			continue
		}
		entry.LockRef = ""
		entry.Available = true
		if overrides != nil {
			o, err := overrides.Override(ctx, doc.PropertyID, day)
			switch {
			case err == nil:
				entry.Available = o.Available
			case errors.Is(err, rules.ErrOverrideNotFound):
			default:
				return err
			}
		}
		doc.SetEntry(day.Day, entry)
	}
	return nil
}
