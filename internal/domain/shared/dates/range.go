package dates

import "errors"

var ErrInvalidRange = errors.New("dates: checkout must be after checkin")

// StayRange represents a half-open stay interval [CheckIn, CheckOut): the
// guest occupies every night from check-in up to but not including the
// check-out day.
type StayRange struct {
	CheckIn  Date `bson:"check_in" json:"check_in"`
	CheckOut Date `bson:"check_out" json:"check_out"`
}

func NewStayRange(checkIn, checkOut Date) (StayRange, error) {
	r := StayRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return StayRange{}, err
	}
	return r, nil
}

func (r StayRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the number of occupied nights.
func (r StayRange) Nights() int {
	return r.CheckIn.DaysUntil(r.CheckOut)
}

// Contains reports whether the date is an occupied night of the stay. The
// check-out day itself is not occupied, which is what makes same-day
// turnover bookings possible.
func (r StayRange) Contains(d Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

func (r StayRange) Overlaps(other StayRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Days returns the occupied days in order.
func (r StayRange) Days() []Date {
	out := make([]Date, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Months returns the keys of every month the stay touches, check-out month
// included only when a night falls in it.
func (r StayRange) Months() []MonthKey {
	var out []MonthKey
	seen := map[MonthKey]struct{}{}
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		k := MonthOf(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
