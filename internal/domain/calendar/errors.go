package calendar

import (
	"errors"
	"fmt"

	"staycal/internal/domain/shared/dates"
)

var (
	// ErrConcurrentUpdate signals a lost optimistic-concurrency race against
	// another writer of the same month document.
	ErrConcurrentUpdate = errors.New("calendar: concurrent update detected")
	ErrMonthNotFound    = errors.New("calendar: month not found")
	ErrDayNotFound      = errors.New("calendar: day entry not found")
)

// DataGapError reports a month that has not been generated yet. It is a
// system-state problem (regenerate to recover), distinct from a legitimate
// booking constraint.
type DataGapError struct {
	PropertyID string
	Month      dates.MonthKey
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("calendar: no calendar generated for property %s month %s", e.PropertyID, e.Month)
}
