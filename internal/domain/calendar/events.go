package calendar

import (
	"time"

	"staycal/internal/domain/shared/dates"
)

type CalendarRegenerated struct {
	PropertyID string
	Month      dates.MonthKey
	Days       int
	At         time.Time
}

func (e CalendarRegenerated) EventName() string     { return "calendar.regenerated" }
func (e CalendarRegenerated) AggregateID() string   { return MonthID(e.PropertyID, e.Month) }
func (e CalendarRegenerated) OccurredAt() time.Time { return e.At }

type DayOverridden struct {
	PropertyID string
	Date       dates.Date
	Available  bool
	At         time.Time
}

func (e DayOverridden) EventName() string   { return "calendar.day_overridden" }
func (e DayOverridden) AggregateID() string { return MonthID(e.PropertyID, dates.MonthOf(e.Date)) }
func (e DayOverridden) OccurredAt() time.Time { return e.At }

type DayOverrideCleared struct {
	PropertyID string
	Date       dates.Date
	At         time.Time
}

func (e DayOverrideCleared) EventName() string   { return "calendar.day_override_cleared" }
func (e DayOverrideCleared) AggregateID() string { return MonthID(e.PropertyID, dates.MonthOf(e.Date)) }
func (e DayOverrideCleared) OccurredAt() time.Time { return e.At }
