package calendar

import (
	"fmt"
	"time"

	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// PriceSource names the rule stage that produced a day's price.
type PriceSource string

const (
	SourceBase     PriceSource = "base"
	SourceWeekend  PriceSource = "weekend"
	SourceSeason   PriceSource = "season"
	SourceOverride PriceSource = "override"
)

// DayEntry is the fully resolved price and availability of one property on
// one date. PricesByOccupancy holds an entry for every guest count from 1
// through the property's max guests.
type DayEntry struct {
	BaseOccupancyPrice money.Money           `bson:"base_occupancy_price" json:"base_occupancy_price"`
	PricesByOccupancy  map[int]money.Money   `bson:"prices_by_occupancy" json:"prices_by_occupancy"`
	Available          bool                  `bson:"available" json:"available"`
	MinimumStay        int                   `bson:"minimum_stay" json:"minimum_stay"`
	PriceSource        PriceSource           `bson:"price_source" json:"price_source"`
	SourceRef          string                `bson:"source_ref,omitempty" json:"source_ref,omitempty"`
	// LockRef carries the booking or hold that blocked the day. Regeneration
	// must not resurrect inventory while it is set.
	LockRef string `bson:"lock_ref,omitempty" json:"lock_ref,omitempty"`
}

// Summary aggregates a month for fast admin display.
type Summary struct {
	MinPrice        money.Money `bson:"min_price" json:"min_price"`
	MaxPrice        money.Money `bson:"max_price" json:"max_price"`
	AvgPrice        money.Money `bson:"avg_price" json:"avg_price"`
	UnavailableDays int         `bson:"unavailable_days" json:"unavailable_days"`
	ModifiedDays    int         `bson:"modified_days" json:"modified_days"`
}

// CalendarMonth is the materialized pricing calendar of one property for
// one month, regenerated wholesale from the rule store and patched in
// place by bookings and manual day edits.
type CalendarMonth struct {
	ID          string           `bson:"_id" json:"id"`
	PropertyID  string           `bson:"property_id" json:"property_id"`
	Month       dates.MonthKey   `bson:"month" json:"month"`
	Days        map[int]DayEntry `bson:"days" json:"days"`
	Summary     Summary          `bson:"summary" json:"summary"`
	GeneratedAt time.Time        `bson:"generated_at" json:"generated_at"`
	Version     int64            `bson:"version" json:"version"`
}

// MonthID is the deterministic document key {propertyId}_{YYYY-MM}.
func MonthID(propertyID string, key dates.MonthKey) string {
	return fmt.Sprintf("%s_%s", propertyID, key)
}

// Entry returns the day entry for a date belonging to this month.
func (m *CalendarMonth) Entry(d dates.Date) (DayEntry, bool) {
	if dates.MonthOf(d) != m.Month {
		return DayEntry{}, false
	}
	entry, ok := m.Days[d.Day]
	return entry, ok
}

// SetEntry stores the entry and keeps the summary current.
func (m *CalendarMonth) SetEntry(day int, entry DayEntry) {
	if m.Days == nil {
		m.Days = make(map[int]DayEntry)
	}
	m.Days[day] = entry
	m.Summary = summarize(m.Days)
}

func summarize(days map[int]DayEntry) Summary {
	var s Summary
	var sum int64
	n := 0
	for day := 1; day <= 31; day++ {
		entry, ok := days[day]
		if !ok {
			continue
		}
		price := entry.BaseOccupancyPrice
		if n == 0 || price.Amount < s.MinPrice.Amount {
			s.MinPrice = price
		}
		if n == 0 || price.Amount > s.MaxPrice.Amount {
			s.MaxPrice = price
		}
		sum += price.Amount
		n++
		if !entry.Available {
			s.UnavailableDays++
		}
		if entry.PriceSource == SourceOverride {
			s.ModifiedDays++
		}
	}
	if n > 0 {
		s.AvgPrice = money.Money{Amount: sum / int64(n), Currency: s.MinPrice.Currency}
	}
	return s
}
