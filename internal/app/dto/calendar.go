package dto

import (
	"sort"

	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/dates"
)

type CalendarDay struct {
	Date              string        `json:"date"`
	BasePriceCents    int64         `json:"base_price_cents"`
	PricesByOccupancy map[int]int64 `json:"prices_by_occupancy"`
	Available         bool          `json:"available"`
	MinimumStay       int           `json:"minimum_stay"`
	PriceSource       string        `json:"price_source"`
	SourceRef         string        `json:"source_ref,omitempty"`
}

type CalendarSummary struct {
	MinPriceCents   int64 `json:"min_price_cents"`
	MaxPriceCents   int64 `json:"max_price_cents"`
	AvgPriceCents   int64 `json:"avg_price_cents"`
	UnavailableDays int   `json:"unavailable_days"`
	ModifiedDays    int   `json:"modified_days"`
}

type CalendarMonth struct {
	PropertyID string          `json:"property_id"`
	Month      string          `json:"month"`
	Currency   string          `json:"currency"`
	Days       []CalendarDay   `json:"days"`
	Summary    CalendarSummary `json:"summary"`
}

// MapCalendarMonth flattens a month document for admin display, days in
// order.
func MapCalendarMonth(doc *calendar.CalendarMonth) CalendarMonth {
	if doc == nil {
		return CalendarMonth{}
	}
	out := CalendarMonth{
		PropertyID: doc.PropertyID,
		Month:      doc.Month.String(),
		Currency:   doc.Summary.MinPrice.Currency,
		Summary: CalendarSummary{
			MinPriceCents:   doc.Summary.MinPrice.Amount,
			MaxPriceCents:   doc.Summary.MaxPrice.Amount,
			AvgPriceCents:   doc.Summary.AvgPrice.Amount,
			UnavailableDays: doc.Summary.UnavailableDays,
			ModifiedDays:    doc.Summary.ModifiedDays,
		},
	}
	days := make([]int, 0, len(doc.Days))
	for day := range doc.Days {
		days = append(days, day)
	}
	sort.Ints(days)
	for _, day := range days {
		entry := doc.Days[day]
		prices := make(map[int]int64, len(entry.PricesByOccupancy))
		for g, p := range entry.PricesByOccupancy {
			prices[g] = p.Amount
		}
		out.Days = append(out.Days, CalendarDay{
			Date:              dates.NewDate(doc.Month.Year, doc.Month.Month, day).String(),
			BasePriceCents:    entry.BaseOccupancyPrice.Amount,
			PricesByOccupancy: prices,
			Available:         entry.Available,
			MinimumStay:       entry.MinimumStay,
			PriceSource:       string(entry.PriceSource),
			SourceRef:         entry.SourceRef,
		})
	}
	return out
}
