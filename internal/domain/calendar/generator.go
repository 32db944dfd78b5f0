package calendar

import (
	"time"

	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// RuleSnapshot is an explicit, self-contained picture of the rule store
// for one property and month. The generator reads nothing else, which
// keeps it a pure function and unit-testable without a database.
type RuleSnapshot struct {
	Config    rules.PropertyPricingConfig
	Seasons   []rules.SeasonalPricingPeriod
	Overrides []rules.DateOverride
	// Locked maps day-of-month to the booking or hold reference currently
	// blocking it. The generator never resurrects these days.
	Locked map[int]string
}

// Generator materializes CalendarMonth documents from rule snapshots.
type Generator struct {
	stages []stage
	Now    func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{stages: defaultStages(), Now: time.Now}
}

// Generate resolves every day of the month through the stage pipeline and
// expands per-occupancy prices. Deterministic: the same snapshot always
// yields the same Days map. A config failing validation aborts before any
// day is produced.
func (g *Generator) Generate(propertyID string, month dates.MonthKey, snap RuleSnapshot) (*CalendarMonth, error) {
	if err := snap.Config.Validate(); err != nil {
		return nil, err
	}

	overridesByDay := make(map[int]*rules.DateOverride, len(snap.Overrides))
	for i := range snap.Overrides {
		o := snap.Overrides[i]
		if dates.MonthOf(o.Date) == month {
			overridesByDay[o.Date.Day] = &snap.Overrides[i]
		}
	}

	doc := &CalendarMonth{
		ID:          MonthID(propertyID, month),
		PropertyID:  propertyID,
		Month:       month,
		Days:        make(map[int]DayEntry),
		GeneratedAt: g.now(),
	}

	for day := 1; day <= month.DaysInMonth(); day++ {
		date := dates.NewDate(month.Year, month.Month, day)
		res := resolveDay(g.stages, dayInput{
			Date:     date,
			Config:   snap.Config,
			Seasons:  snap.Seasons,
			Override: overridesByDay[day],
		})

		entry := DayEntry{
			BaseOccupancyPrice: res.Price,
			PricesByOccupancy:  expandOccupancy(res, snap.Config),
			MinimumStay:        res.MinimumStay,
			PriceSource:        res.Source,
			SourceRef:          res.SourceRef,
			Available:          !res.Blocked,
		}
		if ref, locked := snap.Locked[day]; locked {
			entry.Available = false
			entry.LockRef = ref
		}
		doc.Days[day] = entry
	}
	doc.Summary = summarize(doc.Days)
	return doc, nil
}

// ResolveEntry runs the stage pipeline for a single date. Used by the
// day-patch path so a manual edit lands in the calendar exactly as a full
// regeneration would place it.
func (g *Generator) ResolveEntry(date dates.Date, snap RuleSnapshot) (DayEntry, error) {
	if err := snap.Config.Validate(); err != nil {
		return DayEntry{}, err
	}
	var override *rules.DateOverride
	for i := range snap.Overrides {
		if snap.Overrides[i].Date == date {
			override = &snap.Overrides[i]
			break
		}
	}
	res := resolveDay(g.stages, dayInput{
		Date:     date,
		Config:   snap.Config,
		Seasons:  snap.Seasons,
		Override: override,
	})
	entry := DayEntry{
		BaseOccupancyPrice: res.Price,
		PricesByOccupancy:  expandOccupancy(res, snap.Config),
		MinimumStay:        res.MinimumStay,
		PriceSource:        res.Source,
		SourceRef:          res.SourceRef,
		Available:          !res.Blocked,
	}
	if ref, locked := snap.Locked[date.Day]; locked {
		entry.Available = false
		entry.LockRef = ref
	}
	return entry, nil
}

// expandOccupancy prices every guest count from 1 through max guests.
// Guests beyond the base occupancy pay the extra-guest fee per night,
// except on flat-rate override days where the custom price applies to all.
func expandOccupancy(res resolution, cfg rules.PropertyPricingConfig) map[int]money.Money {
	out := make(map[int]money.Money, cfg.MaxGuests)
	for g := 1; g <= cfg.MaxGuests; g++ {
		if res.FlatRate || g <= cfg.BaseOccupancy {
			out[g] = res.Price
			continue
		}
		extra := cfg.ExtraGuestFeePerNight.Multiply(int64(g - cfg.BaseOccupancy))
		out[g] = money.Money{Amount: res.Price.Amount + extra.Amount, Currency: res.Price.Currency}
	}
	return out
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}
