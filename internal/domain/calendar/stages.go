package calendar

import (
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// dayInput is everything the resolver stages may consult for one date.
type dayInput struct {
	Date     dates.Date
	Config   rules.PropertyPricingConfig
	Seasons  []rules.SeasonalPricingPeriod
	Override *rules.DateOverride
}

// resolution is the running outcome of the stage pipeline for one date.
type resolution struct {
	Price       money.Money
	Source      PriceSource
	SourceRef   string
	MinimumStay int
	FlatRate    bool
	// Blocked is set when a stage forces the day unavailable independent of
	// bookings (an override with available=false).
	Blocked bool
}

// stage inspects a day and either refines the running resolution or
// declines. Stages run in ascending precedence order, so the last stage
// with an opinion wins.
type stage interface {
	Resolve(in dayInput, current resolution) (resolution, bool)
}

// defaultStages is the resolver precedence order: base, weekend, season,
// override. Later stages win.
func defaultStages() []stage {
	return []stage{baseStage{}, weekendStage{}, seasonStage{}, overrideStage{}}
}

type baseStage struct{}

func (baseStage) Resolve(in dayInput, current resolution) (resolution, bool) {
	current.Price = in.Config.BasePricePerNight
	current.Source = SourceBase
	current.MinimumStay = in.Config.DefaultMinimumStay
	return current, true
}

type weekendStage struct{}

func (weekendStage) Resolve(in dayInput, current resolution) (resolution, bool) {
	if !in.Config.IsWeekend(in.Date.Weekday()) || in.Config.WeekendAdjustmentMultiplier <= 0 {
		return current, false
	}
	current.Price = current.Price.Scale(in.Config.WeekendAdjustmentMultiplier)
	current.Source = SourceWeekend
	return current, true
}

type seasonStage struct{}

func (seasonStage) Resolve(in dayInput, current resolution) (resolution, bool) {
	period, ok := rules.SelectSeason(in.Seasons, in.Date)
	if !ok {
		return current, false
	}
	current.Price = current.Price.Scale(period.PriceMultiplier)
	current.Source = SourceSeason
	current.SourceRef = period.ID
	if period.MinStayOverride > 0 {
		current.MinimumStay = period.MinStayOverride
	}
	return current, true
}

type overrideStage struct{}

func (overrideStage) Resolve(in dayInput, current resolution) (resolution, bool) {
	if in.Override == nil {
		return current, false
	}
	o := *in.Override
	if o.CustomPrice.Amount > 0 {
		// Absolute price: everything the earlier stages computed is discarded.
		current.Price = o.CustomPrice
		current.FlatRate = o.FlatRate
	}
	current.Source = SourceOverride
	current.SourceRef = o.ID
	if o.MinStayOverride > 0 {
		current.MinimumStay = o.MinStayOverride
	}
	current.Blocked = !o.Available
	return current, true
}

func resolveDay(stages []stage, in dayInput) resolution {
	var current resolution
	for _, s := range stages {
		if next, ok := s.Resolve(in, current); ok {
			current = next
		}
	}
	if current.MinimumStay < 1 {
		current.MinimumStay = 1
	}
	return current
}
