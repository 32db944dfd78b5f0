package calendarapp

import (
	"context"
	"errors"
	"time"

	"staycal/internal/app/commands"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/booking"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/events"
)

const regenerateMonthKey = "calendar.regenerate_month"

type RegenerateMonthCommand struct {
	PropertyID string
	Month      dates.MonthKey
}

func (c RegenerateMonthCommand) Key() string { return regenerateMonthKey }

type RegenerateMonthResult struct {
	PropertyID string `json:"property_id"`
	Month      string `json:"month"`
	Days       int    `json:"days"`
}

type RegenerateMonthHandler struct {
	Configs   rules.ConfigRepository
	Seasons   rules.SeasonRepository
	Overrides rules.OverrideRepository
	Bookings  booking.Repository
	Calendars calendar.Repository
	Generator *calendar.Generator
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Now       func() time.Time
}

// Handle materializes one month from the current rule-store state. A
// configuration error aborts before any write, so the previous document
// stays in effect until the config is fixed.
func (h *RegenerateMonthHandler) Handle(ctx context.Context, cmd RegenerateMonthCommand) (*RegenerateMonthResult, error) {
	snap, prevVersion, err := h.snapshot(ctx, cmd.PropertyID, cmd.Month)
	if err != nil {
		return nil, err
	}

	doc, err := h.Generator.Generate(cmd.PropertyID, cmd.Month, snap)
	if err != nil {
		return nil, err
	}
	doc.Version = prevVersion

	if err := h.Calendars.Replace(ctx, doc); err != nil {
		return nil, err
	}

	evt := calendar.CalendarRegenerated{
		PropertyID: cmd.PropertyID,
		Month:      cmd.Month,
		Days:       len(doc.Days),
		At:         h.now(),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{evt}); err != nil {
		return nil, err
	}

	return &RegenerateMonthResult{
		PropertyID: cmd.PropertyID,
		Month:      cmd.Month.String(),
		Days:       len(doc.Days),
	}, nil
}

// snapshot assembles the explicit rule-state input for the generator,
// including the locked-day set from the existing document and from active
// bookings so regeneration cannot resurrect blocked inventory.
func (h *RegenerateMonthHandler) snapshot(ctx context.Context, propertyID string, month dates.MonthKey) (calendar.RuleSnapshot, int64, error) {
	cfg, err := h.Configs.Config(ctx, propertyID)
	if err != nil {
		return calendar.RuleSnapshot{}, 0, err
	}
	seasons, err := h.Seasons.SeasonsOverlapping(ctx, propertyID, month)
	if err != nil {
		return calendar.RuleSnapshot{}, 0, err
	}
	overrides, err := h.Overrides.OverridesInMonth(ctx, propertyID, month)
	if err != nil {
		return calendar.RuleSnapshot{}, 0, err
	}

	locked := make(map[int]string)
	var prevVersion int64
	existing, err := h.Calendars.Month(ctx, propertyID, month)
	switch {
	case err == nil:
		prevVersion = existing.Version
		for day, entry := range existing.Days {
			if !entry.Available && entry.LockRef != "" {
				locked[day] = entry.LockRef
			}
		}
	case errors.Is(err, calendar.ErrMonthNotFound):
	default:
		return calendar.RuleSnapshot{}, 0, err
	}

	if h.Bookings != nil {
		active, err := h.Bookings.ActiveInMonth(ctx, propertyID, month)
		if err != nil {
			return calendar.RuleSnapshot{}, 0, err
		}
		for _, b := range active {
			for _, day := range b.Stay.Days() {
				if dates.MonthOf(day) == month {
					locked[day.Day] = string(b.ID)
				}
			}
		}
	}

	return calendar.RuleSnapshot{
		Config:    cfg,
		Seasons:   seasons,
		Overrides: overrides,
		Locked:    locked,
	}, prevVersion, nil
}

func (h *RegenerateMonthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RegenerateMonthCommand, *RegenerateMonthResult] = (*RegenerateMonthHandler)(nil)
