package calendarapp

import (
	"context"
	"log/slog"
	"time"

	"staycal/internal/app/apperr"
	"staycal/internal/app/commands"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/events"
)

const clearDayKey = "calendar.clear_day"

// ClearDayCommand removes the manual edit on one date, returning the day
// to its rule-derived price and availability.
type ClearDayCommand struct {
	PropertyID string
	Date       dates.Date
}

func (c ClearDayCommand) Key() string { return clearDayKey }

type ClearDayResult struct {
	PropertyID string `json:"property_id"`
	Date       string `json:"date"`
	// CalendarStale is set when the override was removed but the derived
	// calendar entry could not be rewritten; the next regeneration heals it.
	CalendarStale bool `json:"calendar_stale,omitempty"`
}

type ClearDayHandler struct {
	Configs   rules.ConfigRepository
	Seasons   rules.SeasonRepository
	Overrides rules.OverrideRepository
	Calendars calendar.Repository
	Generator *calendar.Generator
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Handle mirrors the dual write of a day patch in reverse: the override
// row is deleted first, then the cached calendar entry is re-resolved from
// the remaining rules. A failed cache write is logged, not fatal.
func (h *ClearDayHandler) Handle(ctx context.Context, cmd ClearDayCommand) (*ClearDayResult, error) {
	if cmd.Date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	cfg, err := h.Configs.Config(ctx, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := h.Overrides.DeleteOverride(ctx, cmd.PropertyID, cmd.Date); err != nil {
		return nil, err
	}

	result := &ClearDayResult{PropertyID: cmd.PropertyID, Date: cmd.Date.String()}
	if err := h.restoreCalendar(ctx, cfg, cmd); err != nil {
		result.CalendarStale = true
		if h.Logger != nil {
			h.Logger.Error("calendar rewrite failed after override delete, cache is stale",
				"property_id", cmd.PropertyID, "date", cmd.Date.String(), "error", err)
		}
	}

	evt := calendar.DayOverrideCleared{PropertyID: cmd.PropertyID, Date: cmd.Date, At: h.now()}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{evt}); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *ClearDayHandler) restoreCalendar(ctx context.Context, cfg rules.PropertyPricingConfig, cmd ClearDayCommand) error {
	month := dates.MonthOf(cmd.Date)
	seasons, err := h.Seasons.SeasonsOverlapping(ctx, cmd.PropertyID, month)
	if err != nil {
		return err
	}

	// Booked days stay locked through the clear.
	locked := map[int]string{}
	existing, err := h.Calendars.Month(ctx, cmd.PropertyID, month)
	if err != nil {
		return err
	}
	if entry, ok := existing.Days[cmd.Date.Day]; ok && !entry.Available && entry.LockRef != "" {
		locked[cmd.Date.Day] = entry.LockRef
	}

	entry, err := h.Generator.ResolveEntry(cmd.Date, calendar.RuleSnapshot{
		Config:  cfg,
		Seasons: seasons,
		Locked:  locked,
	})
	if err != nil {
		return err
	}
	return h.Calendars.PatchDay(ctx, cmd.PropertyID, month, cmd.Date.Day, entry)
}

func (h *ClearDayHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ClearDayCommand, *ClearDayResult] = (*ClearDayHandler)(nil)
