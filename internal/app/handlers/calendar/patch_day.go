package calendarapp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staycal/internal/app/apperr"
	"staycal/internal/app/commands"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/events"
	"staycal/internal/domain/shared/money"
)

const patchDayKey = "calendar.patch_day"

// PatchDayCommand is the admin manual day edit: price, availability, and
// minimum stay for one date.
type PatchDayCommand struct {
	PropertyID  string
	Date        dates.Date
	PriceCents  int64
	Available   bool
	MinimumStay int
	FlatRate    bool
	Reason      string
}

func (c PatchDayCommand) Key() string { return patchDayKey }

type PatchDayResult struct {
	PropertyID string `json:"property_id"`
	Date       string `json:"date"`
	// CalendarStale is set when the override was persisted but the derived
	// calendar entry could not be written; the next regeneration heals it.
	CalendarStale bool `json:"calendar_stale,omitempty"`
}

type PatchDayHandler struct {
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

// Handle performs a dual write: the override table is the source
// of truth and is written first; the calendar is a rebuildable cache, so a
// failed cache write is logged and the operation still succeeds.
func (h *PatchDayHandler) Handle(ctx context.Context, cmd PatchDayCommand) (*PatchDayResult, error) {
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
	if cmd.PriceCents < 0 {
		return nil, apperr.Validation("custom price must not be negative")
	}
	// A patch with no price is allowed only when it blocks the day.
	if cmd.PriceCents == 0 && cmd.Available {
		return nil, apperr.Validation("custom price required for an available day")
	}

	now := h.now()
	override := rules.DateOverride{
		PropertyID:      cmd.PropertyID,
		Date:            cmd.Date,
		CustomPrice:     money.Money{Amount: cmd.PriceCents, Currency: cfg.BasePricePerNight.Currency},
		Available:       cmd.Available,
		MinStayOverride: cmd.MinimumStay,
		FlatRate:        cmd.FlatRate,
		Reason:          cmd.Reason,
		UpdatedAt:       now,
	}.WithID()

	if err := h.Overrides.SaveOverride(ctx, override); err != nil {
		return nil, err
	}

	result := &PatchDayResult{PropertyID: cmd.PropertyID, Date: cmd.Date.String()}
	if err := h.patchCalendar(ctx, cfg, override); err != nil {
		result.CalendarStale = true
		if h.Logger != nil {
			h.Logger.Error("calendar patch failed after override write, cache is stale",
				"property_id", cmd.PropertyID, "date", cmd.Date.String(), "error", err)
		}
	}

	evt := calendar.DayOverridden{PropertyID: cmd.PropertyID, Date: cmd.Date, Available: cmd.Available, At: now}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{evt}); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *PatchDayHandler) patchCalendar(ctx context.Context, cfg rules.PropertyPricingConfig, override rules.DateOverride) error {
	month := dates.MonthOf(override.Date)
	seasons, err := h.Seasons.SeasonsOverlapping(ctx, override.PropertyID, month)
	if err != nil {
		return err
	}

	// Booked days stay locked through a manual edit.
	locked := map[int]string{}
	existing, err := h.Calendars.Month(ctx, override.PropertyID, month)
	switch {
	case err == nil:
		if entry, ok := existing.Days[override.Date.Day]; ok && !entry.Available && entry.LockRef != "" {
			locked[override.Date.Day] = entry.LockRef
		}
	case errors.Is(err, calendar.ErrMonthNotFound):
		return err
	default:
		return err
	}

	entry, err := h.Generator.ResolveEntry(override.Date, calendar.RuleSnapshot{
		Config:    cfg,
		Seasons:   seasons,
		Overrides: []rules.DateOverride{override},
		Locked:    locked,
	})
	if err != nil {
		return err
	}
	return h.Calendars.PatchDay(ctx, override.PropertyID, month, override.Date.Day, entry)
}

func (h *PatchDayHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[PatchDayCommand, *PatchDayResult] = (*PatchDayHandler)(nil)
