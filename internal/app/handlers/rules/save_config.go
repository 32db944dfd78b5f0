package rulesapp

import (
	"context"
	"log/slog"
	"time"

	"staycal/internal/app/commands"
	calendarapp "staycal/internal/app/handlers/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

const saveConfigKey = "rules.save_config"

// SaveConfigCommand replaces a property's pricing configuration and
// regenerates the calendar horizon so the change is bookable immediately.
type SaveConfigCommand struct {
	Config        rules.PropertyPricingConfig
	HorizonMonths int
}

func (c SaveConfigCommand) Key() string { return saveConfigKey }

type SaveConfigResult struct {
	PropertyID        string `json:"property_id"`
	MonthsRegenerated int    `json:"months_regenerated"`
}

type SaveConfigHandler struct {
	Configs     rules.ConfigRepository
	Regenerator *calendarapp.RegenerateMonthHandler
	Logger      *slog.Logger
	Now         func() time.Time
}

func (h *SaveConfigHandler) Handle(ctx context.Context, cmd SaveConfigCommand) (*SaveConfigResult, error) {
	cfg := cmd.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = h.now()
	if err := h.Configs.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}

	months := cmd.HorizonMonths
	if months <= 0 {
		months = 1
	}
	regenerated := regenerateHorizon(ctx, h.Regenerator, h.Logger, cfg.PropertyID, dates.MonthOf(dates.FromTime(h.now())), months)
	return &SaveConfigResult{PropertyID: cfg.PropertyID, MonthsRegenerated: regenerated}, nil
}

// regenerateHorizon rebuilds consecutive months, logging failures instead
// of aborting: the rule write already succeeded, the calendar is a cache.
func regenerateHorizon(ctx context.Context, regen *calendarapp.RegenerateMonthHandler, logger *slog.Logger, propertyID string, from dates.MonthKey, months int) int {
	if regen == nil {
		return 0
	}
	done := 0
	key := from
	for i := 0; i < months; i++ {
		_, err := regen.Handle(ctx, calendarapp.RegenerateMonthCommand{PropertyID: propertyID, Month: key})
		if err != nil {
			if logger != nil {
				logger.Error("regeneration after rule change failed", "property_id", propertyID, "month", key.String(), "error", err)
			}
		} else {
			done++
		}
		key = key.Next()
	}
	return done
}

func (h *SaveConfigHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[SaveConfigCommand, *SaveConfigResult] = (*SaveConfigHandler)(nil)
