package rulesapp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staycal/internal/app/apperr"
	"staycal/internal/app/commands"
	calendarapp "staycal/internal/app/handlers/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

const (
	saveSeasonKey    = "rules.save_season"
	disableSeasonKey = "rules.disable_season"
)

// SaveSeasonCommand creates or updates a seasonal pricing period and
// regenerates the months it spans.
type SaveSeasonCommand struct {
	Season rules.SeasonalPricingPeriod
}

func (c SaveSeasonCommand) Key() string { return saveSeasonKey }

type SaveSeasonResult struct {
	SeasonID          string `json:"season_id"`
	MonthsRegenerated int    `json:"months_regenerated"`
}

type SaveSeasonHandler struct {
	Seasons     rules.SeasonRepository
	Regenerator *calendarapp.RegenerateMonthHandler
	Logger      *slog.Logger
	Now         func() time.Time
}

func (h *SaveSeasonHandler) Handle(ctx context.Context, cmd SaveSeasonCommand) (*SaveSeasonResult, error) {
	season := cmd.Season
	if season.PropertyID == "" {
		return nil, apperr.Validation("property id required")
	}
	if season.StartDate.IsZero() || season.EndDate.IsZero() || season.EndDate.Before(season.StartDate) {
		return nil, apperr.Validation("season end date must not precede start date")
	}
	if season.PriceMultiplier <= 0 {
		return nil, apperr.Validation("price multiplier must be positive")
	}
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if season.CreatedAt.IsZero() {
		season.CreatedAt = h.now()
	}
	if err := h.Seasons.SaveSeason(ctx, season); err != nil {
		return nil, err
	}

	regenerated := h.regenerateSpan(ctx, season)
	return &SaveSeasonResult{SeasonID: season.ID, MonthsRegenerated: regenerated}, nil
}

func (h *SaveSeasonHandler) regenerateSpan(ctx context.Context, season rules.SeasonalPricingPeriod) int {
	first := dates.MonthOf(season.StartDate)
	last := dates.MonthOf(season.EndDate)
	months := 1
	for key := first; key != last; key = key.Next() {
		months++
	}
	return regenerateHorizon(ctx, h.Regenerator, h.Logger, season.PropertyID, first, months)
}

func (h *SaveSeasonHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// DisableSeasonCommand soft-disables a period; periods are never removed
// physically.
type DisableSeasonCommand struct {
	PropertyID string
	SeasonID   string
}

func (c DisableSeasonCommand) Key() string { return disableSeasonKey }

type DisableSeasonHandler struct {
	Seasons     rules.SeasonRepository
	Regenerator *calendarapp.RegenerateMonthHandler
	Logger      *slog.Logger
	Now         func() time.Time
	Horizon     int
}

func (h *DisableSeasonHandler) Handle(ctx context.Context, cmd DisableSeasonCommand) (*SaveSeasonResult, error) {
	if err := h.Seasons.DisableSeason(ctx, cmd.PropertyID, cmd.SeasonID); err != nil {
		return nil, err
	}
	months := h.Horizon
	if months <= 0 {
		months = 12
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	regenerated := regenerateHorizon(ctx, h.Regenerator, h.Logger, cmd.PropertyID, dates.MonthOf(dates.FromTime(now)), months)
	return &SaveSeasonResult{SeasonID: cmd.SeasonID, MonthsRegenerated: regenerated}, nil
}

var (
	_ commands.Handler[SaveSeasonCommand, *SaveSeasonResult]    = (*SaveSeasonHandler)(nil)
	_ commands.Handler[DisableSeasonCommand, *SaveSeasonResult] = (*DisableSeasonHandler)(nil)
)
