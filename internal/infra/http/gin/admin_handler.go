package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/commands"
	calendarapp "staycal/internal/app/handlers/calendar"
	rulesapp "staycal/internal/app/handlers/rules"
	domainrules "staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// AdminHandler exposes the rule-store write surface plus direct reads for
// admin display. Writes go through the command bus so regeneration side
// effects stay in the application layer.
type AdminHandler struct {
	Commands      commands.Bus
	Configs       domainrules.ConfigRepository
	Seasons       domainrules.SeasonRepository
	HorizonMonths int
}

type pricingConfigRequest struct {
	BasePriceCents              int64    `json:"base_price_cents"`
	Currency                    string   `json:"currency"`
	BaseOccupancy               int      `json:"base_occupancy"`
	MaxGuests                   int      `json:"max_guests"`
	ExtraGuestFeeCents          int64    `json:"extra_guest_fee_cents"`
	CleaningFeeCents            int64    `json:"cleaning_fee_cents"`
	WeekendAdjustmentMultiplier float64  `json:"weekend_adjustment_multiplier"`
	WeekendDays                 []string `json:"weekend_days"`
	DefaultMinimumStay          int      `json:"default_minimum_stay"`
	DiscountTiers               []struct {
		NightsThreshold    int     `json:"nights_threshold"`
		DiscountPercentage float64 `json:"discount_percentage"`
		Enabled            bool    `json:"enabled"`
	} `json:"discount_tiers"`
}

func (h AdminHandler) PutConfig(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	var req pricingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := domainrules.PropertyPricingConfig{
		PropertyID:                  c.Param("id"),
		BasePricePerNight:           money.Money{Amount: req.BasePriceCents, Currency: req.Currency},
		BaseOccupancy:               req.BaseOccupancy,
		MaxGuests:                   req.MaxGuests,
		ExtraGuestFeePerNight:       money.Money{Amount: req.ExtraGuestFeeCents, Currency: req.Currency},
		CleaningFee:                 money.Money{Amount: req.CleaningFeeCents, Currency: req.Currency},
		WeekendAdjustmentMultiplier: req.WeekendAdjustmentMultiplier,
		DefaultMinimumStay:          req.DefaultMinimumStay,
	}
	for _, name := range req.WeekendDays {
		day, err := domainrules.ParseWeekday(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.WeekendDays = append(cfg.WeekendDays, day)
	}
	for _, tier := range req.DiscountTiers {
		cfg.DiscountTiers = append(cfg.DiscountTiers, domainrules.LengthOfStayDiscountTier{
			NightsThreshold:    tier.NightsThreshold,
			DiscountPercentage: tier.DiscountPercentage,
			Enabled:            tier.Enabled,
		})
	}
	cmd := rulesapp.SaveConfigCommand{Config: cfg, HorizonMonths: h.HorizonMonths}
	result, err := commands.Dispatch[rulesapp.SaveConfigCommand, *rulesapp.SaveConfigResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) GetConfig(c *gin.Context) {
	if h.Configs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	cfg, err := h.Configs.Config(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type seasonRequest struct {
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	SeasonType      string  `json:"season_type"`
	PriceMultiplier float64 `json:"price_multiplier"`
	MinStayOverride int     `json:"min_stay_override"`
}

func (h AdminHandler) PostSeason(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	var req seasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startDate, ok := dateParam(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	endDate, ok := dateParam(c, "end_date", req.EndDate)
	if !ok {
		return
	}
	seasonType, err := domainrules.ParseSeasonType(req.SeasonType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := rulesapp.SaveSeasonCommand{Season: domainrules.SeasonalPricingPeriod{
		PropertyID:      c.Param("id"),
		StartDate:       startDate,
		EndDate:         endDate,
		SeasonType:      seasonType,
		PriceMultiplier: req.PriceMultiplier,
		MinStayOverride: req.MinStayOverride,
		Enabled:         true,
	}}
	result, err := commands.Dispatch[rulesapp.SaveSeasonCommand, *rulesapp.SaveSeasonResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) ListSeasons(c *gin.Context) {
	if h.Seasons == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	key, ok := monthParam(c, "month", c.Query("month"))
	if !ok {
		return
	}
	seasons, err := h.Seasons.SeasonsOverlapping(c.Request.Context(), c.Param("id"), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": seasons})
}

func (h AdminHandler) DisableSeason(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	cmd := rulesapp.DisableSeasonCommand{
		PropertyID: c.Param("id"),
		SeasonID:   c.Param("seasonId"),
	}
	result, err := commands.Dispatch[rulesapp.DisableSeasonCommand, *rulesapp.SaveSeasonResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type patchDayRequest struct {
	PriceCents  int64  `json:"price_cents"`
	Available   *bool  `json:"available"`
	MinimumStay int    `json:"minimum_stay"`
	FlatRate    bool   `json:"flat_rate"`
	Reason      string `json:"reason"`
}

func (h AdminHandler) PatchDay(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	day, ok := dateParam(c, "date", c.Param("date"))
	if !ok {
		return
	}
	var req patchDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	cmd := calendarapp.PatchDayCommand{
		PropertyID:  c.Param("id"),
		Date:        day,
		PriceCents:  req.PriceCents,
		Available:   available,
		MinimumStay: req.MinimumStay,
		FlatRate:    req.FlatRate,
		Reason:      req.Reason,
	}
	result, err := commands.Dispatch[calendarapp.PatchDayCommand, *calendarapp.PatchDayResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClearDay removes the manual edit on a date, handing the day back to the
// rule-derived calendar.
func (h AdminHandler) ClearDay(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	day, ok := dateParam(c, "date", c.Param("date"))
	if !ok {
		return
	}
	cmd := calendarapp.ClearDayCommand{PropertyID: c.Param("id"), Date: day}
	result, err := commands.Dispatch[calendarapp.ClearDayCommand, *calendarapp.ClearDayResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) Regenerate(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return
	}
	months := parseIntWithDefault(c.Query("months"), 1)
	if months < 1 || months > 24 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 24"})
		return
	}
	propertyID := c.Param("id")
	key := dates.MonthOf(dates.FromTime(timeNow()))
	results := make([]*calendarapp.RegenerateMonthResult, 0, months)
	for i := 0; i < months; i++ {
		cmd := calendarapp.RegenerateMonthCommand{PropertyID: propertyID, Month: key}
		result, err := commands.Dispatch[calendarapp.RegenerateMonthCommand, *calendarapp.RegenerateMonthResult](c.Request.Context(), h.Commands, cmd)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, result)
		key = key.Next()
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

var _ AdminHTTP = AdminHandler{}
