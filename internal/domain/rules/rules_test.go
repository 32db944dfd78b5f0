package rules

import (
	"testing"
	"time"

	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

func validConfig() PropertyPricingConfig {
	return PropertyPricingConfig{
		PropertyID:         "prop-1",
		BasePricePerNight:  money.Money{Amount: 18000, Currency: "USD"},
		BaseOccupancy:      2,
		MaxGuests:          4,
		DefaultMinimumStay: 1,
	}
}

func TestConfigValidateListsAllMissingFields(t *testing.T) {
	cfg := PropertyPricingConfig{PropertyID: "prop-1"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	want := []string{"base_price_per_night", "base_currency", "base_occupancy", "max_guests", "default_minimum_stay"}
	if len(cfgErr.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", cfgErr.Missing, want)
	}
}

func TestConfigValidateGuestBounds(t *testing.T) {
	cfg := validConfig()
	cfg.MaxGuests = 1 // below base occupancy
	if err := cfg.Validate(); err == nil {
		t.Fatal("max guests below base occupancy must fail")
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestBestDiscountTier(t *testing.T) {
	cfg := validConfig()
	cfg.DiscountTiers = []LengthOfStayDiscountTier{
		{NightsThreshold: 7, DiscountPercentage: 5, Enabled: true},
		{NightsThreshold: 14, DiscountPercentage: 10, Enabled: true},
		{NightsThreshold: 28, DiscountPercentage: 15, Enabled: true},
	}

	tests := []struct {
		nights  int
		wantPct float64
		wantOK  bool
	}{
		{3, 0, false},
		{7, 5, true},
		{10, 5, true},
		{14, 10, true},
		{30, 15, true},
	}
	for _, tt := range tests {
		tier, ok := cfg.BestDiscountTier(tt.nights)
		if ok != tt.wantOK {
			t.Errorf("nights=%d ok=%v, want %v", tt.nights, ok, tt.wantOK)
			continue
		}
		if ok && tier.DiscountPercentage != tt.wantPct {
			t.Errorf("nights=%d pct=%v, want %v", tt.nights, tier.DiscountPercentage, tt.wantPct)
		}
	}
}

func TestBestDiscountTierSkipsDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.DiscountTiers = []LengthOfStayDiscountTier{
		{NightsThreshold: 7, DiscountPercentage: 5, Enabled: true},
		{NightsThreshold: 7, DiscountPercentage: 20, Enabled: false},
	}
	tier, ok := cfg.BestDiscountTier(8)
	if !ok || tier.DiscountPercentage != 5 {
		t.Fatalf("tier = %+v ok=%v", tier, ok)
	}
}

func TestSelectSeasonPrecedence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	low := SeasonalPricingPeriod{
		ID: "low", SeasonType: SeasonLow, Enabled: true,
		StartDate: dates.MustParse("2026-06-01"), EndDate: dates.MustParse("2026-06-30"),
		CreatedAt: base,
	}
	high := SeasonalPricingPeriod{
		ID: "high", SeasonType: SeasonHigh, Enabled: true,
		StartDate: dates.MustParse("2026-06-10"), EndDate: dates.MustParse("2026-06-20"),
		CreatedAt: base,
	}
	highNewer := high
	highNewer.ID = "high-newer"
	highNewer.CreatedAt = base.Add(24 * time.Hour)

	d := dates.MustParse("2026-06-15")

	if got, ok := SelectSeason([]SeasonalPricingPeriod{low, high}, d); !ok || got.ID != "high" {
		t.Fatalf("got %+v ok=%v, want high", got, ok)
	}
	if got, ok := SelectSeason([]SeasonalPricingPeriod{high, highNewer}, d); !ok || got.ID != "high-newer" {
		t.Fatalf("tie must go to the later-created period, got %s", got.ID)
	}

	disabled := high
	disabled.Enabled = false
	if got, ok := SelectSeason([]SeasonalPricingPeriod{disabled, low}, d); !ok || got.ID != "low" {
		t.Fatalf("disabled periods must not win, got %s", got.ID)
	}
	if _, ok := SelectSeason([]SeasonalPricingPeriod{low}, dates.MustParse("2026-07-01")); ok {
		t.Fatal("no covering period must return false")
	}
}

func TestParseSeasonType(t *testing.T) {
	for name, want := range map[string]SeasonType{
		"minimum": SeasonMinimum,
		"low":     SeasonLow,
		"High":    SeasonHigh,
	} {
		got, err := ParseSeasonType(name)
		if err != nil || got != want {
			t.Errorf("ParseSeasonType(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseSeasonType("ultra"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCouponUsable(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	c := Coupon{
		Code:       "SUMMER10",
		PercentOff: 10,
		ValidFrom:  now.AddDate(0, 0, -5),
		ValidTo:    now.AddDate(0, 0, 5),
		Enabled:    true,
	}
	if !c.Usable(now) {
		t.Fatal("coupon inside its window must be usable")
	}
	if c.Usable(now.AddDate(0, 0, 10)) {
		t.Fatal("expired coupon must not be usable")
	}
	c.Enabled = false
	if c.Usable(now) {
		t.Fatal("disabled coupon must not be usable")
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  summer10 "); got != "SUMMER10" {
		t.Fatalf("NormalizeCode = %q", got)
	}
}
