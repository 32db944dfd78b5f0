package calendar

import (
	"reflect"
	"testing"
	"time"

	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

func testConfig() rules.PropertyPricingConfig {
	return rules.PropertyPricingConfig{
		PropertyID:                  "prop-1",
		BasePricePerNight:           money.Money{Amount: 18000, Currency: "USD"},
		BaseOccupancy:               2,
		MaxGuests:                   5,
		ExtraGuestFeePerNight:       money.Money{Amount: 2500, Currency: "USD"},
		CleaningFee:                 money.Money{Amount: 5000, Currency: "USD"},
		WeekendAdjustmentMultiplier: 1.2,
		WeekendDays:                 []time.Weekday{time.Friday, time.Saturday},
		DefaultMinimumStay:          2,
	}
}

func fixedGenerator() *Generator {
	g := NewGenerator()
	g.Now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

// June 2026 starts on a Monday, so the 5th is a Friday and the 6th a
// Saturday.
var june = dates.MonthKey{Year: 2026, Month: time.June}

func TestGenerateBaseAndWeekendPrices(t *testing.T) {
	doc, err := fixedGenerator().Generate("prop-1", june, RuleSnapshot{Config: testConfig()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Days) != 30 {
		t.Fatalf("June must have 30 entries, got %d", len(doc.Days))
	}

	weekday := doc.Days[1] // Monday
	if weekday.BaseOccupancyPrice.Amount != 18000 || weekday.PriceSource != SourceBase {
		t.Fatalf("weekday = %+v", weekday)
	}
	if weekday.MinimumStay != 2 || !weekday.Available {
		t.Fatalf("weekday = %+v", weekday)
	}

	friday := doc.Days[5]
	if friday.BaseOccupancyPrice.Amount != 21600 {
		t.Fatalf("weekend price = %d, want 21600", friday.BaseOccupancyPrice.Amount)
	}
	if friday.PriceSource != SourceWeekend {
		t.Fatalf("weekend source = %s", friday.PriceSource)
	}
}

func TestGenerateSeasonCompoundsOnWeekend(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Seasons: []rules.SeasonalPricingPeriod{{
			ID:              "summer",
			PropertyID:      "prop-1",
			StartDate:       dates.MustParse("2026-06-01"),
			EndDate:         dates.MustParse("2026-08-31"),
			SeasonType:      rules.SeasonHigh,
			PriceMultiplier: 1.25,
			MinStayOverride: 3,
			Enabled:         true,
		}},
	}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	weekday := doc.Days[1]
	if weekday.BaseOccupancyPrice.Amount != 22500 {
		t.Fatalf("seasonal weekday = %d, want 22500", weekday.BaseOccupancyPrice.Amount)
	}
	if weekday.PriceSource != SourceSeason || weekday.SourceRef != "summer" {
		t.Fatalf("weekday = %+v", weekday)
	}
	if weekday.MinimumStay != 3 {
		t.Fatalf("seasonal min stay = %d, want 3", weekday.MinimumStay)
	}

	friday := doc.Days[5]
	if friday.BaseOccupancyPrice.Amount != 27000 {
		t.Fatalf("seasonal weekend = %d, want 27000", friday.BaseOccupancyPrice.Amount)
	}
}

func TestGenerateOverrideWinsOverEverything(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Seasons: []rules.SeasonalPricingPeriod{{
			ID:              "summer",
			PropertyID:      "prop-1",
			StartDate:       dates.MustParse("2026-06-01"),
			EndDate:         dates.MustParse("2026-06-30"),
			SeasonType:      rules.SeasonHigh,
			PriceMultiplier: 1.5,
			Enabled:         true,
		}},
		Overrides: []rules.DateOverride{{
			ID:          "prop-1_2026-06-05",
			PropertyID:  "prop-1",
			Date:        dates.MustParse("2026-06-05"),
			CustomPrice: money.Money{Amount: 30000, Currency: "USD"},
			Available:   true,
		}},
	}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	friday := doc.Days[5]
	if friday.BaseOccupancyPrice.Amount != 30000 {
		t.Fatalf("override price = %d, want 30000", friday.BaseOccupancyPrice.Amount)
	}
	if friday.PriceSource != SourceOverride {
		t.Fatalf("source = %s", friday.PriceSource)
	}
}

func TestGenerateBlockingOverrideKeepsResolvedPrice(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Overrides: []rules.DateOverride{{
			ID:         "prop-1_2026-06-10",
			PropertyID: "prop-1",
			Date:       dates.MustParse("2026-06-10"),
			Available:  false,
			Reason:     "maintenance",
		}},
	}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	day := doc.Days[10]
	if day.Available {
		t.Fatal("blocking override must mark the day unavailable")
	}
	if day.BaseOccupancyPrice.Amount != 18000 {
		t.Fatalf("price = %d, availability-only override must not zero the price", day.BaseOccupancyPrice.Amount)
	}
}

func TestExpandOccupancy(t *testing.T) {
	doc, err := fixedGenerator().Generate("prop-1", june, RuleSnapshot{Config: testConfig()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	day := doc.Days[1]
	wants := map[int]int64{1: 18000, 2: 18000, 3: 20500, 4: 23000, 5: 25500}
	for guests, want := range wants {
		if got := day.PricesByOccupancy[guests].Amount; got != want {
			t.Errorf("price for %d guests = %d, want %d", guests, got, want)
		}
	}
	// monotonic in guest count
	for g := 2; g <= 5; g++ {
		if day.PricesByOccupancy[g].Amount < day.PricesByOccupancy[g-1].Amount {
			t.Fatalf("price must not decrease as guests grow: %d < %d guests", g, g-1)
		}
	}
}

func TestFlatRateOverrideIgnoresOccupancy(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Overrides: []rules.DateOverride{{
			ID:          "prop-1_2026-06-12",
			PropertyID:  "prop-1",
			Date:        dates.MustParse("2026-06-12"),
			CustomPrice: money.Money{Amount: 35000, Currency: "USD"},
			Available:   true,
			FlatRate:    true,
		}},
	}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	day := doc.Days[12]
	for g := 1; g <= 5; g++ {
		if got := day.PricesByOccupancy[g].Amount; got != 35000 {
			t.Fatalf("flat-rate price for %d guests = %d, want 35000", g, got)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Seasons: []rules.SeasonalPricingPeriod{{
			ID:              "summer",
			PropertyID:      "prop-1",
			StartDate:       dates.MustParse("2026-06-10"),
			EndDate:         dates.MustParse("2026-06-20"),
			SeasonType:      rules.SeasonMedium,
			PriceMultiplier: 1.1,
			Enabled:         true,
		}},
		Overrides: []rules.DateOverride{{
			ID:          "prop-1_2026-06-15",
			PropertyID:  "prop-1",
			Date:        dates.MustParse("2026-06-15"),
			CustomPrice: money.Money{Amount: 9900, Currency: "USD"},
			Available:   true,
		}},
		Locked: map[int]string{3: "bk_1"},
	}
	g := fixedGenerator()
	first, err := g.Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := g.Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !reflect.DeepEqual(first.Days, second.Days) {
		t.Fatal("same snapshot must yield identical Days")
	}
}

func TestGeneratePreservesLockedDays(t *testing.T) {
	snap := RuleSnapshot{Config: testConfig(), Locked: map[int]string{20: "bk_42", 21: "bk_42"}}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, day := range []int{20, 21} {
		entry := doc.Days[day]
		if entry.Available {
			t.Fatalf("day %d must stay blocked across regeneration", day)
		}
		if entry.LockRef != "bk_42" {
			t.Fatalf("day %d lock ref = %q", day, entry.LockRef)
		}
	}
	if doc.Days[22].Available != true {
		t.Fatal("unlocked days must stay available")
	}
}

func TestGenerateRejectsIncompleteConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BasePricePerNight = money.Money{}
	cfg.DefaultMinimumStay = 0
	_, err := fixedGenerator().Generate("prop-1", june, RuleSnapshot{Config: cfg})
	if err == nil {
		t.Fatal("expected config error")
	}
	cfgErr, ok := err.(*rules.ConfigError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if len(cfgErr.Missing) < 2 {
		t.Fatalf("missing fields = %v", cfgErr.Missing)
	}
}

func TestSummary(t *testing.T) {
	snap := RuleSnapshot{
		Config: testConfig(),
		Overrides: []rules.DateOverride{{
			ID:          "prop-1_2026-06-15",
			PropertyID:  "prop-1",
			Date:        dates.MustParse("2026-06-15"),
			CustomPrice: money.Money{Amount: 40000, Currency: "USD"},
			Available:   true,
		}},
		Locked: map[int]string{1: "bk_9"},
	}
	doc, err := fixedGenerator().Generate("prop-1", june, snap)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Summary.MaxPrice.Amount != 40000 {
		t.Fatalf("max = %d", doc.Summary.MaxPrice.Amount)
	}
	if doc.Summary.MinPrice.Amount != 18000 {
		t.Fatalf("min = %d", doc.Summary.MinPrice.Amount)
	}
	if doc.Summary.UnavailableDays != 1 {
		t.Fatalf("unavailable = %d", doc.Summary.UnavailableDays)
	}
	if doc.Summary.ModifiedDays != 1 {
		t.Fatalf("modified = %d", doc.Summary.ModifiedDays)
	}
}
