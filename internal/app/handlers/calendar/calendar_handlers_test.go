package calendarapp_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	calendarapp "staycal/internal/app/handlers/calendar"
	"staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
	"staycal/internal/infra/storage/memory"
)

var calNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

var june = dates.MonthKey{Year: 2026, Month: time.June}

type calFixture struct {
	rules      *memory.RuleStore
	calendars  *memory.CalendarStore
	bookings   *memory.BookingStore
	regenerate *calendarapp.RegenerateMonthHandler
	patch      *calendarapp.PatchDayHandler
	clear      *calendarapp.ClearDayHandler
	getMonth   *calendarapp.GetMonthHandler
}

func newCalFixture(t *testing.T) calFixture {
	t.Helper()
	ruleStore := memory.NewRuleStore()
	calendars := memory.NewCalendarStore()
	bookings := memory.NewBookingStore()

	cfg := rules.PropertyPricingConfig{
		PropertyID:         "prop-1",
		BasePricePerNight:  money.Money{Amount: 12000, Currency: "USD"},
		BaseOccupancy:      2,
		MaxGuests:          4,
		DefaultMinimumStay: 2,
	}
	if err := ruleStore.SaveConfig(context.Background(), cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	gen := domaincalendar.NewGenerator()
	gen.Now = func() time.Time { return calNow }
	nowFn := func() time.Time { return calNow }

	return calFixture{
		rules:     ruleStore,
		calendars: calendars,
		bookings:  bookings,
		regenerate: &calendarapp.RegenerateMonthHandler{
			Configs:   ruleStore,
			Seasons:   ruleStore,
			Overrides: ruleStore,
			Bookings:  bookings,
			Calendars: calendars,
			Generator: gen,
			Now:       nowFn,
		},
		patch: &calendarapp.PatchDayHandler{
			Configs:   ruleStore,
			Seasons:   ruleStore,
			Overrides: ruleStore,
			Calendars: calendars,
			Generator: gen,
			Logger:    slog.Default(),
			Now:       nowFn,
		},
		clear: &calendarapp.ClearDayHandler{
			Configs:   ruleStore,
			Seasons:   ruleStore,
			Overrides: ruleStore,
			Calendars: calendars,
			Generator: gen,
			Logger:    slog.Default(),
			Now:       nowFn,
		},
		getMonth: &calendarapp.GetMonthHandler{Calendars: calendars},
	}
}

func (fx calFixture) regen(t *testing.T) *calendarapp.RegenerateMonthResult {
	t.Helper()
	result, err := fx.regenerate.Handle(context.Background(), calendarapp.RegenerateMonthCommand{
		PropertyID: "prop-1",
		Month:      june,
	})
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	return result
}

func TestRegenerateMonthCreatesDocument(t *testing.T) {
	fx := newCalFixture(t)
	result := fx.regen(t)
	if result.Days != 30 {
		t.Fatalf("days = %d", result.Days)
	}
	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("version = %d", doc.Version)
	}
	if doc.Days[1].BaseOccupancyPrice.Amount != 12000 {
		t.Fatalf("price = %d", doc.Days[1].BaseOccupancyPrice.Amount)
	}
}

func TestRegenerateAppliesRuleChanges(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	if err := fx.rules.SaveSeason(context.Background(), rules.SeasonalPricingPeriod{
		ID:              "summer",
		PropertyID:      "prop-1",
		StartDate:       dates.MustParse("2026-06-01"),
		EndDate:         dates.MustParse("2026-06-30"),
		SeasonType:      rules.SeasonHigh,
		PriceMultiplier: 1.5,
		Enabled:         true,
		CreatedAt:       calNow,
	}); err != nil {
		t.Fatalf("save season: %v", err)
	}
	fx.regen(t)

	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if doc.Days[1].BaseOccupancyPrice.Amount != 18000 {
		t.Fatalf("seasonal price = %d, want 18000", doc.Days[1].BaseOccupancyPrice.Amount)
	}
	if doc.Version != 2 {
		t.Fatalf("version = %d", doc.Version)
	}
}

// Regeneration must keep days locked by the previous document and by
// active bookings.
func TestRegeneratePreservesLockedDays(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	// lock a day the way the booking flow does
	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	entry := doc.Days[10]
	entry.Available = false
	entry.LockRef = "bk-1"
	doc.SetEntry(10, entry)
	if err := fx.calendars.Replace(context.Background(), doc); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// and register an active booking covering other nights
	stay, _ := dates.NewStayRange(dates.MustParse("2026-06-20"), dates.MustParse("2026-06-22"))
	b := &booking.Booking{
		ID:         "bk-2",
		PropertyID: "prop-1",
		Stay:       stay,
		Guests:     2,
		State:      booking.StateConfirmed,
	}
	if err := fx.bookings.Save(context.Background(), b); err != nil {
		t.Fatalf("save booking: %v", err)
	}

	fx.regen(t)

	regenerated, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if regenerated.Days[10].Available || regenerated.Days[10].LockRef != "bk-1" {
		t.Fatalf("day 10 = %+v", regenerated.Days[10])
	}
	for _, day := range []int{20, 21} {
		if regenerated.Days[day].Available || regenerated.Days[day].LockRef != "bk-2" {
			t.Fatalf("day %d = %+v", day, regenerated.Days[day])
		}
	}
	if !regenerated.Days[22].Available {
		t.Fatal("checkout day must stay open")
	}
}

func TestRegenerateMissingConfig(t *testing.T) {
	fx := newCalFixture(t)
	_, err := fx.regenerate.Handle(context.Background(), calendarapp.RegenerateMonthCommand{
		PropertyID: "prop-2",
		Month:      june,
	})
	if err == nil {
		t.Fatal("unknown property must fail")
	}
}

func TestPatchDayDualWrite(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	result, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID:  "prop-1",
		Date:        dates.MustParse("2026-06-15"),
		PriceCents:  25000,
		Available:   true,
		MinimumStay: 3,
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if result.CalendarStale {
		t.Fatal("calendar write must succeed")
	}

	// the override table holds the source of truth
	o, err := fx.rules.Override(context.Background(), "prop-1", dates.MustParse("2026-06-15"))
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if o.CustomPrice.Amount != 25000 || o.MinStayOverride != 3 {
		t.Fatalf("override = %+v", o)
	}

	// and the calendar cache reflects it immediately
	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	day := doc.Days[15]
	if day.BaseOccupancyPrice.Amount != 25000 || day.PriceSource != domaincalendar.SourceOverride {
		t.Fatalf("day = %+v", day)
	}
	if day.MinimumStay != 3 {
		t.Fatalf("min stay = %d", day.MinimumStay)
	}

	// the edit survives a later regeneration
	fx.regen(t)
	doc, err = fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if doc.Days[15].BaseOccupancyPrice.Amount != 25000 {
		t.Fatalf("override lost on regeneration: %+v", doc.Days[15])
	}
}

func TestPatchDayBlocksWithoutPrice(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	if _, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-18"),
		Available:  false,
		Reason:     "maintenance",
	}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	day := doc.Days[18]
	if day.Available {
		t.Fatal("day must be blocked")
	}
	if day.BaseOccupancyPrice.Amount != 12000 {
		t.Fatalf("blocking edit must keep the resolved price, got %d", day.BaseOccupancyPrice.Amount)
	}
}

// Clearing an edited day removes the override and restores the
// rule-derived entry, the reverse of the patch dual write.
func TestClearDayRestoresRuleDerivedEntry(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	if _, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID:  "prop-1",
		Date:        dates.MustParse("2026-06-15"),
		PriceCents:  25000,
		Available:   true,
		MinimumStay: 3,
	}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	result, err := fx.clear.Handle(context.Background(), calendarapp.ClearDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-15"),
	})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result.CalendarStale {
		t.Fatal("calendar rewrite must succeed")
	}

	if _, err := fx.rules.Override(context.Background(), "prop-1", dates.MustParse("2026-06-15")); !errors.Is(err, rules.ErrOverrideNotFound) {
		t.Fatalf("override must be gone, got %v", err)
	}

	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	day := doc.Days[15]
	if day.BaseOccupancyPrice.Amount != 12000 || day.PriceSource != domaincalendar.SourceBase {
		t.Fatalf("day = %+v", day)
	}
	if day.MinimumStay != 2 {
		t.Fatalf("min stay = %d, want config default", day.MinimumStay)
	}
}

func TestClearDayKeepsBookedDayLocked(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	if _, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-10"),
		PriceCents: 25000,
		Available:  true,
	}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	// lock the day the way a booking flip does
	doc, err := fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	entry := doc.Days[10]
	entry.Available = false
	entry.LockRef = "bk-9"
	doc.SetEntry(10, entry)
	if err := fx.calendars.Replace(context.Background(), doc); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, err := fx.clear.Handle(context.Background(), calendarapp.ClearDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-10"),
	}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	doc, err = fx.calendars.Month(context.Background(), "prop-1", june)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if doc.Days[10].Available || doc.Days[10].LockRef != "bk-9" {
		t.Fatalf("day 10 = %+v", doc.Days[10])
	}
}

func TestClearDayStaleOnMissingMonth(t *testing.T) {
	fx := newCalFixture(t)
	// no generated month: the override delete still succeeds, the cache
	// rewrite cannot
	if err := fx.rules.SaveOverride(context.Background(), rules.DateOverride{
		PropertyID:  "prop-1",
		Date:        dates.MustParse("2026-06-15"),
		CustomPrice: money.Money{Amount: 25000, Currency: "USD"},
		Available:   true,
	}.WithID()); err != nil {
		t.Fatalf("save override: %v", err)
	}
	result, err := fx.clear.Handle(context.Background(), calendarapp.ClearDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-15"),
	})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !result.CalendarStale {
		t.Fatal("missing month must flag the cache as stale")
	}
}

func TestPatchDayValidation(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	if _, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-18"),
		PriceCents: -5,
		Available:  true,
	}); err == nil {
		t.Fatal("negative price must fail")
	}
	if _, err := fx.patch.Handle(context.Background(), calendarapp.PatchDayCommand{
		PropertyID: "prop-1",
		Date:       dates.MustParse("2026-06-18"),
		Available:  true,
	}); err == nil {
		t.Fatal("available day without price must fail")
	}
}

func TestGetMonthMapsDocument(t *testing.T) {
	fx := newCalFixture(t)
	fx.regen(t)

	view, err := fx.getMonth.Handle(context.Background(), calendarapp.GetMonthQuery{
		PropertyID: "prop-1",
		Month:      june,
	})
	if err != nil {
		t.Fatalf("get month: %v", err)
	}
	if len(view.Days) != 30 {
		t.Fatalf("days = %d", len(view.Days))
	}
	if view.Days[0].Date != "2026-06-01" {
		t.Fatalf("first day = %s", view.Days[0].Date)
	}
	if _, err := fx.getMonth.Handle(context.Background(), calendarapp.GetMonthQuery{
		PropertyID: "prop-1",
		Month:      dates.MonthKey{Year: 2026, Month: time.July},
	}); err == nil {
		t.Fatal("missing month must error")
	}
}
