package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staycal/internal/app/apperr"
	availabilityapp "staycal/internal/app/handlers/availability"
	pricingapp "staycal/internal/app/handlers/pricing"
	domaincalendar "staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
	"staycal/internal/infra/storage/memory"
)

var quoteNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type quoteFixture struct {
	rules     *memory.RuleStore
	calendars *memory.CalendarStore
	handler   *pricingapp.GetQuoteHandler
}

func newQuoteFixture(t *testing.T, cfg rules.PropertyPricingConfig, months ...dates.MonthKey) quoteFixture {
	t.Helper()
	ctx := context.Background()
	ruleStore := memory.NewRuleStore()
	calendars := memory.NewCalendarStore()
	if err := ruleStore.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	gen := domaincalendar.NewGenerator()
	gen.Now = func() time.Time { return quoteNow }
	for _, key := range months {
		doc, err := gen.Generate(cfg.PropertyID, key, domaincalendar.RuleSnapshot{Config: cfg})
		if err != nil {
			t.Fatalf("generate %s: %v", key, err)
		}
		if err := calendars.Replace(ctx, doc); err != nil {
			t.Fatalf("replace %s: %v", key, err)
		}
	}
	handler := &pricingapp.GetQuoteHandler{
		Configs:      ruleStore,
		Coupons:      ruleStore,
		Calendars:    calendars,
		Availability: &availabilityapp.CheckAvailabilityHandler{Calendars: calendars},
		Now:          func() time.Time { return quoteNow },
	}
	return quoteFixture{rules: ruleStore, calendars: calendars, handler: handler}
}

func quoteConfig() rules.PropertyPricingConfig {
	return rules.PropertyPricingConfig{
		PropertyID:            "prop-1",
		BasePricePerNight:     money.Money{Amount: 10000, Currency: "USD"},
		BaseOccupancy:         2,
		MaxGuests:             4,
		ExtraGuestFeePerNight: money.Money{Amount: 1500, Currency: "USD"},
		CleaningFee:           money.Money{Amount: 6000, Currency: "USD"},
		DefaultMinimumStay:    1,
		DiscountTiers: []rules.LengthOfStayDiscountTier{
			{NightsThreshold: 7, DiscountPercentage: 5, Enabled: true},
			{NightsThreshold: 14, DiscountPercentage: 10, Enabled: true},
			{NightsThreshold: 28, DiscountPercentage: 15, Enabled: true},
		},
	}
}

var june = dates.MonthKey{Year: 2026, Month: time.June}

func TestGetQuoteBreakdown(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-13"),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Quote == nil {
		t.Fatalf("result = %+v", result)
	}
	q := result.Quote
	if q.Nights != 3 || len(q.NightlyPrices) != 3 {
		t.Fatalf("quote = %+v", q)
	}
	if q.AccommodationCents != 30000 {
		t.Fatalf("accommodation = %d", q.AccommodationCents)
	}
	if q.CleaningFeeCents != 6000 {
		t.Fatalf("cleaning fee = %d", q.CleaningFeeCents)
	}
	if q.StayDiscountCents != 0 {
		t.Fatalf("three nights must not earn a stay discount: %d", q.StayDiscountCents)
	}
	if q.TotalCents != 36000 {
		t.Fatalf("total = %d", q.TotalCents)
	}
}

func TestGetQuoteExtraGuestFee(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-12"),
		Guests:     4,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	// 2 nights x (10000 + 2 extra guests x 1500)
	if result.Quote.AccommodationCents != 26000 {
		t.Fatalf("accommodation = %d", result.Quote.AccommodationCents)
	}
}

// Ten nights qualifies for the 7-night tier only; the discount applies to
// accommodation, not the cleaning fee.
func TestGetQuoteLengthOfStayDiscount(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-20"),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	q := result.Quote
	if q.StayDiscountPercent != 5 {
		t.Fatalf("discount percent = %v, want 5", q.StayDiscountPercent)
	}
	if q.StayDiscountCents != 5000 { // 5% of 100000
		t.Fatalf("discount = %d, want 5000", q.StayDiscountCents)
	}
	if q.TotalCents != 101000 { // 100000 + 6000 - 5000
		t.Fatalf("total = %d", q.TotalCents)
	}
}

func TestGetQuoteMinimumStayUnavailable(t *testing.T) {
	cfg := quoteConfig()
	cfg.DefaultMinimumStay = 3
	fx := newQuoteFixture(t, cfg, june)
	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-12"),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Quote != nil || result.Unavailable == nil {
		t.Fatalf("result = %+v", result)
	}
	if result.Unavailable.Reason != "minimum_stay" || result.Unavailable.MinimumStay != 3 {
		t.Fatalf("unavailable = %+v", result.Unavailable)
	}
}

func TestGetQuoteCoupon(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	if err := fx.rules.SaveCoupon(context.Background(), rules.Coupon{
		Code:       "SUMMER10",
		PercentOff: 10,
		Enabled:    true,
	}); err != nil {
		t.Fatalf("save coupon: %v", err)
	}

	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-12"),
		Guests:     2,
		CouponCode: "summer10",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	q := result.Quote
	if !q.CouponApplied {
		t.Fatal("coupon must apply")
	}
	if q.CouponDiscountCents != 2600 { // 10% of (20000 + 6000)
		t.Fatalf("coupon discount = %d", q.CouponDiscountCents)
	}

	// unknown code: quote still produced, coupon silently skipped
	result, err = fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-12"),
		Guests:     2,
		CouponCode: "NOPE",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Quote == nil || result.Quote.CouponApplied {
		t.Fatalf("unknown coupon must be ignored, got %+v", result.Quote)
	}
}

// Combined discounts are capped at the subtotal; the total never goes
// negative.
func TestGetQuoteDiscountCap(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	if err := fx.rules.SaveCoupon(context.Background(), rules.Coupon{
		Code:      "BIGCREDIT",
		AmountOff: money.Money{Amount: 100000, Currency: "USD"},
		Enabled:   true,
	}); err != nil {
		t.Fatalf("save coupon: %v", err)
	}

	result, err := fx.handler.Handle(context.Background(), pricingapp.GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    dates.MustParse("2026-06-10"),
		CheckOut:   dates.MustParse("2026-06-12"),
		Guests:     2,
		CouponCode: "BIGCREDIT",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	q := result.Quote
	if !q.CouponApplied || q.CouponDiscountCents != 100000 {
		t.Fatalf("quote = %+v", q)
	}
	if q.TotalCents != 0 {
		t.Fatalf("total = %d, want 0", q.TotalCents)
	}
}

func TestGetQuoteValidation(t *testing.T) {
	fx := newQuoteFixture(t, quoteConfig(), june)
	tests := []struct {
		name  string
		query pricingapp.GetQuoteQuery
	}{
		{
			name: "past check-in",
			query: pricingapp.GetQuoteQuery{
				PropertyID: "prop-1",
				CheckIn:    dates.MustParse("2026-05-20"),
				CheckOut:   dates.MustParse("2026-05-22"),
				Guests:     2,
			},
		},
		{
			name: "zero nights",
			query: pricingapp.GetQuoteQuery{
				PropertyID: "prop-1",
				CheckIn:    dates.MustParse("2026-06-10"),
				CheckOut:   dates.MustParse("2026-06-10"),
				Guests:     2,
			},
		},
		{
			name: "too many guests",
			query: pricingapp.GetQuoteQuery{
				PropertyID: "prop-1",
				CheckIn:    dates.MustParse("2026-06-10"),
				CheckOut:   dates.MustParse("2026-06-12"),
				Guests:     9,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.handler.Handle(context.Background(), tt.query)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}
