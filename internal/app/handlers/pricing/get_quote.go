package pricing

import (
	"context"
	"errors"
	"time"

	"staycal/internal/app/apperr"
	"staycal/internal/app/dto"
	availabilityapp "staycal/internal/app/handlers/availability"
	"staycal/internal/app/queries"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

const getQuoteKey = "pricing.quote"

type GetQuoteQuery struct {
	PropertyID string
	CheckIn    dates.Date
	CheckOut   dates.Date
	Guests     int
	CouponCode string
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

type GetQuoteHandler struct {
	Configs      rules.ConfigRepository
	Coupons      rules.CouponRepository
	Calendars    calendar.Repository
	Availability *availabilityapp.CheckAvailabilityHandler
	Now          func() time.Time
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.QuoteResult, error) {
	now := h.now()
	stay, err := dates.NewStayRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.QuoteResult{}, apperr.Validation("check-out must be after check-in")
	}
	if q.CheckIn.Before(dates.FromTime(now)) {
		return dto.QuoteResult{}, apperr.Validation("check-in date is in the past")
	}

	cfg, err := h.Configs.Config(ctx, q.PropertyID)
	if err != nil {
		return dto.QuoteResult{}, err
	}
	if q.Guests < 1 || q.Guests > cfg.MaxGuests {
		return dto.QuoteResult{}, apperr.Validation("guest count must be between 1 and %d", cfg.MaxGuests)
	}

	// Availability first: blocked dates or a short stay are expected
	// outcomes carried in the result, not errors.
	avail, err := h.Availability.Handle(ctx, availabilityapp.CheckAvailabilityQuery{
		PropertyID: q.PropertyID,
		CheckIn:    q.CheckIn,
		CheckOut:   q.CheckOut,
	})
	if err != nil {
		return dto.QuoteResult{}, err
	}
	if !avail.Available {
		return dto.QuoteResult{Unavailable: &dto.Unavailable{
			Reason:           avail.Reason,
			UnavailableDates: avail.UnavailableDates,
			MinimumStay:      avail.MinimumStay,
		}}, nil
	}

	months, err := h.Calendars.MonthsTouching(ctx, q.PropertyID, stay)
	if err != nil {
		return dto.QuoteResult{}, err
	}
	byMonth := make(map[dates.MonthKey]*calendar.CalendarMonth, len(months))
	for _, m := range months {
		byMonth[m.Month] = m
	}

	quote := &dto.Quote{
		PropertyID: q.PropertyID,
		CheckIn:    q.CheckIn.String(),
		CheckOut:   q.CheckOut.String(),
		Nights:     stay.Nights(),
		Guests:     q.Guests,
		Currency:   cfg.BasePricePerNight.Currency,
	}

	var accommodation int64
	for _, day := range stay.Days() {
		doc, ok := byMonth[dates.MonthOf(day)]
		if !ok {
			return dto.QuoteResult{}, &calendar.DataGapError{PropertyID: q.PropertyID, Month: dates.MonthOf(day)}
		}
		entry, ok := doc.Entry(day)
		if !ok {
			return dto.QuoteResult{}, &calendar.DataGapError{PropertyID: q.PropertyID, Month: doc.Month}
		}
		night, ok := entry.PricesByOccupancy[q.Guests]
		if !ok {
			return dto.QuoteResult{}, &calendar.DataGapError{PropertyID: q.PropertyID, Month: doc.Month}
		}
		accommodation += night.Amount
		quote.NightlyPrices = append(quote.NightlyPrices, dto.NightPrice{
			Date:        day.String(),
			AmountCents: night.Amount,
			PriceSource: string(entry.PriceSource),
		})
	}
	quote.AccommodationCents = accommodation
	quote.CleaningFeeCents = cfg.CleaningFee.Amount

	subtotal := money.Money{Amount: accommodation + cfg.CleaningFee.Amount, Currency: quote.Currency}

	// Length-of-stay discount applies to the accommodation part only.
	if tier, ok := cfg.BestDiscountTier(stay.Nights()); ok {
		discount := money.Money{Amount: accommodation, Currency: quote.Currency}.Percent(tier.DiscountPercentage)
		quote.StayDiscountCents = discount.Amount
		quote.StayDiscountPercent = tier.DiscountPercentage
	}

	if q.CouponCode != "" {
		quote.CouponDiscountCents, quote.CouponApplied = h.couponDiscount(ctx, q.CouponCode, subtotal, now)
	}

	totalDiscount := quote.StayDiscountCents + quote.CouponDiscountCents
	if totalDiscount > subtotal.Amount {
		// Combined discounts never push the total below zero.
		totalDiscount = subtotal.Amount
	}
	quote.TotalCents = subtotal.Amount - totalDiscount

	return dto.QuoteResult{Quote: quote}, nil
}

// couponDiscount resolves a coupon code against the subtotal. Unknown,
// disabled, or out-of-window codes are silently ignored: the quote is
// still produced, just without the coupon.
func (h *GetQuoteHandler) couponDiscount(ctx context.Context, code string, subtotal money.Money, now time.Time) (int64, bool) {
	if h.Coupons == nil {
		return 0, false
	}
	coupon, err := h.Coupons.Coupon(ctx, rules.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, rules.ErrCouponNotFound) {
			return 0, false
		}
		return 0, false
	}
	if !coupon.Usable(now) {
		return 0, false
	}
	if coupon.PercentOff > 0 {
		return subtotal.Percent(coupon.PercentOff).Amount, true
	}
	if coupon.AmountOff.Amount > 0 && coupon.AmountOff.Currency == subtotal.Currency {
		return coupon.AmountOff.Amount, true
	}
	return 0, false
}

func (h *GetQuoteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[GetQuoteQuery, dto.QuoteResult] = (*GetQuoteHandler)(nil)
