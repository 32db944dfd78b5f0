package bookingapp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staycal/internal/app/apperr"
	"staycal/internal/app/commands"
	"staycal/internal/app/dto"
	pricingapp "staycal/internal/app/handlers/pricing"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/booking"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

const confirmBookingKey = "booking.confirm"

type ConfirmBookingCommand struct {
	PropertyID string
	CheckIn    dates.Date
	CheckOut   dates.Date
	Guests     int
	CouponCode string
	// HoldFor places a timed hold instead of a confirmed booking.
	HoldFor time.Duration
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type ConfirmBookingResult struct {
	BookingID   string           `json:"booking_id,omitempty"`
	Status      string           `json:"status,omitempty"`
	Quote       *dto.Quote       `json:"quote,omitempty"`
	Unavailable *dto.Unavailable `json:"unavailable,omitempty"`
}

type ConfirmBookingHandler struct {
	Pricing   *pricingapp.GetQuoteHandler
	Bookings  booking.Repository
	Calendars calendar.Repository
	Overrides rules.OverrideRepository
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Now       func() time.Time
	NewID     func() string
}

// Handle re-validates availability and flips the stay's nights inside a
// version-checked write. Whatever price was displayed earlier does not
// matter: the quote is recomputed here and snapshotted onto the booking.
// Losing the version race surfaces calendar.ErrConcurrentUpdate for the
// caller to retry.
func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
	now := h.now()
	stay, err := dates.NewStayRange(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, apperr.Validation("check-out must be after check-in")
	}

	priced, err := h.Pricing.Handle(ctx, pricingapp.GetQuoteQuery{
		PropertyID: cmd.PropertyID,
		CheckIn:    cmd.CheckIn,
		CheckOut:   cmd.CheckOut,
		Guests:     cmd.Guests,
		CouponCode: cmd.CouponCode,
	})
	if err != nil {
		return nil, err
	}
	if priced.Unavailable != nil {
		return &ConfirmBookingResult{Unavailable: priced.Unavailable}, nil
	}
	quote := priced.Quote

	id := booking.BookingID(h.newID())
	b, err := booking.New(booking.CreateParams{
		ID:         id,
		PropertyID: cmd.PropertyID,
		Stay:       stay,
		Guests:     cmd.Guests,
		Quote:      snapshotQuote(quote),
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if err := h.flip(ctx, cmd.PropertyID, stay, string(id)); err != nil {
		return nil, err
	}

	if cmd.HoldFor > 0 {
		err = b.Hold(now.Add(cmd.HoldFor), now)
	} else {
		err = b.Confirm(now)
	}
	if err != nil {
		return nil, err
	}

	if err := h.Bookings.Save(ctx, b); err != nil {
		// The days are flipped but the booking failed to persist; undo so
		// inventory is not stranded.
		h.unflip(ctx, cmd.PropertyID, stay, string(id))
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	return &ConfirmBookingResult{BookingID: string(id), Status: string(b.State), Quote: quote}, nil
}

// flip locks every night of the stay month by month, all or nothing:
// a later month losing its version race rolls the earlier months back
// before the conflict is surfaced.
func (h *ConfirmBookingHandler) flip(ctx context.Context, propertyID string, stay dates.StayRange, ref string) error {
	docs, err := h.Calendars.MonthsTouching(ctx, propertyID, stay)
	if err != nil {
		return err
	}
	var flipped []dates.MonthKey
	fail := func(cause error) error {
		h.rollback(ctx, propertyID, stay, ref, flipped)
		return cause
	}
	for _, doc := range docs {
		blocked, err := lockDays(doc, stay, ref)
		if err != nil {
			return fail(err)
		}
		if len(blocked) > 0 {
			// Another booking won the race between the availability check
			// and this write.
			return fail(calendar.ErrConcurrentUpdate)
		}
		if err := h.Calendars.Replace(ctx, doc); err != nil {
			return fail(err)
		}
		flipped = append(flipped, doc.Month)
	}
	return nil
}

func (h *ConfirmBookingHandler) unflip(ctx context.Context, propertyID string, stay dates.StayRange, ref string) {
	h.rollback(ctx, propertyID, stay, ref, stay.Months())
}

// rollback releases the months already flipped, best effort: a month that
// cannot be unlocked is left for the next regeneration to heal.
func (h *ConfirmBookingHandler) rollback(ctx context.Context, propertyID string, stay dates.StayRange, ref string, months []dates.MonthKey) {
	for _, key := range months {
		fresh, err := h.Calendars.Month(ctx, propertyID, key)
		if err != nil {
			continue
		}
		if err := unlockDays(ctx, h.Overrides, fresh, stay, ref); err != nil {
			continue
		}
		_ = h.Calendars.Replace(ctx, fresh)
	}
}

func snapshotQuote(q *dto.Quote) booking.QuoteSnapshot {
	currency := q.Currency
	m := func(cents int64) money.Money { return money.Money{Amount: cents, Currency: currency} }
	return booking.QuoteSnapshot{
		Nights:             q.Nights,
		AccommodationTotal: m(q.AccommodationCents),
		CleaningFee:        m(q.CleaningFeeCents),
		StayDiscount:       m(q.StayDiscountCents),
		CouponDiscount:     m(q.CouponDiscountCents),
		Total:              m(q.TotalCents),
	}
}

func (h *ConfirmBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *ConfirmBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[ConfirmBookingCommand, *ConfirmBookingResult] = (*ConfirmBookingHandler)(nil)
