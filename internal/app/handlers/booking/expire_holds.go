package bookingapp

import (
	"context"
	"log/slog"
	"time"

	"staycal/internal/app/commands"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/booking"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
)

const expireHoldsKey = "booking.expire_holds"

// ExpireHoldsCommand sweeps holds whose deadline passed and releases their
// calendar days. Dispatched periodically by the scheduler.
type ExpireHoldsCommand struct{}

func (c ExpireHoldsCommand) Key() string { return expireHoldsKey }

type ExpireHoldsResult struct {
	Expired int `json:"expired"`
}

type ExpireHoldsHandler struct {
	Bookings  booking.Repository
	Calendars calendar.Repository
	Overrides rules.OverrideRepository
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Logger    *slog.Logger
	Now       func() time.Time
}

func (h *ExpireHoldsHandler) Handle(ctx context.Context, _ ExpireHoldsCommand) (*ExpireHoldsResult, error) {
	now := h.now()
	holds, err := h.Bookings.ExpiredHolds(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &ExpireHoldsResult{}
	for _, b := range holds {
		if err := h.expireOne(ctx, b, now); err != nil {
			// One stuck hold must not stall the sweep.
			if h.Logger != nil {
				h.Logger.Warn("hold expiry failed", "booking_id", b.ID, "error", err)
			}
			continue
		}
		result.Expired++
	}
	return result, nil
}

func (h *ExpireHoldsHandler) expireOne(ctx context.Context, b *booking.Booking, now time.Time) error {
	if err := b.Expire(now); err != nil {
		return err
	}
	docs, err := h.Calendars.MonthsTouching(ctx, b.PropertyID, b.Stay)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := unlockDays(ctx, h.Overrides, doc, b.Stay, string(b.ID)); err != nil {
			return err
		}
		if err := h.Calendars.Replace(ctx, doc); err != nil {
			return err
		}
	}
	if err := h.Bookings.Save(ctx, b); err != nil {
		return err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
		return err
	}
	b.ClearEvents()
	return nil
}

func (h *ExpireHoldsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ExpireHoldsCommand, *ExpireHoldsResult] = (*ExpireHoldsHandler)(nil)
