package bookingapp

import (
	"context"
	"time"

	"staycal/internal/app/commands"
	"staycal/internal/app/outbox"
	"staycal/internal/domain/booking"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
)

const releaseBookingKey = "booking.release"

type ReleaseBookingCommand struct {
	BookingID string
	Reason    string
}

func (c ReleaseBookingCommand) Key() string { return releaseBookingKey }

type ReleaseBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type ReleaseBookingHandler struct {
	Bookings  booking.Repository
	Calendars calendar.Repository
	Overrides rules.OverrideRepository
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Now       func() time.Time
}

// Handle cancels a booking or hold and opens its nights back up. Days an
// override keeps unavailable stay blocked: the override outranks
// booking-derived availability.
func (h *ReleaseBookingHandler) Handle(ctx context.Context, cmd ReleaseBookingCommand) (*ReleaseBookingResult, error) {
	b, err := h.Bookings.ByID(ctx, booking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := b.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}

	docs, err := h.Calendars.MonthsTouching(ctx, b.PropertyID, b.Stay)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := unlockDays(ctx, h.Overrides, doc, b.Stay, cmd.BookingID); err != nil {
			return nil, err
		}
		if err := h.Calendars.Replace(ctx, doc); err != nil {
			return nil, err
		}
	}

	if err := h.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	return &ReleaseBookingResult{BookingID: cmd.BookingID, Status: string(b.State)}, nil
}

func (h *ReleaseBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ReleaseBookingCommand, *ReleaseBookingResult] = (*ReleaseBookingHandler)(nil)
