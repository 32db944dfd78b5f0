package booking

import (
	"context"
	"errors"
	"time"

	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/events"
	"staycal/internal/domain/shared/money"
)

var (
	ErrInvalidGuests = errors.New("booking: guests count must be positive")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrNotFound      = errors.New("booking: not found")
	// ErrConcurrentUpdate signals a lost version race on Save, e.g. a
	// release racing the hold-expiry sweep.
	ErrConcurrentUpdate = errors.New("booking: concurrent update detected")
)

type BookingID string

type State string

const (
	StatePending   State = "PENDING"
	StateOnHold    State = "ON_HOLD"
	StateConfirmed State = "CONFIRMED"
	StateCancelled State = "CANCELLED"
	StateExpired   State = "EXPIRED"
)

// QuoteSnapshot freezes the price breakdown shown to the guest at
// confirmation time. It is never recomputed retroactively.
type QuoteSnapshot struct {
	Nights             int         `bson:"nights" json:"nights"`
	AccommodationTotal money.Money `bson:"accommodation_total" json:"accommodation_total"`
	CleaningFee        money.Money `bson:"cleaning_fee" json:"cleaning_fee"`
	StayDiscount       money.Money `bson:"stay_discount" json:"stay_discount"`
	CouponDiscount     money.Money `bson:"coupon_discount" json:"coupon_discount"`
	Total              money.Money `bson:"total" json:"total"`
}

// Booking is a guest reservation or hold on a property's calendar days.
type Booking struct {
	ID         BookingID
	PropertyID string
	Stay       dates.StayRange
	Guests     int
	State      State
	Quote      QuoteSnapshot
	HoldUntil  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// ActiveInMonth returns confirmed and held bookings touching the month;
	// the calendar generator uses them to keep booked days locked across
	// regeneration.
	ActiveInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]*Booking, error)
	// ExpiredHolds returns holds whose deadline passed before the instant.
	ExpiredHolds(ctx context.Context, now time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID string
	Stay       dates.StayRange
	Guests     int
	Quote      QuoteSnapshot
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	if params.PropertyID == "" {
		return nil, errors.New("booking: property id required")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		Stay:       params.Stay,
		Guests:     params.Guests,
		Quote:      params.Quote,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return b, nil
}

// Hold reserves the dates until the deadline without payment.
func (b *Booking) Hold(until time.Time, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateOnHold
	b.HoldUntil = until.UTC()
	b.UpdatedAt = now.UTC()
	b.Record(HoldPlaced{BookingID: b.ID, PropertyID: b.PropertyID, Stay: b.Stay, Until: b.HoldUntil, At: b.UpdatedAt})
	return nil
}

// Confirm finalizes a pending or held booking.
func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending && b.State != StateOnHold {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.HoldUntil = time.Time{}
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Stay: b.Stay, Total: b.Quote.Total, At: b.UpdatedAt})
	return nil
}

// Cancel releases a confirmed or held booking.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateOnHold, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingReleased{BookingID: b.ID, PropertyID: b.PropertyID, Stay: b.Stay, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Expire marks a hold past its deadline.
func (b *Booking) Expire(now time.Time) error {
	if b.State != StateOnHold {
		return ErrInvalidState
	}
	b.State = StateExpired
	b.UpdatedAt = now.UTC()
	b.Record(BookingReleased{BookingID: b.ID, PropertyID: b.PropertyID, Stay: b.Stay, Reason: "hold_expired", At: b.UpdatedAt})
	return nil
}

// Blocks reports whether the booking currently occupies calendar days.
func (b *Booking) Blocks() bool {
	return b.State == StateConfirmed || b.State == StateOnHold
}
