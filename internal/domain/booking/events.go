package booking

import (
	"time"

	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

type HoldPlaced struct {
	BookingID  BookingID
	PropertyID string
	Stay       dates.StayRange
	Until      time.Time
	At         time.Time
}

func (e HoldPlaced) EventName() string     { return "booking.hold_placed" }
func (e HoldPlaced) AggregateID() string   { return string(e.BookingID) }
func (e HoldPlaced) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID
	PropertyID string
	Stay       dates.StayRange
	Total      money.Money
	At         time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingReleased struct {
	BookingID  BookingID
	PropertyID string
	Stay       dates.StayRange
	Reason     string
	At         time.Time
}

func (e BookingReleased) EventName() string     { return "booking.released" }
func (e BookingReleased) AggregateID() string   { return string(e.BookingID) }
func (e BookingReleased) OccurredAt() time.Time { return e.At }
