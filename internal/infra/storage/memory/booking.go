package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"staycal/internal/domain/booking"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/events"
)

// BookingStore is the in-memory booking repository. Save enforces the
// same optimistic version check as the Mongo repository.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[booking.BookingID]booking.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[booking.BookingID]booking.Booking)}
}

func (s *BookingStore) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (s *BookingStore) Save(ctx context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.bookings[b.ID]
	if ok && stored.Version != b.Version {
		return booking.ErrConcurrentUpdate
	}
	b.Version++
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	s.bookings[b.ID] = cp
	return nil
}

func (s *BookingStore) ActiveInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	first := month.First()
	afterLast := dates.NewDate(month.Year, month.Month, month.DaysInMonth()).AddDays(1)
	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.PropertyID != propertyID || !b.Blocks() {
			continue
		}
		if !b.Stay.CheckIn.Before(afterLast) || !first.Before(b.Stay.CheckOut) {
			continue
		}
		cp := b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *BookingStore) ExpiredHolds(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.State == booking.StateOnHold && !b.HoldUntil.IsZero() && b.HoldUntil.Before(now) {
			cp := b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
