package memory

import (
	"context"
	"sync"

	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// CalendarStore keeps month documents in memory with the same
// compare-and-swap Replace semantics as the Mongo repository, so the
// booking flip path behaves identically in both storage modes.
type CalendarStore struct {
	mu   sync.RWMutex
	docs map[string]*calendar.CalendarMonth
}

func NewCalendarStore() *CalendarStore {
	return &CalendarStore{docs: make(map[string]*calendar.CalendarMonth)}
}

func cloneMonth(doc *calendar.CalendarMonth) *calendar.CalendarMonth {
	cp := *doc
	cp.Days = make(map[int]calendar.DayEntry, len(doc.Days))
	for day, entry := range doc.Days {
		e := entry
		if entry.PricesByOccupancy != nil {
			e.PricesByOccupancy = make(map[int]money.Money, len(entry.PricesByOccupancy))
			for g, p := range entry.PricesByOccupancy {
				e.PricesByOccupancy[g] = p
			}
		}
		cp.Days[day] = e
	}
	return &cp
}

func (s *CalendarStore) Month(ctx context.Context, propertyID string, key dates.MonthKey) (*calendar.CalendarMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[calendar.MonthID(propertyID, key)]
	if !ok {
		return nil, calendar.ErrMonthNotFound
	}
	return cloneMonth(doc), nil
}

func (s *CalendarStore) MonthsTouching(ctx context.Context, propertyID string, stay dates.StayRange) ([]*calendar.CalendarMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := stay.Months()
	out := make([]*calendar.CalendarMonth, 0, len(keys))
	for _, key := range keys {
		doc, ok := s.docs[calendar.MonthID(propertyID, key)]
		if !ok {
			return nil, &calendar.DataGapError{PropertyID: propertyID, Month: key}
		}
		out = append(out, cloneMonth(doc))
	}
	return out, nil
}

func (s *CalendarStore) Replace(ctx context.Context, doc *calendar.CalendarMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := calendar.MonthID(doc.PropertyID, doc.Month)
	stored, ok := s.docs[id]
	if ok && stored.Version != doc.Version {
		return calendar.ErrConcurrentUpdate
	}
	cp := cloneMonth(doc)
	cp.ID = id
	cp.Version = doc.Version + 1
	s.docs[id] = cp
	doc.Version = cp.Version
	return nil
}

func (s *CalendarStore) PatchDay(ctx context.Context, propertyID string, key dates.MonthKey, day int, entry calendar.DayEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[calendar.MonthID(propertyID, key)]
	if !ok {
		return calendar.ErrMonthNotFound
	}
	doc.SetEntry(day, entry)
	doc.Version++
	return nil
}
