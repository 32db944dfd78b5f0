package mongo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("calendar_months")}
}

// BSON maps need string keys, so days are keyed by the day number's
// decimal form in storage.
type dayDocument struct {
	BaseOccupancyPrice money.Money            `bson:"base_occupancy_price"`
	PricesByOccupancy  map[string]money.Money `bson:"prices_by_occupancy"`
	Available          bool                   `bson:"available"`
	MinimumStay        int                    `bson:"minimum_stay"`
	PriceSource        string                 `bson:"price_source"`
	SourceRef          string                 `bson:"source_ref,omitempty"`
	LockRef            string                 `bson:"lock_ref,omitempty"`
}

type calendarDocument struct {
	ID          string                 `bson:"_id"`
	PropertyID  string                 `bson:"property_id"`
	Month       string                 `bson:"month"`
	Days        map[string]dayDocument `bson:"days"`
	Summary     domaincalendar.Summary `bson:"summary"`
	GeneratedAt time.Time              `bson:"generated_at"`
	Version     int64                  `bson:"version"`
}

func newDayDocument(e domaincalendar.DayEntry) dayDocument {
	prices := make(map[string]money.Money, len(e.PricesByOccupancy))
	for g, p := range e.PricesByOccupancy {
		prices[strconv.Itoa(g)] = p
	}
	return dayDocument{
		BaseOccupancyPrice: e.BaseOccupancyPrice,
		PricesByOccupancy:  prices,
		Available:          e.Available,
		MinimumStay:        e.MinimumStay,
		PriceSource:        string(e.PriceSource),
		SourceRef:          e.SourceRef,
		LockRef:            e.LockRef,
	}
}

func (d dayDocument) toDomain() (domaincalendar.DayEntry, error) {
	prices := make(map[int]money.Money, len(d.PricesByOccupancy))
	for key, p := range d.PricesByOccupancy {
		g, err := strconv.Atoi(key)
		if err != nil {
			return domaincalendar.DayEntry{}, err
		}
		prices[g] = p
	}
	return domaincalendar.DayEntry{
		BaseOccupancyPrice: d.BaseOccupancyPrice,
		PricesByOccupancy:  prices,
		Available:          d.Available,
		MinimumStay:        d.MinimumStay,
		PriceSource:        domaincalendar.PriceSource(d.PriceSource),
		SourceRef:          d.SourceRef,
		LockRef:            d.LockRef,
	}, nil
}

func newCalendarDocument(m *domaincalendar.CalendarMonth) calendarDocument {
	days := make(map[string]dayDocument, len(m.Days))
	for day, entry := range m.Days {
		days[strconv.Itoa(day)] = newDayDocument(entry)
	}
	return calendarDocument{
		ID:          m.ID,
		PropertyID:  m.PropertyID,
		Month:       m.Month.String(),
		Days:        days,
		Summary:     m.Summary,
		GeneratedAt: m.GeneratedAt,
		Version:     m.Version,
	}
}

func (d calendarDocument) toDomain() (*domaincalendar.CalendarMonth, error) {
	key, err := dates.ParseMonthKey(d.Month)
	if err != nil {
		return nil, err
	}
	days := make(map[int]domaincalendar.DayEntry, len(d.Days))
	for dayKey, doc := range d.Days {
		day, err := strconv.Atoi(dayKey)
		if err != nil {
			return nil, err
		}
		entry, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		days[day] = entry
	}
	return &domaincalendar.CalendarMonth{
		ID:          d.ID,
		PropertyID:  d.PropertyID,
		Month:       key,
		Days:        days,
		Summary:     d.Summary,
		GeneratedAt: d.GeneratedAt,
		Version:     d.Version,
	}, nil
}

func (r *CalendarRepository) Month(ctx context.Context, propertyID string, key dates.MonthKey) (*domaincalendar.CalendarMonth, error) {
	var doc calendarDocument
	err := r.col.FindOne(ctx, bson.M{"_id": domaincalendar.MonthID(propertyID, key)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincalendar.ErrMonthNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *CalendarRepository) MonthsTouching(ctx context.Context, propertyID string, stay dates.StayRange) ([]*domaincalendar.CalendarMonth, error) {
	var out []*domaincalendar.CalendarMonth
	for _, key := range stay.Months() {
		doc, err := r.Month(ctx, propertyID, key)
		if err != nil {
			if errors.Is(err, domaincalendar.ErrMonthNotFound) {
				return nil, &domaincalendar.DataGapError{PropertyID: propertyID, Month: key}
			}
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Replace writes the whole month document guarded by the stored version,
// upserting when it does not exist yet.
func (r *CalendarRepository) Replace(ctx context.Context, m *domaincalendar.CalendarMonth) error {
	doc := newCalendarDocument(m)
	filter := bson.M{"_id": doc.ID, "version": m.Version}
	doc.Version = m.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaincalendar.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domaincalendar.ErrConcurrentUpdate
	}
	m.Version = doc.Version
	return nil
}

// PatchDay updates one day sub-document in place, bumping the version so
// an in-flight Replace of the whole month cannot silently drop the patch.
func (r *CalendarRepository) PatchDay(ctx context.Context, propertyID string, key dates.MonthKey, day int, entry domaincalendar.DayEntry) error {
	current, err := r.Month(ctx, propertyID, key)
	if err != nil {
		return err
	}
	current.SetEntry(day, entry)
	update := bson.M{
		"$set": bson.M{
			"days." + strconv.Itoa(day): newDayDocument(entry),
			"summary":                   current.Summary,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.col.UpdateByID(ctx, domaincalendar.MonthID(propertyID, key), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaincalendar.ErrMonthNotFound
	}
	return nil
}
