package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staycal/internal/domain/booking"
	"staycal/internal/domain/shared/dates"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("bookings")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "state", Value: 1}, {Key: "check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

type bookingDocument struct {
	ID         string                      `bson:"_id"`
	PropertyID string                      `bson:"property_id"`
	CheckIn    string                      `bson:"check_in"`
	CheckOut   string                      `bson:"check_out"`
	Guests     int                         `bson:"guests"`
	State      string                      `bson:"state"`
	Quote      domainbooking.QuoteSnapshot `bson:"quote"`
	HoldUntil  int64                       `bson:"hold_until,omitempty"`
	CreatedAt  int64                       `bson:"created_at"`
	UpdatedAt  int64                       `bson:"updated_at"`
	Version    int64                       `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		PropertyID: b.PropertyID,
		CheckIn:    b.Stay.CheckIn.String(),
		CheckOut:   b.Stay.CheckOut.String(),
		Guests:     b.Guests,
		State:      string(b.State),
		Quote:      b.Quote,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
	if !b.HoldUntil.IsZero() {
		doc.HoldUntil = b.HoldUntil.UnixMilli()
	}
	return doc
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	checkIn, err := dates.Parse(d.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := dates.Parse(d.CheckOut)
	if err != nil {
		return nil, err
	}
	b := &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		PropertyID: d.PropertyID,
		Stay:       dates.StayRange{CheckIn: checkIn, CheckOut: checkOut},
		Guests:     d.Guests,
		State:      domainbooking.State(d.State),
		Quote:      d.Quote,
		CreatedAt:  time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMilli(d.UpdatedAt).UTC(),
		Version:    d.Version,
	}
	if d.HoldUntil != 0 {
		b.HoldUntil = time.UnixMilli(d.HoldUntil).UTC()
	}
	return b, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ActiveInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]*domainbooking.Booking, error) {
	first := month.First()
	afterLast := month.Next().First()
	filter := bson.M{
		"property_id": propertyID,
		"state":       bson.M{"$in": []string{string(domainbooking.StateConfirmed), string(domainbooking.StateOnHold)}},
		"check_in":    bson.M{"$lt": afterLast.String()},
		"check_out":   bson.M{"$gt": first.String()},
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) ExpiredHolds(ctx context.Context, now time.Time) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"state":      string(domainbooking.StateOnHold),
		"hold_until": bson.M{"$gt": 0, "$lt": now.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cursor.Err()
}
