package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrules "staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
	"staycal/internal/domain/shared/money"
)

// Dates are stored as ISO YYYY-MM-DD strings so range filters compare
// lexicographically.

type ConfigRepository struct {
	col *mongo.Collection
}

func NewConfigRepository(db *mongo.Database) *ConfigRepository {
	return &ConfigRepository{col: db.Collection("pricing_configs")}
}

func (r *ConfigRepository) Config(ctx context.Context, propertyID string) (domainrules.PropertyPricingConfig, error) {
	var cfg domainrules.PropertyPricingConfig
	err := r.col.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainrules.PropertyPricingConfig{}, domainrules.ErrConfigNotFound
		}
		return domainrules.PropertyPricingConfig{}, err
	}
	return cfg, nil
}

func (r *ConfigRepository) SaveConfig(ctx context.Context, cfg domainrules.PropertyPricingConfig) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": cfg.PropertyID}, cfg, opts)
	return err
}

func (r *ConfigRepository) PropertyIDs(ctx context.Context) ([]string, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

type SeasonRepository struct {
	col *mongo.Collection
}

func NewSeasonRepository(db *mongo.Database) *SeasonRepository {
	col := db.Collection("seasonal_periods")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "start_date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &SeasonRepository{col: col}
}

type seasonDocument struct {
	ID              string    `bson:"_id"`
	PropertyID      string    `bson:"property_id"`
	StartDate       string    `bson:"start_date"`
	EndDate         string    `bson:"end_date"`
	SeasonType      int       `bson:"season_type"`
	PriceMultiplier float64   `bson:"price_multiplier"`
	MinStayOverride int       `bson:"min_stay_override,omitempty"`
	Enabled         bool      `bson:"enabled"`
	CreatedAt       time.Time `bson:"created_at"`
}

func newSeasonDocument(p domainrules.SeasonalPricingPeriod) seasonDocument {
	return seasonDocument{
		ID:              p.ID,
		PropertyID:      p.PropertyID,
		StartDate:       p.StartDate.String(),
		EndDate:         p.EndDate.String(),
		SeasonType:      int(p.SeasonType),
		PriceMultiplier: p.PriceMultiplier,
		MinStayOverride: p.MinStayOverride,
		Enabled:         p.Enabled,
		CreatedAt:       p.CreatedAt,
	}
}

func (d seasonDocument) toDomain() (domainrules.SeasonalPricingPeriod, error) {
	start, err := dates.Parse(d.StartDate)
	if err != nil {
		return domainrules.SeasonalPricingPeriod{}, err
	}
	end, err := dates.Parse(d.EndDate)
	if err != nil {
		return domainrules.SeasonalPricingPeriod{}, err
	}
	return domainrules.SeasonalPricingPeriod{
		ID:              d.ID,
		PropertyID:      d.PropertyID,
		StartDate:       start,
		EndDate:         end,
		SeasonType:      domainrules.SeasonType(d.SeasonType),
		PriceMultiplier: d.PriceMultiplier,
		MinStayOverride: d.MinStayOverride,
		Enabled:         d.Enabled,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func (r *SeasonRepository) SeasonsOverlapping(ctx context.Context, propertyID string, month dates.MonthKey) ([]domainrules.SeasonalPricingPeriod, error) {
	first := month.First()
	last := dates.NewDate(month.Year, month.Month, month.DaysInMonth())
	filter := bson.M{
		"property_id": propertyID,
		"start_date":  bson.M{"$lte": last.String()},
		"end_date":    bson.M{"$gte": first.String()},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainrules.SeasonalPricingPeriod
	for cursor.Next(ctx) {
		var doc seasonDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		period, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, cursor.Err()
}

func (r *SeasonRepository) SaveSeason(ctx context.Context, period domainrules.SeasonalPricingPeriod) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": period.ID}, newSeasonDocument(period), opts)
	return err
}

func (r *SeasonRepository) DisableSeason(ctx context.Context, propertyID, seasonID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": seasonID, "property_id": propertyID},
		bson.M{"$set": bson.M{"enabled": false}})
	return err
}

type OverrideRepository struct {
	col *mongo.Collection
}

func NewOverrideRepository(db *mongo.Database) *OverrideRepository {
	col := db.Collection("date_overrides")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &OverrideRepository{col: col}
}

type overrideDocument struct {
	ID              string      `bson:"_id"`
	PropertyID      string      `bson:"property_id"`
	Date            string      `bson:"date"`
	CustomPrice     money.Money `bson:"custom_price"`
	Available       bool        `bson:"available"`
	MinStayOverride int         `bson:"min_stay_override,omitempty"`
	FlatRate        bool        `bson:"flat_rate"`
	Reason          string      `bson:"reason,omitempty"`
	UpdatedAt       time.Time   `bson:"updated_at"`
}

func newOverrideDocument(o domainrules.DateOverride) overrideDocument {
	return overrideDocument{
		ID:              o.ID,
		PropertyID:      o.PropertyID,
		Date:            o.Date.String(),
		CustomPrice:     o.CustomPrice,
		Available:       o.Available,
		MinStayOverride: o.MinStayOverride,
		FlatRate:        o.FlatRate,
		Reason:          o.Reason,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (d overrideDocument) toDomain() (domainrules.DateOverride, error) {
	date, err := dates.Parse(d.Date)
	if err != nil {
		return domainrules.DateOverride{}, err
	}
	return domainrules.DateOverride{
		ID:              d.ID,
		PropertyID:      d.PropertyID,
		Date:            date,
		CustomPrice:     d.CustomPrice,
		Available:       d.Available,
		MinStayOverride: d.MinStayOverride,
		FlatRate:        d.FlatRate,
		Reason:          d.Reason,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func (r *OverrideRepository) OverridesInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]domainrules.DateOverride, error) {
	first := month.First()
	last := dates.NewDate(month.Year, month.Month, month.DaysInMonth())
	filter := bson.M{
		"property_id": propertyID,
		"date":        bson.M{"$gte": first.String(), "$lte": last.String()},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainrules.DateOverride
	for cursor.Next(ctx) {
		var doc overrideDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		o, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, cursor.Err()
}

func (r *OverrideRepository) Override(ctx context.Context, propertyID string, d dates.Date) (domainrules.DateOverride, error) {
	var doc overrideDocument
	err := r.col.FindOne(ctx, bson.M{"_id": domainrules.OverrideID(propertyID, d)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainrules.DateOverride{}, domainrules.ErrOverrideNotFound
		}
		return domainrules.DateOverride{}, err
	}
	return doc.toDomain()
}

func (r *OverrideRepository) SaveOverride(ctx context.Context, o domainrules.DateOverride) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, newOverrideDocument(o), opts)
	return err
}

func (r *OverrideRepository) DeleteOverride(ctx context.Context, propertyID string, d dates.Date) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": domainrules.OverrideID(propertyID, d)})
	return err
}

type CouponRepository struct {
	col *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: db.Collection("coupons")}
}

func (r *CouponRepository) Coupon(ctx context.Context, code string) (domainrules.Coupon, error) {
	var c domainrules.Coupon
	err := r.col.FindOne(ctx, bson.M{"_id": code}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainrules.Coupon{}, domainrules.ErrCouponNotFound
		}
		return domainrules.Coupon{}, err
	}
	return c, nil
}

func (r *CouponRepository) SaveCoupon(ctx context.Context, c domainrules.Coupon) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.Code}, c, opts)
	return err
}
