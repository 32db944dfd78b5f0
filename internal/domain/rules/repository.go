package rules

import (
	"context"
	"errors"

	"staycal/internal/domain/shared/dates"
)

var (
	ErrConfigNotFound   = errors.New("rules: pricing config not found")
	ErrOverrideNotFound = errors.New("rules: date override not found")
	ErrCouponNotFound   = errors.New("rules: coupon not found")
)

// ConfigRepository persists per-property pricing configuration.
type ConfigRepository interface {
	Config(ctx context.Context, propertyID string) (PropertyPricingConfig, error)
	SaveConfig(ctx context.Context, cfg PropertyPricingConfig) error
	PropertyIDs(ctx context.Context) ([]string, error)
}

// SeasonRepository persists seasonal pricing periods.
type SeasonRepository interface {
	SeasonsOverlapping(ctx context.Context, propertyID string, month dates.MonthKey) ([]SeasonalPricingPeriod, error)
	SaveSeason(ctx context.Context, period SeasonalPricingPeriod) error
	DisableSeason(ctx context.Context, propertyID, seasonID string) error
}

// OverrideRepository persists per-date overrides, keyed by OverrideID.
type OverrideRepository interface {
	OverridesInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]DateOverride, error)
	Override(ctx context.Context, propertyID string, d dates.Date) (DateOverride, error)
	SaveOverride(ctx context.Context, o DateOverride) error
	DeleteOverride(ctx context.Context, propertyID string, d dates.Date) error
}

// CouponRepository resolves coupon codes.
type CouponRepository interface {
	Coupon(ctx context.Context, code string) (Coupon, error)
	SaveCoupon(ctx context.Context, c Coupon) error
}
