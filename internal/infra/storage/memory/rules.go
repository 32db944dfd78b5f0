package memory

import (
	"context"
	"sort"
	"sync"

	domainrules "staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

// RuleStore is an in-memory rule store for dev mode and tests.
type RuleStore struct {
	mu        sync.RWMutex
	configs   map[string]domainrules.PropertyPricingConfig
	seasons   map[string]domainrules.SeasonalPricingPeriod
	overrides map[string]domainrules.DateOverride
	coupons   map[string]domainrules.Coupon
}

func NewRuleStore() *RuleStore {
	return &RuleStore{
		configs:   make(map[string]domainrules.PropertyPricingConfig),
		seasons:   make(map[string]domainrules.SeasonalPricingPeriod),
		overrides: make(map[string]domainrules.DateOverride),
		coupons:   make(map[string]domainrules.Coupon),
	}
}

func (s *RuleStore) Config(ctx context.Context, propertyID string) (domainrules.PropertyPricingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[propertyID]
	if !ok {
		return domainrules.PropertyPricingConfig{}, domainrules.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *RuleStore) SaveConfig(ctx context.Context, cfg domainrules.PropertyPricingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.PropertyID] = cfg
	return nil
}

func (s *RuleStore) PropertyIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.configs))
	for id := range s.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RuleStore) SeasonsOverlapping(ctx context.Context, propertyID string, month dates.MonthKey) ([]domainrules.SeasonalPricingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	first := month.First()
	last := dates.NewDate(month.Year, month.Month, month.DaysInMonth())
	var out []domainrules.SeasonalPricingPeriod
	for _, p := range s.seasons {
		if p.PropertyID != propertyID {
			continue
		}
		if p.StartDate.After(last) || p.EndDate.Before(first) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RuleStore) SaveSeason(ctx context.Context, period domainrules.SeasonalPricingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons[period.ID] = period
	return nil
}

func (s *RuleStore) DisableSeason(ctx context.Context, propertyID, seasonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.seasons[seasonID]
	if !ok || p.PropertyID != propertyID {
		return nil
	}
	p.Enabled = false
	s.seasons[seasonID] = p
	return nil
}

func (s *RuleStore) OverridesInMonth(ctx context.Context, propertyID string, month dates.MonthKey) ([]domainrules.DateOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domainrules.DateOverride
	for _, o := range s.overrides {
		if o.PropertyID == propertyID && dates.MonthOf(o.Date) == month {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *RuleStore) Override(ctx context.Context, propertyID string, d dates.Date) (domainrules.DateOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[domainrules.OverrideID(propertyID, d)]
	if !ok {
		return domainrules.DateOverride{}, domainrules.ErrOverrideNotFound
	}
	return o, nil
}

func (s *RuleStore) SaveOverride(ctx context.Context, o domainrules.DateOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o = o.WithID()
	}
	s.overrides[o.ID] = o
	return nil
}

func (s *RuleStore) DeleteOverride(ctx context.Context, propertyID string, d dates.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, domainrules.OverrideID(propertyID, d))
	return nil
}

func (s *RuleStore) Coupon(ctx context.Context, code string) (domainrules.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coupons[code]
	if !ok {
		return domainrules.Coupon{}, domainrules.ErrCouponNotFound
	}
	return c, nil
}

func (s *RuleStore) SaveCoupon(ctx context.Context, c domainrules.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.Code] = c
	return nil
}
