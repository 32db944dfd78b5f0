package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	bookingapp "staycal/internal/app/handlers/booking"
	calendarapp "staycal/internal/app/handlers/calendar"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

// keyedLocks serializes work per property+month key. Different keys run
// concurrently; the same key never does.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) *sync.Mutex {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l
}

// Worker drives the batch side of the engine: the nightly calendar
// regeneration sweep and the hold-expiry sweep. It owns scheduling only;
// the generation itself lives in the command handlers.
type Worker struct {
	Configs      rules.ConfigRepository
	Regenerate   *calendarapp.RegenerateMonthHandler
	ExpireHolds  *bookingapp.ExpireHoldsHandler
	Logger       *slog.Logger
	Interval     time.Duration
	HoldInterval time.Duration
	Horizon      int
	Now          func() time.Time

	keys keyedLocks
}

func (w *Worker) Run(ctx context.Context) error {
	regenTicker := time.NewTicker(w.interval())
	defer regenTicker.Stop()
	holdTicker := time.NewTicker(w.holdInterval())
	defer holdTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-regenTicker.C:
			w.SweepCalendars(ctx)
		case <-holdTicker.C:
			w.SweepHolds(ctx)
		}
	}
}

// SweepCalendars regenerates the configured horizon for every property.
// Properties run concurrently; property+month pairs are serialized through
// the keyed locks.
func (w *Worker) SweepCalendars(ctx context.Context) {
	ids, err := w.Configs.PropertyIDs(ctx)
	if err != nil {
		if w.Logger != nil {
			w.Logger.Error("calendar sweep aborted, cannot list properties", "error", err)
		}
		return
	}
	start := dates.MonthOf(dates.FromTime(w.now()))

	var wg sync.WaitGroup
	for _, propertyID := range ids {
		wg.Add(1)
		go func(propertyID string) {
			defer wg.Done()
			w.regenerateProperty(ctx, propertyID, start)
		}(propertyID)
	}
	wg.Wait()
}

func (w *Worker) regenerateProperty(ctx context.Context, propertyID string, start dates.MonthKey) {
	key := start
	for i := 0; i < w.horizon(); i++ {
		if ctx.Err() != nil {
			return
		}
		w.regenerateOne(ctx, propertyID, key)
		key = key.Next()
	}
}

func (w *Worker) regenerateOne(ctx context.Context, propertyID string, month dates.MonthKey) {
	l := w.keys.lock(calendar.MonthID(propertyID, month))
	defer l.Unlock()
	if _, err := w.Regenerate.Handle(ctx, calendarapp.RegenerateMonthCommand{PropertyID: propertyID, Month: month}); err != nil {
		if w.Logger != nil {
			w.Logger.Error("month regeneration failed", "property_id", propertyID, "month", month.String(), "error", err)
		}
	}
}

// SweepHolds releases expired holds.
func (w *Worker) SweepHolds(ctx context.Context) {
	if w.ExpireHolds == nil {
		return
	}
	res, err := w.ExpireHolds.Handle(ctx, bookingapp.ExpireHoldsCommand{})
	if err != nil {
		if w.Logger != nil {
			w.Logger.Error("hold sweep failed", "error", err)
		}
		return
	}
	if res.Expired > 0 && w.Logger != nil {
		w.Logger.Info("expired holds released", "count", res.Expired)
	}
}

func (w *Worker) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return 24 * time.Hour
}

func (w *Worker) holdInterval() time.Duration {
	if w.HoldInterval > 0 {
		return w.HoldInterval
	}
	return time.Minute
}

func (w *Worker) horizon() int {
	if w.Horizon > 0 {
		return w.Horizon
	}
	return 12
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}
