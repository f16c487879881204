// Package quota bounds extraction API usage to the free-tier limits.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrDailyBudget is returned once the per-day request budget is spent.
var ErrDailyBudget = eris.New("quota: daily request budget exhausted")

// Status is a point-in-time snapshot of quota usage.
type Status struct {
	UsedToday      int `json:"used_today"`
	MaxPerDay      int `json:"max_per_day"`
	RemainingToday int `json:"remaining_today"`
	MaxPerMinute   int `json:"max_per_minute"`
}

// Tracker enforces a per-minute rate and a per-day budget. The minute rate
// blocks; the day budget errors. The day counter resets at local midnight.
type Tracker struct {
	limiter   *rate.Limiter
	maxPerDay int

	mu        sync.Mutex
	usedToday int
	day       time.Time

	now func() time.Time // test seam
}

// New builds a Tracker allowing maxPerMinute requests per minute and
// maxPerDay per calendar day.
func New(maxPerMinute, maxPerDay int) *Tracker {
	return &Tracker{
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute),
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
}

// Acquire blocks until a request slot is available within the minute rate,
// or fails fast when the daily budget is spent.
func (t *Tracker) Acquire(ctx context.Context) error {
	t.mu.Lock()
	t.rollover()
	if t.usedToday >= t.maxPerDay {
		t.mu.Unlock()
		return ErrDailyBudget
	}
	t.usedToday++
	t.mu.Unlock()

	if err := t.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "quota: wait for rate slot")
	}
	return nil
}

// Status returns the current quota snapshot.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return Status{
		UsedToday:      t.usedToday,
		MaxPerDay:      t.maxPerDay,
		RemainingToday: t.maxPerDay - t.usedToday,
		MaxPerMinute:   t.limiter.Burst(),
	}
}

// rollover resets the day counter when the calendar day changes.
// Caller holds mu.
func (t *Tracker) rollover() {
	today := t.now().Truncate(24 * time.Hour)
	if !today.Equal(t.day) {
		t.day = today
		t.usedToday = 0
	}
}
