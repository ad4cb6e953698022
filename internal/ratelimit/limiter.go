// Package ratelimit decides whether a request fits the daily and hourly quota
// of every identifier that witnessed it.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"persona/backend/internal/model"
)

// Window names the quota window that limited a request.
type Window string

const (
	WindowNone   Window = "none"
	WindowDaily  Window = "daily"
	WindowHourly Window = "hourly"
)

var ErrInvalidConfig = errors.New("invalid rate limit config")

// Config holds the per-identifier limits.
type Config struct {
	DailyLimit  int
	HourlyLimit int
}

func (c Config) Validate() error {
	if c.DailyLimit <= 0 {
		return fmt.Errorf("%w: daily limit must be positive, got %d", ErrInvalidConfig, c.DailyLimit)
	}
	if c.HourlyLimit <= 0 {
		return fmt.Errorf("%w: hourly limit must be positive, got %d", ErrInvalidConfig, c.HourlyLimit)
	}
	return nil
}

// Decision is the result of a quota check. Counts are the maxima observed
// across the evaluated identifiers.
type Decision struct {
	Allowed        bool
	LimitingWindow Window
	DailyCount     int
	HourlyCount    int
	DailyResetAt   time.Time
	HourlyResetAt  time.Time
	// TriggeredBy is the kind of the identifier that caused a denial. It is
	// diagnostic only.
	TriggeredBy model.IdentifierKind
}

// ResetAt returns the reset instant of the limiting window.
func (d Decision) ResetAt() time.Time {
	if d.LimitingWindow == WindowHourly {
		return d.HourlyResetAt
	}
	return d.DailyResetAt
}

// Counts are the maxima of the post-increment counters.
type Counts struct {
	DailyCount    int
	HourlyCount   int
	DailyResetAt  time.Time
	HourlyResetAt time.Time
}

// CounterStore is the subset of counter.Store the limiter needs.
type CounterStore interface {
	CheckAndMaybeReset(ctx context.Context, id model.Identifier) (model.RateLimitRecord, error)
	Increment(ctx context.Context, id model.Identifier) (model.RateLimitRecord, error)
}

// Limiter applies Config to a set of identifiers.
type Limiter struct {
	store CounterStore
	cfg   Config
}

func NewLimiter(store CounterStore, cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

func (l *Limiter) Config() Config {
	return l.cfg
}

// Check walks ids in order. The first identifier whose count has reached a
// limit denies the request and the rest are not evaluated. Daily is checked
// before hourly.
func (l *Limiter) Check(ctx context.Context, ids []model.Identifier) (Decision, error) {
	decision := Decision{Allowed: true, LimitingWindow: WindowNone}
	for _, id := range ids {
		record, err := l.store.CheckAndMaybeReset(ctx, id)
		if err != nil {
			return Decision{}, fmt.Errorf("check %s: %w", id.Key(), err)
		}
		decision.observe(record)

		if record.DailyCount >= l.cfg.DailyLimit {
			return decision.deny(WindowDaily, record), nil
		}
		if record.HourlyCount >= l.cfg.HourlyLimit {
			return decision.deny(WindowHourly, record), nil
		}
	}
	return decision, nil
}

func (d *Decision) observe(record model.RateLimitRecord) {
	if record.DailyCount > d.DailyCount || d.DailyResetAt.IsZero() {
		d.DailyCount = max(d.DailyCount, record.DailyCount)
		d.DailyResetAt = record.DailyResetAt
	}
	if record.HourlyCount > d.HourlyCount || d.HourlyResetAt.IsZero() {
		d.HourlyCount = max(d.HourlyCount, record.HourlyCount)
		d.HourlyResetAt = record.HourlyResetAt
	}
}

func (d Decision) deny(window Window, record model.RateLimitRecord) Decision {
	d.Allowed = false
	d.LimitingWindow = window
	d.TriggeredBy = record.Kind
	// The limiting identifier's boundary is the one the caller has to wait for.
	if window == WindowDaily {
		d.DailyResetAt = record.DailyResetAt
	} else {
		d.HourlyResetAt = record.HourlyResetAt
	}
	return d
}

// Record increments every identifier and returns the maximum post-increment
// counts. It does not re-check limits.
func (l *Limiter) Record(ctx context.Context, ids []model.Identifier) (Counts, error) {
	var (
		mu     sync.Mutex
		counts Counts
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			record, err := l.store.Increment(gctx, id)
			if err != nil {
				return fmt.Errorf("record %s: %w", id.Key(), err)
			}
			mu.Lock()
			counts.observe(record)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func (c *Counts) observe(record model.RateLimitRecord) {
	if record.DailyCount > c.DailyCount || c.DailyResetAt.IsZero() {
		c.DailyCount = max(c.DailyCount, record.DailyCount)
		c.DailyResetAt = record.DailyResetAt
	}
	if record.HourlyCount > c.HourlyCount || c.HourlyResetAt.IsZero() {
		c.HourlyCount = max(c.HourlyCount, record.HourlyCount)
		c.HourlyResetAt = record.HourlyResetAt
	}
}
