package ratelimit

import (
	"context"
	"time"

	"persona/backend/internal/identity"
	"persona/backend/internal/metrics"
	"persona/backend/internal/model"
)

// Headers is the quota summary exposed to clients.
type Headers struct {
	DailyLimit      int
	DailyRemaining  int
	HourlyLimit     int
	HourlyRemaining int
	DailyResetAt    time.Time
	HourlyResetAt   time.Time
}

// Engine is the outward quota interface: resolve identifiers, check through
// the cache, and commit after a successful request.
type Engine struct {
	limiter *Limiter
	cache   *QuotaCache
}

func NewEngine(limiter *Limiter, cache *QuotaCache) *Engine {
	if cache == nil {
		cache = NewQuotaCache(0)
	}
	return &Engine{limiter: limiter, cache: cache}
}

func (e *Engine) Config() Config {
	return e.limiter.Config()
}

// Evaluate decides whether rc may make one more request. It never increments.
func (e *Engine) Evaluate(ctx context.Context, rc identity.RequestContext) (Decision, error) {
	d, err := e.evaluate(ctx, rc)
	if err != nil {
		return Decision{}, err
	}
	metrics.ObserveDecision(d.Allowed, string(d.LimitingWindow))
	return d, nil
}

func (e *Engine) evaluate(ctx context.Context, rc identity.RequestContext) (Decision, error) {
	ids := identity.Resolve(rc)
	network, token := cacheParts(ids)
	return e.cache.Do(network, token, func() (Decision, error) {
		return e.limiter.Check(ctx, ids)
	})
}

// Commit counts the request against every identifier of rc and invalidates
// overlapping cache entries.
func (e *Engine) Commit(ctx context.Context, rc identity.RequestContext) (Counts, error) {
	ids := identity.Resolve(rc)
	network, token := cacheParts(ids)
	defer e.cache.Invalidate(network, token)
	return e.limiter.Record(ctx, ids)
}

// HeadersFor reports the remaining quota of rc without committing.
func (e *Engine) HeadersFor(ctx context.Context, rc identity.RequestContext) (Headers, error) {
	d, err := e.evaluate(ctx, rc)
	if err != nil {
		return Headers{}, err
	}
	return e.headers(d.DailyCount, d.HourlyCount, d.DailyResetAt, d.HourlyResetAt), nil
}

// HeadersFromCounts reports the remaining quota after a commit.
func (e *Engine) HeadersFromCounts(c Counts) Headers {
	return e.headers(c.DailyCount, c.HourlyCount, c.DailyResetAt, c.HourlyResetAt)
}

// HeadersFromDecision reports the remaining quota of a checked request.
func (e *Engine) HeadersFromDecision(d Decision) Headers {
	return e.headers(d.DailyCount, d.HourlyCount, d.DailyResetAt, d.HourlyResetAt)
}

func (e *Engine) headers(daily, hourly int, dailyReset, hourlyReset time.Time) Headers {
	cfg := e.limiter.Config()
	return Headers{
		DailyLimit:      cfg.DailyLimit,
		DailyRemaining:  max(0, cfg.DailyLimit-daily),
		HourlyLimit:     cfg.HourlyLimit,
		HourlyRemaining: max(0, cfg.HourlyLimit-hourly),
		DailyResetAt:    dailyReset,
		HourlyResetAt:   hourlyReset,
	}
}

func cacheParts(ids []model.Identifier) (network, token string) {
	for _, id := range ids {
		switch id.Kind {
		case model.KindNetwork:
			network = id.Value
		case model.KindToken:
			token = id.Value
		}
	}
	return network, token
}
