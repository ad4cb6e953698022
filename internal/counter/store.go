package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"persona/backend/internal/metrics"
	"persona/backend/internal/model"
	"persona/backend/pkg/logger"
)

// ErrStoreUnavailable marks a durable tier failure. The store recovers from it
// by serving the operation from memory.
var ErrStoreUnavailable = errors.New("counter store unavailable")

const (
	DefaultTimeout          = 2 * time.Second
	DefaultFailureThreshold = 3
	DefaultOpenTimeout      = 30 * time.Second
)

// Options tunes the durable tier guard.
type Options struct {
	// Timeout bounds every durable call.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	Clock       Clock
}

// Store is the counter facade used by the rate limiter. It prefers the
// durable backend and silently serves from memory when that tier fails.
type Store struct {
	durable Backend
	memory  *MemoryBackend
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	clock   Clock
}

// NewStore wraps durable with a breaker and a memory fallback. A nil durable
// backend produces a memory-only store.
func NewStore(durable Backend, opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		durable: durable,
		memory:  NewMemoryBackend(),
		timeout: opts.Timeout,
		clock:   opts.Clock,
	}
	if durable != nil {
		threshold := opts.FailureThreshold
		s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "counter-" + durable.Name(),
			MaxRequests: 1,
			Timeout:     opts.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("counter store breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
				metrics.SetDegraded(to != gobreaker.StateClosed)
			},
		})
	}
	return s
}

// Now returns the store clock reading.
func (s *Store) Now() time.Time {
	return s.clock()
}

// Backend names the tier currently preferred for new operations.
func (s *Store) Backend() string {
	if s.durable == nil || s.Degraded() {
		return s.memory.Name()
	}
	return s.durable.Name()
}

// Degraded reports whether the durable tier is currently bypassed. A
// memory-only store is never degraded.
func (s *Store) Degraded() bool {
	if s.breaker == nil {
		return false
	}
	return s.breaker.State() != gobreaker.StateClosed
}

// Memory exposes the fallback tier.
func (s *Store) Memory() *MemoryBackend {
	return s.memory
}

// CheckAndMaybeReset returns the current counters of id after applying any
// due window reset, creating the record when it does not exist.
func (s *Store) CheckAndMaybeReset(ctx context.Context, id model.Identifier) (model.RateLimitRecord, error) {
	bounds := Bounds(s.clock())
	return s.do(ctx, "check", id, func(ctx context.Context, b Backend) (model.RateLimitRecord, error) {
		return b.CheckAndReset(ctx, id, bounds)
	})
}

// Increment applies due resets and adds one to both windows of id.
func (s *Store) Increment(ctx context.Context, id model.Identifier) (model.RateLimitRecord, error) {
	bounds := Bounds(s.clock())
	return s.do(ctx, "increment", id, func(ctx context.Context, b Backend) (model.RateLimitRecord, error) {
		return b.Increment(ctx, id, bounds)
	})
}

type operation func(ctx context.Context, b Backend) (model.RateLimitRecord, error)

func (s *Store) do(ctx context.Context, name string, id model.Identifier, op operation) (model.RateLimitRecord, error) {
	if s.durable != nil {
		record, err := s.durableCall(ctx, op)
		if err == nil {
			return record, nil
		}
		// A caller that went away is not an outage. Counting in memory here
		// would hide the increment from the durable tier.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.RateLimitRecord{}, ctxErr
		}
		logger.Warn("counter store fallback", "operation", name, "identifier", id.Key(), "backend", s.durable.Name(), "error", err)
		metrics.ObserveFallback(name)
	}
	return op(ctx, s.memory)
}

func (s *Store) durableCall(ctx context.Context, op operation) (model.RateLimitRecord, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return op(callCtx, s.durable)
	})
	if err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result.(model.RateLimitRecord), nil
}

// Prune removes records untouched since before from every tier.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	removed, _ := s.memory.Prune(ctx, before)
	if s.durable == nil {
		return removed, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.durable.Prune(callCtx, before)
	if err != nil {
		return removed, fmt.Errorf("prune %s counters: %w", s.durable.Name(), err)
	}
	return removed + n, nil
}

// List reports up to limit records from the tier currently serving requests,
// together with that tier's name.
func (s *Store) List(ctx context.Context, limit int) ([]model.RateLimitRecord, string, error) {
	if s.durable == nil || s.Degraded() {
		records, err := s.memory.List(ctx, limit)
		return records, s.memory.Name(), err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := s.durable.List(callCtx, limit)
	if err != nil {
		return nil, s.durable.Name(), fmt.Errorf("list %s counters: %w", s.durable.Name(), err)
	}
	return records, s.durable.Name(), nil
}

// Ping checks the durable tier without going through the breaker.
func (s *Store) Ping(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.durable.Ping(callCtx)
}
