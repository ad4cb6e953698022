package ai

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRateLimit is the default number of upstream calls per minute.
const DefaultRateLimit = 10

// RateLimiter paces upstream model calls, shared across all requests.
type RateLimiter struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter allows requestsPerMinute calls per minute with an equal burst.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{}
	rl.SetLimit(requestsPerMinute)
	return rl
}

// Wait blocks until a call is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	limiter := r.limiter
	r.mu.RUnlock()
	return limiter.Wait(ctx)
}

func (r *RateLimiter) GetLimit() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limit
}

// SetLimit replaces the limit. Non-positive values restore the default.
func (r *RateLimiter) SetLimit(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = requestsPerMinute
	r.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
}
