package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"persona/backend/internal/metrics"
)

const DefaultCacheTTL = 3 * time.Second

type cacheEntry struct {
	network  string
	token    string
	decision Decision
}

// QuotaCache memoizes allowed decisions per (network, token) for a short TTL.
// Expired entries are dropped lazily by go-cache and by its janitor.
type QuotaCache struct {
	entries *cache.Cache
	group   singleflight.Group

	mu         sync.Mutex
	generation uint64
}

// NewQuotaCache creates a cache. A non-positive ttl disables caching.
func NewQuotaCache(ttl time.Duration) *QuotaCache {
	if ttl <= 0 {
		return &QuotaCache{}
	}
	return &QuotaCache{entries: cache.New(ttl, 4*ttl)}
}

func cacheKey(network, token string) string {
	return network + "\x00" + token
}

func (c *QuotaCache) Get(network, token string) (Decision, bool) {
	if c.entries == nil {
		return Decision{}, false
	}
	v, ok := c.entries.Get(cacheKey(network, token))
	if !ok {
		return Decision{}, false
	}
	return v.(cacheEntry).decision, true
}

// Put stores d if it is an allowed decision.
func (c *QuotaCache) Put(network, token string, d Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(network, token, d)
}

func (c *QuotaCache) put(network, token string, d Decision) {
	if c.entries == nil || !d.Allowed {
		return
	}
	c.entries.SetDefault(cacheKey(network, token), cacheEntry{network: network, token: token, decision: d})
}

// Invalidate drops every entry sharing the network or a non-empty token, and
// stops in-flight checks from writing their result back.
func (c *QuotaCache) Invalidate(network, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.entries == nil {
		return
	}
	for key, item := range c.entries.Items() {
		entry, ok := item.Object.(cacheEntry)
		if !ok {
			continue
		}
		if entry.network == network || (token != "" && entry.token == token) {
			c.entries.Delete(key)
		}
	}
}

// Do returns the cached decision or runs check once for all concurrent
// callers of the same key and generation.
func (c *QuotaCache) Do(network, token string, check func() (Decision, error)) (Decision, error) {
	if d, ok := c.Get(network, token); ok {
		metrics.ObserveCacheLookup(true)
		return d, nil
	}
	metrics.ObserveCacheLookup(false)

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	flight := cacheKey(network, token) + "\x00" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		d, err := check()
		if err != nil {
			return Decision{}, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.put(network, token, d)
		}
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return Decision{}, err
	}
	return v.(Decision), nil
}

func (c *QuotaCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.ItemCount()
}
