package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"persona/backend/internal/model"
	"persona/backend/pkg/logger"
)

const redisKeyPrefix = "persona:ratelimit:"

// windowScript applies due resets and adds ARGV[4] to both windows in one
// atomic step. Boundaries are unix seconds.
var windowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local v = redis.call('HMGET', KEYS[1], 'dc', 'dr', 'hc', 'hr')
local dc = tonumber(v[1]) or 0
local dr = tonumber(v[2]) or 0
local hc = tonumber(v[3]) or 0
local hr = tonumber(v[4]) or 0
if dr == 0 or now >= dr then
	dc = 0
	dr = tonumber(ARGV[2])
end
if hr == 0 or now >= hr then
	hc = 0
	hr = tonumber(ARGV[3])
end
local step = tonumber(ARGV[4])
dc = dc + step
hc = hc + step
redis.call('HSET', KEYS[1], 'dc', dc, 'dr', dr, 'hc', hc, 'hr', hr, 'ua', now)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {dc, dr, hc, hr}
`)

// RedisBackend stores each identifier as a hash that expires after the
// retention period, so Prune has nothing to do.
type RedisBackend struct {
	rdb       *redis.Client
	retention time.Duration
}

// RedisConfig configures the redis counter tier.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Retention time.Duration
}

// NewRedisBackend builds the redis tier and probes it once. An unreachable
// server is logged and left to the store breaker, so the process still starts
// and counts in memory until redis answers.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, counting in memory until it answers", "addr", cfg.Addr, "error", err)
	}
	return NewRedisBackendFromClient(rdb, cfg.Retention), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(rdb *redis.Client, retention time.Duration) *RedisBackend {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &RedisBackend{rdb: rdb, retention: retention}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) CheckAndReset(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return b.run(ctx, id, bounds, 0)
}

func (b *RedisBackend) Increment(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return b.run(ctx, id, bounds, 1)
}

func (b *RedisBackend) run(ctx context.Context, id model.Identifier, bounds model.WindowBounds, step int) (model.RateLimitRecord, error) {
	reply, err := windowScript.Run(ctx, b.rdb, []string{redisKeyPrefix + id.Key()},
		bounds.Now.Unix(),
		bounds.NextDailyAt.Unix(),
		bounds.NextHourlyAt.Unix(),
		step,
		int64(b.retention.Seconds()),
	).Result()
	if err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("redis counter %s: %w", id.Key(), err)
	}
	result, err := int64Values(reply)
	if err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("redis counter %s: %w", id.Key(), err)
	}
	return model.RateLimitRecord{
		Identifier:    id.Value,
		Kind:          id.Kind,
		DailyCount:    int(result[0]),
		DailyResetAt:  time.Unix(result[1], 0).UTC(),
		HourlyCount:   int(result[2]),
		HourlyResetAt: time.Unix(result[3], 0).UTC(),
		UpdatedAt:     bounds.Now,
	}, nil
}

func int64Values(reply interface{}) ([]int64, error) {
	items, ok := reply.([]interface{})
	if !ok || len(items) != 4 {
		return nil, fmt.Errorf("unexpected reply %v", reply)
	}
	values := make([]int64, len(items))
	for i, item := range items {
		n, ok := item.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected reply item %v", item)
		}
		values[i] = n
	}
	return values, nil
}

func (b *RedisBackend) Prune(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// List scans every counter hash. It is meant for the admin report, not the
// request path.
func (b *RedisBackend) List(ctx context.Context, limit int) ([]model.RateLimitRecord, error) {
	var records []model.RateLimitRecord
	iter := b.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, ok := parseRedisKey(key)
		if !ok {
			continue
		}
		values, err := b.rdb.HMGet(ctx, key, "dc", "dr", "hc", "hr", "ua").Result()
		if err != nil {
			return nil, fmt.Errorf("redis list %s: %w", key, err)
		}
		records = append(records, model.RateLimitRecord{
			Identifier:    id.Value,
			Kind:          id.Kind,
			DailyCount:    int(hashInt(values[0])),
			DailyResetAt:  time.Unix(hashInt(values[1]), 0).UTC(),
			HourlyCount:   int(hashInt(values[2])),
			HourlyResetAt: time.Unix(hashInt(values[3]), 0).UTC(),
			UpdatedAt:     time.Unix(hashInt(values[4]), 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return busiest(records, limit), nil
}

func parseRedisKey(key string) (model.Identifier, bool) {
	kind, value, ok := strings.Cut(strings.TrimPrefix(key, redisKeyPrefix), ":")
	if !ok {
		return model.Identifier{}, false
	}
	id := model.Identifier{Kind: model.IdentifierKind(kind), Value: value}
	return id, id.Kind.Valid()
}

func hashInt(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
