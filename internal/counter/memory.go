package counter

import (
	"context"
	"sort"
	"sync"
	"time"

	"persona/backend/internal/model"
)

// MemoryBackend keeps counters in process memory. It is the fallback tier and
// the sole tier when no durable backend is configured.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]model.RateLimitRecord
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]model.RateLimitRecord)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) CheckAndReset(_ context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := apply(b.load(id), bounds)
	b.records[id.Key()] = record
	return record, nil
}

func (b *MemoryBackend) Increment(_ context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := apply(b.load(id), bounds)
	record.DailyCount++
	record.HourlyCount++
	b.records[id.Key()] = record
	return record, nil
}

func (b *MemoryBackend) load(id model.Identifier) model.RateLimitRecord {
	record, ok := b.records[id.Key()]
	if !ok {
		record = model.RateLimitRecord{Identifier: id.Value, Kind: id.Kind}
	}
	return record
}

func (b *MemoryBackend) Prune(_ context.Context, before time.Time) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var removed int64
	for key, record := range b.records {
		if record.UpdatedAt.Before(before) {
			delete(b.records, key)
			removed++
		}
	}
	return removed, nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }

func (b *MemoryBackend) List(_ context.Context, limit int) ([]model.RateLimitRecord, error) {
	return b.Snapshot(limit), nil
}

// Snapshot returns up to limit records, busiest first.
func (b *MemoryBackend) Snapshot(limit int) []model.RateLimitRecord {
	b.mu.Lock()
	records := make([]model.RateLimitRecord, 0, len(b.records))
	for _, record := range b.records {
		records = append(records, record)
	}
	b.mu.Unlock()
	return busiest(records, limit)
}

func busiest(records []model.RateLimitRecord, limit int) []model.RateLimitRecord {
	sort.Slice(records, func(i, j int) bool {
		if records[i].DailyCount != records[j].DailyCount {
			return records[i].DailyCount > records[j].DailyCount
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
