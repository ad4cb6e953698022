//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package counter

import (
	"context"
	"time"

	"persona/backend/internal/model"
	"persona/backend/internal/repository"
)

// Backend is one counter tier. Each operation applies due resets and, for
// Increment, adds one to both windows as a single atomic step per identifier.
type Backend interface {
	Name() string
	CheckAndReset(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error)
	Increment(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	// List returns up to limit records, busiest first.
	List(ctx context.Context, limit int) ([]model.RateLimitRecord, error)
	Ping(ctx context.Context) error
}

type sqlBackend struct {
	repo repository.RateLimitRepository
}

// NewSQLBackend stores counters through the rate limit repository.
func NewSQLBackend(repo repository.RateLimitRepository) Backend {
	return &sqlBackend{repo: repo}
}

func (b *sqlBackend) Name() string { return "sqlite" }

func (b *sqlBackend) CheckAndReset(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return b.repo.CheckAndReset(ctx, id, bounds)
}

func (b *sqlBackend) Increment(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return b.repo.Increment(ctx, id, bounds)
}

func (b *sqlBackend) Prune(ctx context.Context, before time.Time) (int64, error) {
	return b.repo.DeleteInactive(ctx, before)
}

func (b *sqlBackend) List(ctx context.Context, limit int) ([]model.RateLimitRecord, error) {
	return b.repo.List(ctx, limit)
}

func (b *sqlBackend) Ping(ctx context.Context) error {
	return b.repo.Ping(ctx)
}
