//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"persona/backend/internal/model"
)

// RateLimitRepository persists per-identifier window counters. Every method is
// a single SQL statement, so reset and increment are atomic per identifier.
type RateLimitRepository interface {
	CheckAndReset(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error)
	Increment(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error)
	List(ctx context.Context, limit int) ([]model.RateLimitRecord, error)
	DeleteInactive(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
}

type rateLimitRepository struct {
	db *sql.DB
}

// NewRateLimitRepository creates a new rate limit repository.
func NewRateLimitRepository(db *sql.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Each CASE reads the pre-update row, so the daily and hourly windows reset
// independently of each other.
const checkAndResetSQL = `
	INSERT INTO rate_limits (identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, created_at, updated_at)
	VALUES (?, ?, 0, 0, ?, ?, ?, ?)
	ON CONFLICT(identifier, kind) DO UPDATE SET
		daily_count = CASE WHEN rate_limits.daily_reset_at <= ? THEN 0 ELSE rate_limits.daily_count END,
		daily_reset_at = CASE WHEN rate_limits.daily_reset_at <= ? THEN excluded.daily_reset_at ELSE rate_limits.daily_reset_at END,
		hourly_count = CASE WHEN rate_limits.hourly_reset_at <= ? THEN 0 ELSE rate_limits.hourly_count END,
		hourly_reset_at = CASE WHEN rate_limits.hourly_reset_at <= ? THEN excluded.hourly_reset_at ELSE rate_limits.hourly_reset_at END,
		updated_at = excluded.updated_at
	RETURNING identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, updated_at
`

const incrementSQL = `
	INSERT INTO rate_limits (identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, created_at, updated_at)
	VALUES (?, ?, 1, 1, ?, ?, ?, ?)
	ON CONFLICT(identifier, kind) DO UPDATE SET
		daily_count = CASE WHEN rate_limits.daily_reset_at <= ? THEN 1 ELSE rate_limits.daily_count + 1 END,
		daily_reset_at = CASE WHEN rate_limits.daily_reset_at <= ? THEN excluded.daily_reset_at ELSE rate_limits.daily_reset_at END,
		hourly_count = CASE WHEN rate_limits.hourly_reset_at <= ? THEN 1 ELSE rate_limits.hourly_count + 1 END,
		hourly_reset_at = CASE WHEN rate_limits.hourly_reset_at <= ? THEN excluded.hourly_reset_at ELSE rate_limits.hourly_reset_at END,
		updated_at = excluded.updated_at
	RETURNING identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, updated_at
`

// CheckAndReset fetches or lazily creates the record and applies due resets.
func (r *rateLimitRepository) CheckAndReset(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return r.upsert(ctx, checkAndResetSQL, id, bounds)
}

// Increment applies due resets and then adds one to both windows.
func (r *rateLimitRepository) Increment(ctx context.Context, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	return r.upsert(ctx, incrementSQL, id, bounds)
}

func (r *rateLimitRepository) upsert(ctx context.Context, query string, id model.Identifier, bounds model.WindowBounds) (model.RateLimitRecord, error) {
	now := formatBoundary(bounds.Now)
	daily := formatBoundary(bounds.NextDailyAt)
	hourly := formatBoundary(bounds.NextHourlyAt)

	row := r.db.QueryRowContext(ctx, query,
		id.Value, string(id.Kind), daily, hourly, now, now,
		now, now, now, now,
	)
	record, err := scanRateLimit(row)
	if err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("upsert rate limit %s: %w", id.Key(), err)
	}
	return record, nil
}

// List returns the busiest records first.
func (r *rateLimitRepository) List(ctx context.Context, limit int) ([]model.RateLimitRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, updated_at
		FROM rate_limits ORDER BY daily_count DESC, updated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RateLimitRecord
	for rows.Next() {
		record, err := scanRateLimit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteInactive removes records not touched since before.
func (r *rateLimitRepository) DeleteInactive(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE updated_at < ?`, formatBoundary(before))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *rateLimitRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRateLimit(row rowScanner) (model.RateLimitRecord, error) {
	var record model.RateLimitRecord
	var kind, dailyResetAt, hourlyResetAt, updatedAt string
	if err := row.Scan(&record.Identifier, &kind, &record.DailyCount, &record.HourlyCount, &dailyResetAt, &hourlyResetAt, &updatedAt); err != nil {
		return model.RateLimitRecord{}, err
	}
	record.Kind = model.IdentifierKind(kind)

	var err error
	if record.DailyResetAt, err = parseBoundary(dailyResetAt); err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("parse daily_reset_at: %w", err)
	}
	if record.HourlyResetAt, err = parseBoundary(hourlyResetAt); err != nil {
		return model.RateLimitRecord{}, fmt.Errorf("parse hourly_reset_at: %w", err)
	}
	record.UpdatedAt, _ = parseBoundary(updatedAt)
	return record, nil
}
