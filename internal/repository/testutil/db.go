package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"persona/backend/internal/db"
	"persona/backend/internal/model"
	"persona/backend/pkg/snowflake"

	_ "modernc.org/sqlite"
)

// snowflakeOnce initializes snowflake once across parallel tests.
var snowflakeOnce sync.Once

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	snowflakeOnce.Do(func() {
		if err := snowflake.Init(0); err != nil {
			// t.Fatalf is not usable inside sync.Once
			panic("failed to initialize snowflake: " + err.Error())
		}
	})

	// Shared cache keeps the memory database alive across pool connections;
	// the unique name isolates each test.
	dbName := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name(), time.Now().UnixNano())
	database, err := sql.Open("sqlite", dbName)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.SetMaxOpenConns(1)

	if err := db.Migrate(database); err != nil {
		database.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// SeedUser inserts a profile for token and returns its ID.
func SeedUser(t *testing.T, db *sql.DB, token string) int64 {
	t.Helper()

	id := snowflake.NextID()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := db.ExecContext(
		context.Background(),
		`INSERT INTO users (id, token, first_seen_addr, last_seen_addr, created_at, updated_at) VALUES (?, ?, '', '', ?, ?)`,
		id, token, now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return id
}

// SeedRateLimit inserts a counter record with explicit counts and boundaries.
func SeedRateLimit(t *testing.T, db *sql.DB, record model.RateLimitRecord) {
	t.Helper()

	const layout = "2006-01-02T15:04:05Z"
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	updated := updatedAt.UTC().Format(layout)

	_, err := db.ExecContext(
		context.Background(),
		`INSERT INTO rate_limits (identifier, kind, daily_count, hourly_count, daily_reset_at, hourly_reset_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Identifier, string(record.Kind), record.DailyCount, record.HourlyCount,
		record.DailyResetAt.UTC().Format(layout), record.HourlyResetAt.UTC().Format(layout), updated, updated,
	)
	if err != nil {
		t.Fatalf("failed to seed rate limit: %v", err)
	}
}
