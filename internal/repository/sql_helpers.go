package repository

import (
	"context"
	"database/sql"
	"time"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// boundaryLayout is fixed-width, so stored values compare correctly as text.
const boundaryLayout = "2006-01-02T15:04:05Z"

func nullableInt64(value *int64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// formatBoundary truncates to the second and renders fixed-width UTC text.
func formatBoundary(value time.Time) string {
	return value.UTC().Truncate(time.Second).Format(boundaryLayout)
}

func parseBoundary(value string) (time.Time, error) {
	return time.Parse(boundaryLayout, value)
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
