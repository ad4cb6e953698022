// Package counter keeps the daily and hourly request counters behind every
// rate-limit identifier.
package counter

import (
	"time"

	"persona/backend/internal/model"
)

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// NextDaily returns the first UTC midnight strictly after now.
func NextDaily(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

// NextHourly returns the first top of the hour strictly after now.
func NextHourly(now time.Time) time.Time {
	return now.UTC().Truncate(time.Hour).Add(time.Hour)
}

// Bounds evaluates both windows at now. Sub-second precision is dropped so
// every backend compares the same instants.
func Bounds(now time.Time) model.WindowBounds {
	now = now.UTC().Truncate(time.Second)
	return model.WindowBounds{
		Now:          now,
		NextDailyAt:  NextDaily(now),
		NextHourlyAt: NextHourly(now),
	}
}

// apply resets any due window of record and reports the result. A zero
// record is treated as new.
func apply(record model.RateLimitRecord, bounds model.WindowBounds) model.RateLimitRecord {
	if record.DailyResetAt.IsZero() || !bounds.Now.Before(record.DailyResetAt) {
		record.DailyCount = 0
		record.DailyResetAt = bounds.NextDailyAt
	}
	if record.HourlyResetAt.IsZero() || !bounds.Now.Before(record.HourlyResetAt) {
		record.HourlyCount = 0
		record.HourlyResetAt = bounds.NextHourlyAt
	}
	record.UpdatedAt = bounds.Now
	return record
}
