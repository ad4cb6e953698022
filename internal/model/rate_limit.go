package model

import "time"

// IdentifierKind names one independent abuse-tracking signal.
type IdentifierKind string

const (
	KindNetwork     IdentifierKind = "network"
	KindToken       IdentifierKind = "token"
	KindFingerprint IdentifierKind = "fingerprint"
)

// Valid reports whether k is one of the known kinds.
func (k IdentifierKind) Valid() bool {
	switch k {
	case KindNetwork, KindToken, KindFingerprint:
		return true
	}
	return false
}

// Identifier is a (kind, value) rate-limit key.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// Key returns the storage key shared by every counter backend.
func (i Identifier) Key() string {
	return string(i.Kind) + ":" + i.Value
}

// RateLimitRecord holds the daily and hourly counters of one identifier.
type RateLimitRecord struct {
	Identifier    string
	Kind          IdentifierKind
	DailyCount    int
	HourlyCount   int
	DailyResetAt  time.Time
	HourlyResetAt time.Time
	UpdatedAt     time.Time
}

// WindowBounds carries the evaluation instant and the window boundaries that a
// reset at that instant would move to.
type WindowBounds struct {
	Now          time.Time
	NextDailyAt  time.Time
	NextHourlyAt time.Time
}
