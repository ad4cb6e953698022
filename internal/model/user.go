package model

import "time"

// DeviceInfo is the coarse device and locale description of a caller.
type DeviceInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	Country        string
	City           string
}

// Empty reports whether no field is known.
func (d DeviceInfo) Empty() bool {
	return d.Browser == "" && d.BrowserVersion == "" && d.OS == "" && d.Country == "" && d.City == ""
}

// UserProfile is the durable identity behind a client token.
type UserProfile struct {
	ID            int64
	Token         string
	Name          *string
	Email         *string
	Notes         *string
	FirstSeenAddr string
	LastSeenAddr  string
	Device        DeviceInfo
	MessageCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u UserProfile) Named() bool {
	return u.Name != nil && *u.Name != ""
}

func (u UserProfile) Emailed() bool {
	return u.Email != nil && *u.Email != ""
}

// UnknownQuestion is a question the persona could not answer.
type UnknownQuestion struct {
	ID        int64
	UserID    *int64
	Question  string
	CreatedAt time.Time
}
