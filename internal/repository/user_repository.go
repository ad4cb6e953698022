//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"time"

	"persona/backend/internal/model"
	"persona/backend/pkg/snowflake"
)

// UserRepository stores user profiles keyed by client token.
type UserRepository interface {
	Upsert(ctx context.Context, token, addr string, device model.DeviceInfo) (model.UserProfile, error)
	GetByToken(ctx context.Context, token string) (*model.UserProfile, error)
	GetByID(ctx context.Context, id int64) (*model.UserProfile, error)
	UpdateDetails(ctx context.Context, id int64, name, email, notes *string) (bool, error)
	List(ctx context.Context, limit int) ([]model.UserProfile, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, token, name, email, notes, first_seen_addr, last_seen_addr,
	device_browser, device_browser_version, device_os, device_country, device_city,
	message_count, created_at, updated_at`

// Upsert creates the profile for token or refreshes last-seen data. The token
// column is unique, so concurrent first contacts converge on one row and the
// last writer's address wins. Empty device fields never erase known ones.
func (r *userRepository) Upsert(ctx context.Context, token, addr string, device model.DeviceInfo) (model.UserProfile, error) {
	now := formatTime(time.Now())
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, token, first_seen_addr, last_seen_addr,
			device_browser, device_browser_version, device_os, device_country, device_city,
			message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			last_seen_addr = CASE WHEN excluded.last_seen_addr != '' THEN excluded.last_seen_addr ELSE users.last_seen_addr END,
			device_browser = CASE WHEN excluded.device_browser != '' THEN excluded.device_browser ELSE users.device_browser END,
			device_browser_version = CASE WHEN excluded.device_browser_version != '' THEN excluded.device_browser_version ELSE users.device_browser_version END,
			device_os = CASE WHEN excluded.device_os != '' THEN excluded.device_os ELSE users.device_os END,
			device_country = CASE WHEN excluded.device_country != '' THEN excluded.device_country ELSE users.device_country END,
			device_city = CASE WHEN excluded.device_city != '' THEN excluded.device_city ELSE users.device_city END,
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		snowflake.NextID(), token, addr, addr,
		device.Browser, device.BrowserVersion, device.OS, device.Country, device.City,
		now, now,
	)
	return scanUser(row)
}

// GetByToken returns nil when no profile exists.
func (r *userRepository) GetByToken(ctx context.Context, token string) (*model.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE token = ?`, token)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID returns nil when no profile exists.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateDetails sets each non-nil field. It reports false when every supplied
// value already matched, without touching updated_at.
func (r *userRepository) UpdateDetails(ctx context.Context, id int64, name, email, notes *string) (bool, error) {
	if name == nil && email == nil && notes == nil {
		return false, nil
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			name = COALESCE(?, name),
			email = COALESCE(?, email),
			notes = COALESCE(?, notes),
			updated_at = ?
		WHERE id = ? AND (
			(? IS NOT NULL AND name IS NOT ?) OR
			(? IS NOT NULL AND email IS NOT ?) OR
			(? IS NOT NULL AND notes IS NOT ?)
		)
	`,
		nullableString(name), nullableString(email), nullableString(notes), formatTime(time.Now()),
		id,
		nullableString(name), nullableString(name),
		nullableString(email), nullableString(email),
		nullableString(notes), nullableString(notes),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// List returns the most recently active profiles first.
func (r *userRepository) List(ctx context.Context, limit int) ([]model.UserProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.UserProfile
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (model.UserProfile, error) {
	var u model.UserProfile
	var name, email, notes sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(
		&u.ID, &u.Token, &name, &email, &notes, &u.FirstSeenAddr, &u.LastSeenAddr,
		&u.Device.Browser, &u.Device.BrowserVersion, &u.Device.OS, &u.Device.Country, &u.Device.City,
		&u.MessageCount, &createdAt, &updatedAt,
	); err != nil {
		return model.UserProfile{}, err
	}
	u.Name = stringPtr(name)
	u.Email = stringPtr(email)
	u.Notes = stringPtr(notes)
	u.CreatedAt, _ = parseTime(createdAt)
	u.UpdatedAt, _ = parseTime(updatedAt)
	return u, nil
}
