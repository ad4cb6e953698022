package db

import (
	"database/sql"
	"fmt"
)

// Base schema - users and transcripts use Snowflake IDs (no AUTOINCREMENT).
// Counter timestamps are stored as second-precision RFC3339 UTC text so that
// lexicographic comparison inside SQL matches chronological order.
const baseSchema = `
CREATE TABLE IF NOT EXISTS rate_limits (
  identifier TEXT NOT NULL,
  kind TEXT NOT NULL,
  daily_count INTEGER NOT NULL DEFAULT 0,
  hourly_count INTEGER NOT NULL DEFAULT 0,
  daily_reset_at TEXT NOT NULL,
  hourly_reset_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (identifier, kind)
);

CREATE INDEX IF NOT EXISTS idx_rate_limits_updated_at ON rate_limits(updated_at);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  name TEXT,
  email TEXT,
  first_seen_addr TEXT NOT NULL DEFAULT '',
  last_seen_addr TEXT NOT NULL DEFAULT '',
  device_browser TEXT NOT NULL DEFAULT '',
  device_browser_version TEXT NOT NULL DEFAULT '',
  device_os TEXT NOT NULL DEFAULT '',
  device_country TEXT NOT NULL DEFAULT '',
  device_city TEXT NOT NULL DEFAULT '',
  message_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_sessions (
  id TEXT PRIMARY KEY,
  user_id INTEGER,
  message_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id);

CREATE TABLE IF NOT EXISTS chat_messages (
  id INTEGER PRIMARY KEY,
  session_id TEXT NOT NULL,
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY (session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id, id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: Add notes column to users for free-form details captured by the persona
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = 'notes'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check notes column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE users ADD COLUMN notes TEXT`); err != nil {
			return fmt.Errorf("add notes column: %w", err)
		}
	}

	// Migration 2: Create unknown_questions table for questions the persona could not answer
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS unknown_questions (
			id INTEGER PRIMARY KEY,
			user_id INTEGER,
			question TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		)
	`); err != nil {
		return fmt.Errorf("create unknown_questions table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_unknown_questions_created_at ON unknown_questions(created_at)`); err != nil {
		return fmt.Errorf("create idx_unknown_questions_created_at: %w", err)
	}

	// Migration 3: Users are looked up by last activity in the admin report
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_users_updated_at ON users(updated_at)`); err != nil {
		return fmt.Errorf("create idx_users_updated_at: %w", err)
	}

	return nil
}
