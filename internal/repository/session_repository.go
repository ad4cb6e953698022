//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"persona/backend/internal/model"
)

// SessionRepository stores chat sessions and their transcripts.
type SessionRepository interface {
	Attach(ctx context.Context, sessionID string, userID int64) (model.ChatSession, error)
	Get(ctx context.Context, sessionID string) (*model.ChatSession, error)
	AppendExchange(ctx context.Context, sessionID string, userID int64, message, reply string) error
	ListMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Attach creates the session for userID or claims an ownerless one. An owned
// session keeps its owner; callers compare the returned UserID to detect that.
func (r *sessionRepository) Attach(ctx context.Context, sessionID string, userID int64) (model.ChatSession, error) {
	now := formatTime(time.Now())
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, message_count, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = COALESCE(chat_sessions.user_id, excluded.user_id),
			updated_at = CASE WHEN chat_sessions.user_id IS NULL THEN excluded.updated_at ELSE chat_sessions.updated_at END
		RETURNING id, user_id, message_count, created_at, updated_at
	`, sessionID, userID, now, now)
	return scanSession(row)
}

// Get returns nil when the session does not exist.
func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, message_count, created_at, updated_at FROM chat_sessions WHERE id = ?
	`, sessionID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// AppendExchange stores both transcript turns and bumps the session and user
// counters in one transaction.
func (r *sessionRepository) AppendExchange(ctx context.Context, sessionID string, userID int64, message, reply string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := appendExchange(ctx, tx, sessionID, userID, message, reply); err != nil {
		return err
	}
	return tx.Commit()
}

func appendExchange(ctx context.Context, q dbtx, sessionID string, userID int64, message, reply string) error {
	userAt := time.Now()
	replyAt := userAt.Add(time.Microsecond)

	if _, err := insertMessage(ctx, q, sessionID, model.RoleUser, message, userAt); err != nil {
		return err
	}
	if _, err := insertMessage(ctx, q, sessionID, model.RoleAssistant, reply, replyAt); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE chat_sessions SET message_count = message_count + 1, updated_at = ? WHERE id = ?
	`, formatTime(replyAt), sessionID)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err != nil {
		return err
	} else if rows == 0 {
		return sql.ErrNoRows
	}

	result, err = q.ExecContext(ctx, `
		UPDATE users SET message_count = message_count + 1, updated_at = ? WHERE id = ?
	`, formatTime(replyAt), userID)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err != nil {
		return err
	} else if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListMessages returns up to limit most recent turns, oldest first.
func (r *sessionRepository) ListMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT id, session_id, role, content, created_at FROM chat_messages
			WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *sessionRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func scanSession(row rowScanner) (model.ChatSession, error) {
	var s model.ChatSession
	var userID sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&s.ID, &userID, &s.MessageCount, &createdAt, &updatedAt); err != nil {
		return model.ChatSession{}, err
	}
	s.UserID = int64Ptr(userID)
	s.CreatedAt, _ = parseTime(createdAt)
	s.UpdatedAt, _ = parseTime(updatedAt)
	return s, nil
}
