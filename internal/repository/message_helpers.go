package repository

import (
	"context"
	"time"

	"persona/backend/internal/model"
	"persona/backend/pkg/snowflake"
)

func insertMessage(ctx context.Context, q dbtx, sessionID, role, content string, at time.Time) (model.ChatMessage, error) {
	msg := model.ChatMessage{
		ID:        snowflake.NextID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: at.UTC(),
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, msg.Role, msg.Content, formatTime(at))
	if err != nil {
		return model.ChatMessage{}, err
	}
	return msg, nil
}
