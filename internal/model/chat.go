package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession is one logical conversation.
type ChatSession struct {
	ID           string
	UserID       *int64
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChatMessage is one transcript turn.
type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}
