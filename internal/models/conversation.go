package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleMessageUser      MessageRole = "user"
	RoleMessageAssistant MessageRole = "assistant"
	RoleMessageSystem    MessageRole = "system"
)

type Conversation struct {
	ID             uuid.UUID `db:"id"`
	ConversationID string    `db:"conversation_id"` // public ULID handle
	UserID         uuid.UUID `db:"user_id"`
	AssistantID    uuid.UUID `db:"assistant_id"`
	Title          string    `db:"title"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type Message struct {
	ID             int64       `db:"id"`
	ConversationID uuid.UUID   `db:"conversation_id"`
	Role           MessageRole `db:"role"`
	Content        string      `db:"content"`
	TokenCount     int         `db:"token_count"`
	CreatedAt      time.Time   `db:"created_at"`
}
