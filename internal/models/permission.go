package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceAssistant     ResourceType = "assistant"
	ResourceKnowledgeBase ResourceType = "knowledge_base"
)

type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionManage Permission = "manage"
)

type ResourcePermission struct {
	ID           uuid.UUID    `db:"id"`
	UserID       uuid.UUID    `db:"user_id"`
	ResourceType ResourceType `db:"resource_type"`
	ResourceID   uuid.UUID    `db:"resource_id"`
	Permission   Permission   `db:"permission"`
	CreatedAt    time.Time    `db:"created_at"`
}
