package models

import (
	"time"

	"github.com/google/uuid"
)

type AssistantStatus string

const (
	AssistantActive   AssistantStatus = "active"
	AssistantDisabled AssistantStatus = "disabled"
)

type Assistant struct {
	ID           uuid.UUID       `db:"id"`
	OwnerID      uuid.UUID       `db:"owner_id"`
	ProviderID   *uuid.UUID      `db:"provider_id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	SystemPrompt string          `db:"system_prompt"`
	Model        string          `db:"model"`
	Temperature  float32         `db:"temperature"`
	Status       AssistantStatus `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
