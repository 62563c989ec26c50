package models

import (
	"time"

	"github.com/google/uuid"
)

type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderOllama ProviderKind = "ollama"
)

type ModelProvider struct {
	ID             uuid.UUID    `db:"id"`
	Name           string       `db:"name"`
	Kind           ProviderKind `db:"kind"`
	BaseURL        string       `db:"base_url"`
	APIKey         string       `db:"api_key"`
	Model          string       `db:"model"`
	EmbeddingModel string       `db:"embedding_model"`
	Enabled        bool         `db:"enabled"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}
