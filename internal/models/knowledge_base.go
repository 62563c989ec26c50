package models

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeBase struct {
	ID             uuid.UUID `db:"id"`
	OwnerID        uuid.UUID `db:"owner_id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	EmbeddingModel string    `db:"embedding_model"`
	ChunkSize      int       `db:"chunk_size"`
	ChunkOverlap   int       `db:"chunk_overlap"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
