package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a curated Q&A pair attached to an assistant. Matching
// questions answer chat messages without an LLM round trip.
type Question struct {
	ID          uuid.UUID `db:"id"`
	AssistantID uuid.UUID `db:"assistant_id"`
	Content     string    `db:"content"`
	Answer      string    `db:"answer"`
	HitCount    int64     `db:"hit_count"`
	Enabled     bool      `db:"enabled"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
