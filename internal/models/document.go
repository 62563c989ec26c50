package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          uuid.UUID      `db:"id"`
	KBID        uuid.UUID      `db:"kb_id"`
	FileName    string         `db:"file_name"`
	FileSize    int64          `db:"file_size"`
	ContentType string         `db:"content_type"`
	FilePath    string         `db:"file_path"`
	Status      DocumentStatus `db:"status"`
	Error       string         `db:"error"`
	ChunkCount  int            `db:"chunk_count"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type DocumentChunk struct {
	ID         uuid.UUID `db:"id"`
	DocumentID uuid.UUID `db:"document_id"`
	KBID       uuid.UUID `db:"kb_id"`
	Seq        int       `db:"seq"`
	Content    string    `db:"content"`
	Embedding  []float32 `db:"embedding"`
	TokenCount int       `db:"token_count"`
	CreatedAt  time.Time `db:"created_at"`
}
