package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"policyhub/internal/models"
	"policyhub/internal/repository"
)

// VectorStore persists and queries document chunk embeddings.
type VectorStore interface {
	Backend() string
	Upsert(ctx context.Context, chunks []*models.DocumentChunk) error
	Query(ctx context.Context, kbID uuid.UUID, embedding []float32, topK int) ([]*models.DocumentChunk, error)
}

// New builds the store for the configured backend. The milvus and
// elasticsearch templates validate but have no client wired in.
func New(cfg *Config, chunks *repository.ChunkRepository) (VectorStore, error) {
	switch cfg.Backend {
	case BackendPgvector:
		return &pgvectorStore{chunks: chunks}, nil
	case BackendMilvus, BackendElasticsearch:
		return nil, fmt.Errorf("vector store backend %q: configuration accepted but no client is available", cfg.Backend)
	}
	return nil, fmt.Errorf("vector store backend %q: unknown", cfg.Backend)
}

// pgvectorStore keeps embeddings in the document_chunks table next to the
// rest of the relational data.
type pgvectorStore struct {
	chunks *repository.ChunkRepository
}

func (s *pgvectorStore) Backend() string { return BackendPgvector }

func (s *pgvectorStore) Upsert(ctx context.Context, chunks []*models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.chunks.InsertBatch(ctx, chunks)
}

func (s *pgvectorStore) Query(ctx context.Context, kbID uuid.UUID, embedding []float32, topK int) ([]*models.DocumentChunk, error) {
	return s.chunks.SearchSimilar(ctx, kbID, embedding, topK)
}
