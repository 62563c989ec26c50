package service

import (
	"context"
	"errors"

	"policyhub/internal/llm"
	"policyhub/internal/models"
	"policyhub/internal/repository"
	"policyhub/internal/vectorstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const defaultTopK = 5

// RetrievalService answers "give me the most relevant chunks" queries.
// Vector search runs when a query embedding can be produced; otherwise it
// degrades to a text match over chunk contents.
type RetrievalService struct {
	store        vectorstore.VectorStore
	chunkRepo    *repository.ChunkRepository
	providerRepo *repository.ProviderRepository
	registry     *llm.Registry
	logger       *zap.Logger
}

func NewRetrievalService(
	store vectorstore.VectorStore,
	chunkRepo *repository.ChunkRepository,
	providerRepo *repository.ProviderRepository,
	registry *llm.Registry,
	logger *zap.Logger,
) *RetrievalService {
	return &RetrievalService{
		store:        store,
		chunkRepo:    chunkRepo,
		providerRepo: providerRepo,
		registry:     registry,
		logger:       logger,
	}
}

func (s *RetrievalService) Search(ctx context.Context, kbID uuid.UUID, query string, topK int) ([]*models.DocumentChunk, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		s.logger.Debug("query embedding unavailable, using text search", zap.Error(err))
	} else if len(embedding) > 0 {
		chunks, err := s.store.Query(ctx, kbID, embedding, topK)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
	}

	return s.chunkRepo.SearchText(ctx, kbID, query, topK)
}

func (s *RetrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	providerCfg, err := s.providerRepo.GetDefault(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New("no enabled model provider")
	}
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(ctx, providerCfg)
	if err != nil {
		return nil, err
	}

	embedder, ok := provider.(llm.Embedder)
	if !ok {
		return nil, errors.New("provider has no embeddings endpoint")
	}

	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return vectors[0], nil
}
