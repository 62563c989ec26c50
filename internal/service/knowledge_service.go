package service

import (
	"context"
	"errors"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/repository"
	"policyhub/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 80
)

// resolveChunking fills unset or invalid chunk parameters from the
// configured ingestion defaults, then the package defaults.
func resolveChunking(size, overlap int, cfg *config.IngestConfig) (int, int) {
	if size <= 0 {
		size = defaultChunkSize
		if cfg != nil && cfg.ChunkSize > 0 {
			size = cfg.ChunkSize
		}
	}
	if overlap <= 0 || overlap >= size {
		overlap = defaultChunkOverlap
		if cfg != nil && cfg.ChunkOverlap >= 0 {
			overlap = cfg.ChunkOverlap
		}
		if overlap >= size {
			overlap = 0
		}
	}
	return size, overlap
}

type KnowledgeBaseService struct {
	kbRepo      *repository.KnowledgeBaseRepository
	permissions *PermissionService
	ingest      *config.IngestConfig
	logger      *zap.Logger
}

func NewKnowledgeBaseService(kbRepo *repository.KnowledgeBaseRepository, permissions *PermissionService, ingest *config.IngestConfig, logger *zap.Logger) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		kbRepo:      kbRepo,
		permissions: permissions,
		ingest:      ingest,
		logger:      logger,
	}
}

func (s *KnowledgeBaseService) Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateKnowledgeBaseRequest) (*dto.KnowledgeBaseResponse, error) {
	chunkSize, chunkOverlap := resolveChunking(req.ChunkSize, req.ChunkOverlap, s.ingest)

	now := time.Now()
	kb := &models.KnowledgeBase{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		EmbeddingModel: req.EmbeddingModel,
		ChunkSize:      chunkSize,
		ChunkOverlap:   chunkOverlap,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.kbRepo.Create(ctx, kb); err != nil {
		return nil, err
	}

	s.logger.Info("knowledge base created", zap.String("id", kb.ID.String()), zap.String("owner", ownerID.String()))
	resp := kbToResponse(kb)
	return &resp, nil
}

func (s *KnowledgeBaseService) Get(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) (*dto.KnowledgeBaseResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, id, models.PermissionRead); err != nil {
		return nil, err
	}

	kb, err := s.kbRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := kbToResponse(kb)
	return &resp, nil
}

func (s *KnowledgeBaseService) ListOwned(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]dto.KnowledgeBaseResponse, error) {
	kbs, err := s.kbRepo.ListByOwner(ctx, ownerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.KnowledgeBaseResponse, len(kbs))
	for i, kb := range kbs {
		responses[i] = kbToResponse(kb)
	}
	return responses, nil
}

func (s *KnowledgeBaseService) Update(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID, req *dto.UpdateKnowledgeBaseRequest) (*dto.KnowledgeBaseResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, id, models.PermissionWrite); err != nil {
		return nil, err
	}

	kb, err := s.kbRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		kb.Name = req.Name
	}
	if req.Description != "" {
		kb.Description = req.Description
	}
	if req.EmbeddingModel != "" {
		kb.EmbeddingModel = req.EmbeddingModel
	}
	if req.ChunkSize > 0 {
		kb.ChunkSize = req.ChunkSize
	}
	if req.ChunkOverlap > 0 && req.ChunkOverlap < kb.ChunkSize {
		kb.ChunkOverlap = req.ChunkOverlap
	}
	kb.UpdatedAt = time.Now()

	if err := s.kbRepo.Update(ctx, kb); err != nil {
		return nil, err
	}
	resp := kbToResponse(kb)
	return &resp, nil
}

func (s *KnowledgeBaseService) Delete(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) error {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, id, models.PermissionManage); err != nil {
		return err
	}
	return s.kbRepo.Delete(ctx, id)
}

func kbToResponse(kb *models.KnowledgeBase) dto.KnowledgeBaseResponse {
	return dto.KnowledgeBaseResponse{
		ID:             kb.ID.String(),
		OwnerID:        kb.OwnerID.String(),
		Name:           kb.Name,
		Description:    kb.Description,
		EmbeddingModel: kb.EmbeddingModel,
		ChunkSize:      kb.ChunkSize,
		ChunkOverlap:   kb.ChunkOverlap,
		CreatedAt:      kb.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      kb.UpdatedAt.Format(time.RFC3339),
	}
}
