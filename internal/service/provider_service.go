package service

import (
	"context"
	"errors"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProviderService struct {
	providerRepo *repository.ProviderRepository
	logger       *zap.Logger
}

func NewProviderService(providerRepo *repository.ProviderRepository, logger *zap.Logger) *ProviderService {
	return &ProviderService{providerRepo: providerRepo, logger: logger}
}

func (s *ProviderService) Create(ctx context.Context, req *dto.ProviderRequest) (*dto.ProviderResponse, error) {
	kind := models.ProviderKind(req.Kind)
	if kind != models.ProviderOpenAI && kind != models.ProviderOllama {
		return nil, ErrValidation
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now()
	p := &models.ModelProvider{
		ID:             uuid.New(),
		Name:           req.Name,
		Kind:           kind,
		BaseURL:        req.BaseURL,
		APIKey:         req.APIKey,
		Model:          req.Model,
		EmbeddingModel: req.EmbeddingModel,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.providerRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("model provider created", zap.String("id", p.ID.String()), zap.String("kind", req.Kind))
	resp := providerToResponse(p)
	return &resp, nil
}

func (s *ProviderService) Get(ctx context.Context, id uuid.UUID) (*dto.ProviderResponse, error) {
	p, err := s.providerRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := providerToResponse(p)
	return &resp, nil
}

func (s *ProviderService) List(ctx context.Context) ([]dto.ProviderResponse, error) {
	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProviderResponse, len(providers))
	for i, p := range providers {
		responses[i] = providerToResponse(p)
	}
	return responses, nil
}

func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, req *dto.ProviderRequest) (*dto.ProviderResponse, error) {
	p, err := s.providerRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Kind != "" {
		kind := models.ProviderKind(req.Kind)
		if kind != models.ProviderOpenAI && kind != models.ProviderOllama {
			return nil, ErrValidation
		}
		p.Kind = kind
	}
	if req.BaseURL != "" {
		p.BaseURL = req.BaseURL
	}
	if req.APIKey != "" {
		p.APIKey = req.APIKey
	}
	if req.Model != "" {
		p.Model = req.Model
	}
	if req.EmbeddingModel != "" {
		p.EmbeddingModel = req.EmbeddingModel
	}
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}
	p.UpdatedAt = time.Now()

	if err := s.providerRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := providerToResponse(p)
	return &resp, nil
}

func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.providerRepo.Delete(ctx, id)
}

func providerToResponse(p *models.ModelProvider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		Kind:           string(p.Kind),
		BaseURL:        p.BaseURL,
		Model:          p.Model,
		EmbeddingModel: p.EmbeddingModel,
		Enabled:        p.Enabled,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}
