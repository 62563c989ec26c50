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

type AssistantService struct {
	assistantRepo *repository.AssistantRepository
	kbRepo        *repository.KnowledgeBaseRepository
	permissions   *PermissionService
	logger        *zap.Logger
}

func NewAssistantService(
	assistantRepo *repository.AssistantRepository,
	kbRepo *repository.KnowledgeBaseRepository,
	permissions *PermissionService,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		assistantRepo: assistantRepo,
		kbRepo:        kbRepo,
		permissions:   permissions,
		logger:        logger,
	}
}

func (s *AssistantService) Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateAssistantRequest) (*dto.AssistantResponse, error) {
	providerID, err := parseOptionalUUID(req.ProviderID)
	if err != nil {
		return nil, ErrValidation
	}

	now := time.Now()
	a := &models.Assistant{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		ProviderID:   providerID,
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Temperature:  req.Temperature,
		Status:       models.AssistantActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.assistantRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("assistant created", zap.String("id", a.ID.String()), zap.String("owner", ownerID.String()))
	return s.toResponse(ctx, a)
}

func (s *AssistantService) Get(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) (*dto.AssistantResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, id, models.PermissionRead); err != nil {
		return nil, err
	}

	a, err := s.assistantRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, a)
}

// ListVisible returns assistants the user owns plus those granted through
// resource permissions.
func (s *AssistantService) ListVisible(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.AssistantResponse, error) {
	assistants, err := s.assistantRepo.ListVisible(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.toResponses(assistants), nil
}

func (s *AssistantService) ListOwned(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*dto.AssistantResponse, error) {
	assistants, err := s.assistantRepo.ListByOwner(ctx, ownerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.toResponses(assistants), nil
}

func (s *AssistantService) Update(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID, req *dto.UpdateAssistantRequest) (*dto.AssistantResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, id, models.PermissionWrite); err != nil {
		return nil, err
	}

	a, err := s.assistantRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		a.Name = req.Name
	}
	if req.Description != "" {
		a.Description = req.Description
	}
	if req.SystemPrompt != "" {
		a.SystemPrompt = req.SystemPrompt
	}
	if req.Model != "" {
		a.Model = req.Model
	}
	if req.Temperature != 0 {
		a.Temperature = req.Temperature
	}
	if req.Status != "" {
		status := models.AssistantStatus(req.Status)
		if status != models.AssistantActive && status != models.AssistantDisabled {
			return nil, ErrValidation
		}
		a.Status = status
	}
	if req.ProviderID != "" {
		providerID, err := parseOptionalUUID(req.ProviderID)
		if err != nil {
			return nil, ErrValidation
		}
		a.ProviderID = providerID
	}
	a.UpdatedAt = time.Now()

	if err := s.assistantRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, a)
}

func (s *AssistantService) Delete(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) error {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, id, models.PermissionManage); err != nil {
		return err
	}
	return s.assistantRepo.Delete(ctx, id)
}

// LinkKnowledgeBase attaches a knowledge base to an assistant. The caller
// needs write access to both resources.
func (s *AssistantService) LinkKnowledgeBase(ctx context.Context, userID uuid.UUID, role models.UserRole, assistantID, kbID uuid.UUID) error {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, assistantID, models.PermissionWrite); err != nil {
		return err
	}
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, kbID, models.PermissionRead); err != nil {
		return err
	}
	return s.assistantRepo.LinkKnowledgeBase(ctx, assistantID, kbID)
}

func (s *AssistantService) UnlinkKnowledgeBase(ctx context.Context, userID uuid.UUID, role models.UserRole, assistantID, kbID uuid.UUID) error {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, assistantID, models.PermissionWrite); err != nil {
		return err
	}
	return s.assistantRepo.UnlinkKnowledgeBase(ctx, assistantID, kbID)
}

func (s *AssistantService) toResponse(ctx context.Context, a *models.Assistant) (*dto.AssistantResponse, error) {
	resp := assistantToResponse(a)

	kbIDs, err := s.assistantRepo.LinkedKnowledgeBaseIDs(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range kbIDs {
		resp.KnowledgeBaseIDs = append(resp.KnowledgeBaseIDs, id.String())
	}
	return &resp, nil
}

func (s *AssistantService) toResponses(assistants []*models.Assistant) []*dto.AssistantResponse {
	responses := make([]*dto.AssistantResponse, len(assistants))
	for i, a := range assistants {
		resp := assistantToResponse(a)
		responses[i] = &resp
	}
	return responses
}

func assistantToResponse(a *models.Assistant) dto.AssistantResponse {
	resp := dto.AssistantResponse{
		ID:           a.ID.String(),
		OwnerID:      a.OwnerID.String(),
		Name:         a.Name,
		Description:  a.Description,
		SystemPrompt: a.SystemPrompt,
		Model:        a.Model,
		Temperature:  a.Temperature,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
	if a.ProviderID != nil {
		resp.ProviderID = a.ProviderID.String()
	}
	return resp
}
