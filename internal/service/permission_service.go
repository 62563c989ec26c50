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

var permissionRank = map[models.Permission]int{
	models.PermissionRead:   1,
	models.PermissionWrite:  2,
	models.PermissionManage: 3,
}

type PermissionService struct {
	permRepo      *repository.PermissionRepository
	assistantRepo *repository.AssistantRepository
	kbRepo        *repository.KnowledgeBaseRepository
	logger        *zap.Logger
}

func NewPermissionService(
	permRepo *repository.PermissionRepository,
	assistantRepo *repository.AssistantRepository,
	kbRepo *repository.KnowledgeBaseRepository,
	logger *zap.Logger,
) *PermissionService {
	return &PermissionService{
		permRepo:      permRepo,
		assistantRepo: assistantRepo,
		kbRepo:        kbRepo,
		logger:        logger,
	}
}

// Authorize checks that the user may act on the resource at the needed
// level. Admins and owners pass; everyone else needs a granted permission
// of at least the required rank.
func (s *PermissionService) Authorize(ctx context.Context, userID uuid.UUID, role models.UserRole, resourceType models.ResourceType, resourceID uuid.UUID, need models.Permission) error {
	if role == models.RoleAdmin {
		return nil
	}

	ownerID, err := s.resourceOwner(ctx, resourceType, resourceID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return nil
	}

	granted, err := s.permRepo.Get(ctx, userID, resourceType, resourceID)
	if err != nil {
		return err
	}
	if granted == nil || permissionRank[granted.Permission] < permissionRank[need] {
		return ErrForbidden
	}
	return nil
}

func (s *PermissionService) resourceOwner(ctx context.Context, resourceType models.ResourceType, resourceID uuid.UUID) (uuid.UUID, error) {
	switch resourceType {
	case models.ResourceAssistant:
		a, err := s.assistantRepo.GetByID(ctx, resourceID)
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		if err != nil {
			return uuid.Nil, err
		}
		return a.OwnerID, nil
	case models.ResourceKnowledgeBase:
		kb, err := s.kbRepo.GetByID(ctx, resourceID)
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		if err != nil {
			return uuid.Nil, err
		}
		return kb.OwnerID, nil
	}
	return uuid.Nil, ErrValidation
}

func (s *PermissionService) Grant(ctx context.Context, req *dto.GrantPermissionRequest) (*dto.PermissionResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ErrValidation
	}
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		return nil, ErrValidation
	}

	resourceType := models.ResourceType(req.ResourceType)
	switch resourceType {
	case models.ResourceAssistant, models.ResourceKnowledgeBase:
	default:
		return nil, ErrValidation
	}
	if _, ok := permissionRank[models.Permission(req.Permission)]; !ok {
		return nil, ErrValidation
	}

	if _, err := s.resourceOwner(ctx, resourceType, resourceID); err != nil {
		return nil, err
	}

	perm := &models.ResourcePermission{
		ID:           uuid.New(),
		UserID:       userID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Permission:   models.Permission(req.Permission),
		CreatedAt:    time.Now(),
	}

	if err := s.permRepo.Grant(ctx, perm); err != nil {
		return nil, err
	}

	s.logger.Info("permission granted",
		zap.String("user_id", req.UserID),
		zap.String("resource_type", req.ResourceType),
		zap.String("resource_id", req.ResourceID),
		zap.String("permission", req.Permission))

	resp := permissionToResponse(perm)
	return &resp, nil
}

func (s *PermissionService) Revoke(ctx context.Context, userID uuid.UUID, resourceType models.ResourceType, resourceID uuid.UUID) error {
	return s.permRepo.Revoke(ctx, userID, resourceType, resourceID)
}

func (s *PermissionService) ListByResource(ctx context.Context, resourceType models.ResourceType, resourceID uuid.UUID) ([]dto.PermissionResponse, error) {
	perms, err := s.permRepo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PermissionResponse, len(perms))
	for i, p := range perms {
		responses[i] = permissionToResponse(p)
	}
	return responses, nil
}

func permissionToResponse(p *models.ResourcePermission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:           p.ID.String(),
		UserID:       p.UserID.String(),
		ResourceType: string(p.ResourceType),
		ResourceID:   p.ResourceID.String(),
		Permission:   string(p.Permission),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
