package service

import (
	"context"
	"errors"

	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UserService covers the admin-side user management surface.
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]dto.UserResponse, error) {
	users, err := s.userRepo.List(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, len(users))
	for i, user := range users {
		responses[i] = userToResponse(user)
	}
	return responses, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*dto.UserResponse, error) {
	userRole := models.UserRole(role)
	if userRole != models.RoleUser && userRole != models.RoleAdmin {
		return nil, ErrValidation
	}

	if err := s.userRepo.UpdateRole(ctx, id, userRole); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role updated", zap.String("user_id", id.String()), zap.String("role", role))
	resp := userToResponse(user)
	return &resp, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
