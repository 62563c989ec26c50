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

type QuestionService struct {
	questionRepo *repository.QuestionRepository
	permissions  *PermissionService
	logger       *zap.Logger
}

func NewQuestionService(questionRepo *repository.QuestionRepository, permissions *PermissionService, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		permissions:  permissions,
		logger:       logger,
	}
}

func (s *QuestionService) Create(ctx context.Context, userID uuid.UUID, role models.UserRole, assistantID uuid.UUID, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, assistantID, models.PermissionWrite); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now()
	q := &models.Question{
		ID:          uuid.New(),
		AssistantID: assistantID,
		Content:     req.Content,
		Answer:      req.Answer,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	resp := questionToResponse(q)
	return &resp, nil
}

func (s *QuestionService) ListByAssistant(ctx context.Context, userID uuid.UUID, role models.UserRole, assistantID uuid.UUID, limit, offset int) ([]dto.QuestionResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, assistantID, models.PermissionRead); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByAssistant(ctx, assistantID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = questionToResponse(q)
	}
	return responses, nil
}

func (s *QuestionService) Update(ctx context.Context, userID uuid.UUID, role models.UserRole, questionID uuid.UUID, req *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, q.AssistantID, models.PermissionWrite); err != nil {
		return nil, err
	}

	if req.Content != "" {
		q.Content = req.Content
	}
	if req.Answer != "" {
		q.Answer = req.Answer
	}
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}
	q.UpdatedAt = time.Now()

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}

	resp := questionToResponse(q)
	return &resp, nil
}

func (s *QuestionService) Delete(ctx context.Context, userID uuid.UUID, role models.UserRole, questionID uuid.UUID) error {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceAssistant, q.AssistantID, models.PermissionWrite); err != nil {
		return err
	}
	return s.questionRepo.Delete(ctx, questionID)
}

func questionToResponse(q *models.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:          q.ID.String(),
		AssistantID: q.AssistantID.String(),
		Content:     q.Content,
		Answer:      q.Answer,
		HitCount:    q.HitCount,
		Enabled:     q.Enabled,
		CreatedAt:   q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   q.UpdatedAt.Format(time.RFC3339),
	}
}
