package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/llm"
	"policyhub/internal/models"
	"policyhub/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Store interfaces are declared on the consumer side so the chat flow can
// be exercised with fakes.

type conversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByPublicID(ctx context.Context, userID uuid.UUID, conversationID string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Conversation, error)
	Touch(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	InsertMessage(ctx context.Context, msg *models.Message) error
	ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int, beforeID int64) ([]*models.Message, error)
}

type questionStore interface {
	FindMatch(ctx context.Context, assistantID uuid.UUID, content string) (*models.Question, error)
	IncrementHitCount(ctx context.Context, id uuid.UUID) error
}

type assistantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assistant, error)
	LinkedKnowledgeBaseIDs(ctx context.Context, assistantID uuid.UUID) ([]uuid.UUID, error)
}

type providerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ModelProvider, error)
	GetDefault(ctx context.Context) (*models.ModelProvider, error)
}

type retriever interface {
	Search(ctx context.Context, kbID uuid.UUID, query string, topK int) ([]*models.DocumentChunk, error)
}

type ChatService struct {
	convRepo      conversationStore
	questionRepo  questionStore
	assistantRepo assistantStore
	providerRepo  providerStore
	retrieval     retriever
	registry      *llm.Registry
	cfg           *config.ChatConfig
	logger        *zap.Logger
}

func NewChatService(
	convRepo conversationStore,
	questionRepo questionStore,
	assistantRepo assistantStore,
	providerRepo providerStore,
	retrieval retriever,
	registry *llm.Registry,
	cfg *config.ChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		convRepo:      convRepo,
		questionRepo:  questionRepo,
		assistantRepo: assistantRepo,
		providerRepo:  providerRepo,
		retrieval:     retrieval,
		registry:      registry,
		cfg:           cfg,
		logger:        logger,
	}
}

func (s *ChatService) CreateConversation(ctx context.Context, userID uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	assistantID, err := uuid.Parse(req.AssistantID)
	if err != nil {
		return nil, ErrValidation
	}

	assistant, err := s.assistantRepo.GetByID(ctx, assistantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if assistant.Status != models.AssistantActive {
		return nil, fmt.Errorf("%w: assistant is disabled", ErrValidation)
	}

	title := req.Title
	if title == "" {
		title = "新对话"
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:             uuid.New(),
		ConversationID: ulid.Make().String(),
		UserID:         userID,
		AssistantID:    assistantID,
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}

	resp := conversationToResponse(conv)
	return &resp, nil
}

func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ConversationResponse, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationResponse, len(convs))
	for i, conv := range convs {
		responses[i] = conversationToResponse(conv)
	}
	return responses, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID uuid.UUID, conversationID string) error {
	conv, err := s.resolve(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	return s.convRepo.Delete(ctx, conv.ID)
}

// ListMessages returns a page of messages, newest first. beforeID pages
// backwards through history.
func (s *ChatService) ListMessages(ctx context.Context, userID uuid.UUID, conversationID string, limit int, beforeID int64) ([]dto.MessageResponse, error) {
	conv, err := s.resolve(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.convRepo.ListRecentMessages(ctx, conv.ID, normalizeLimit(limit), beforeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = messageToResponse(msg)
	}
	return responses, nil
}

// SendMessage persists the user message and produces the assistant reply.
// An enabled curated question matching the content answers immediately;
// otherwise the provider is called with the system prompt, retrieved
// knowledge base context and a bounded window of recent messages.
func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, conversationID, content string) (*dto.ChatResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation
	}

	conv, err := s.resolve(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	assistant, err := s.assistantRepo.GetByID(ctx, conv.AssistantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if assistant.Status != models.AssistantActive {
		return nil, fmt.Errorf("%w: assistant is disabled", ErrValidation)
	}

	userMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleMessageUser,
		Content:        sanitizeUTF8(content),
		TokenCount:     approxTokenCount(content),
		CreatedAt:      time.Now(),
	}
	if err := s.convRepo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	if q, err := s.questionRepo.FindMatch(ctx, assistant.ID, content); err == nil && q != nil {
		if err := s.questionRepo.IncrementHitCount(ctx, q.ID); err != nil {
			s.logger.Warn("hit count update failed", zap.Error(err))
		}
		reply, err := s.persistReply(ctx, conv, q.Answer)
		if err != nil {
			return nil, err
		}
		return &dto.ChatResponse{Reply: *reply, FromCache: true}, nil
	}

	prompt, err := s.buildPrompt(ctx, conv, assistant, content)
	if err != nil {
		return nil, err
	}

	provider, err := s.resolveProvider(ctx, assistant)
	if err != nil {
		return nil, err
	}

	answer, err := provider.Chat(ctx, prompt)
	if err != nil {
		s.logger.Error("provider call failed",
			zap.String("conversation_id", conv.ConversationID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	reply, err := s.persistReply(ctx, conv, answer)
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Reply: *reply}, nil
}

func (s *ChatService) resolve(ctx context.Context, userID uuid.UUID, conversationID string) (*models.Conversation, error) {
	conv, err := s.convRepo.GetByPublicID(ctx, userID, conversationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// buildPrompt assembles system prompt + KB context + the recent message
// window (which already includes the just-persisted user message).
func (s *ChatService) buildPrompt(ctx context.Context, conv *models.Conversation, assistant *models.Assistant, content string) ([]llm.Message, error) {
	var prompt []llm.Message

	system := assistant.SystemPrompt
	if kbContext := s.retrieveContext(ctx, assistant, content); kbContext != "" {
		if system != "" {
			system += "\n\n"
		}
		system += "参考资料:\n" + kbContext
	}
	if system != "" {
		prompt = append(prompt, llm.Message{Role: string(models.RoleMessageSystem), Content: system})
	}

	window := s.cfg.ContextWindow
	history, err := s.convRepo.ListRecentMessages(ctx, conv.ID, window, 0)
	if err != nil {
		return nil, err
	}

	// Newest-first from storage; the provider wants chronological order.
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		prompt = append(prompt, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return prompt, nil
}

func (s *ChatService) retrieveContext(ctx context.Context, assistant *models.Assistant, query string) string {
	kbIDs, err := s.assistantRepo.LinkedKnowledgeBaseIDs(ctx, assistant.ID)
	if err != nil {
		s.logger.Warn("linked knowledge base lookup failed", zap.Error(err))
		return ""
	}

	var parts []string
	for _, kbID := range kbIDs {
		chunks, err := s.retrieval.Search(ctx, kbID, query, s.cfg.TopK)
		if err != nil {
			s.logger.Warn("knowledge base retrieval failed",
				zap.String("kb_id", kbID.String()),
				zap.Error(err))
			continue
		}
		for _, chunk := range chunks {
			parts = append(parts, chunk.Content)
		}
	}
	return strings.Join(parts, "\n---\n")
}

func (s *ChatService) resolveProvider(ctx context.Context, assistant *models.Assistant) (llm.Provider, error) {
	var (
		cfg *models.ModelProvider
		err error
	)
	if assistant.ProviderID != nil {
		cfg, err = s.providerRepo.GetByID(ctx, *assistant.ProviderID)
	} else {
		cfg, err = s.providerRepo.GetDefault(ctx)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no model provider configured", ErrUpstream)
	}
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: model provider is disabled", ErrUpstream)
	}

	if assistant.Model != "" {
		cfg.Model = assistant.Model
	}

	provider, err := s.registry.Get(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return provider, nil
}

func (s *ChatService) persistReply(ctx context.Context, conv *models.Conversation, answer string) (*dto.MessageResponse, error) {
	msg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleMessageAssistant,
		Content:        sanitizeUTF8(answer),
		TokenCount:     approxTokenCount(answer),
		CreatedAt:      time.Now(),
	}
	if err := s.convRepo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.convRepo.Touch(ctx, conv.ID); err != nil {
		s.logger.Warn("conversation touch failed", zap.Error(err))
	}

	resp := messageToResponse(msg)
	return &resp, nil
}

func conversationToResponse(conv *models.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		ConversationID: conv.ConversationID,
		AssistantID:    conv.AssistantID.String(),
		Title:          conv.Title,
		CreatedAt:      conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      conv.UpdatedAt.Format(time.RFC3339),
	}
}

func messageToResponse(msg *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		Role:       string(msg.Role),
		Content:    msg.Content,
		TokenCount: msg.TokenCount,
		CreatedAt:  msg.CreatedAt.Format(time.RFC3339),
	}
}
