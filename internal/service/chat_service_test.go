package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"policyhub/internal/llm"
	"policyhub/internal/models"
	"policyhub/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type fakeConvStore struct {
	convs    map[string]*models.Conversation
	messages []*models.Message
	nextID   int64
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{convs: make(map[string]*models.Conversation)}
}

func (f *fakeConvStore) Create(ctx context.Context, conv *models.Conversation) error {
	f.convs[conv.ConversationID] = conv
	return nil
}

func (f *fakeConvStore) GetByPublicID(ctx context.Context, userID uuid.UUID, conversationID string) (*models.Conversation, error) {
	conv, ok := f.convs[conversationID]
	if !ok || conv.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return conv, nil
}

func (f *fakeConvStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, conv := range f.convs {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (f *fakeConvStore) Touch(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeConvStore) Delete(ctx context.Context, id uuid.UUID) error {
	for key, conv := range f.convs {
		if conv.ID == id {
			delete(f.convs, key)
		}
	}
	return nil
}

func (f *fakeConvStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	f.nextID++
	msg.ID = f.nextID
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeConvStore) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int, beforeID int64) ([]*models.Message, error) {
	var out []*models.Message
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		msg := f.messages[i]
		if msg.ConversationID != conversationID {
			continue
		}
		if beforeID > 0 && msg.ID >= beforeID {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

type fakeQuestionStore struct {
	match *models.Question
	hits  int
}

func (f *fakeQuestionStore) FindMatch(ctx context.Context, assistantID uuid.UUID, content string) (*models.Question, error) {
	if f.match != nil && strings.EqualFold(strings.TrimSpace(content), strings.TrimSpace(f.match.Content)) {
		return f.match, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeQuestionStore) IncrementHitCount(ctx context.Context, id uuid.UUID) error {
	f.hits++
	return nil
}

type fakeAssistantStore struct {
	assistant *models.Assistant
	kbIDs     []uuid.UUID
}

func (f *fakeAssistantStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Assistant, error) {
	if f.assistant == nil || f.assistant.ID != id {
		return nil, pgx.ErrNoRows
	}
	return f.assistant, nil
}

func (f *fakeAssistantStore) LinkedKnowledgeBaseIDs(ctx context.Context, assistantID uuid.UUID) ([]uuid.UUID, error) {
	return f.kbIDs, nil
}

type fakeProviderStore struct {
	provider *models.ModelProvider
}

func (f *fakeProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ModelProvider, error) {
	if f.provider == nil {
		return nil, pgx.ErrNoRows
	}
	return f.provider, nil
}

func (f *fakeProviderStore) GetDefault(ctx context.Context) (*models.ModelProvider, error) {
	if f.provider == nil {
		return nil, pgx.ErrNoRows
	}
	return f.provider, nil
}

type fakeRetriever struct {
	chunks []*models.DocumentChunk
}

func (f *fakeRetriever) Search(ctx context.Context, kbID uuid.UUID, query string, topK int) ([]*models.DocumentChunk, error) {
	return f.chunks, nil
}

// recordingProvider captures the prompt it was called with.
type recordingProvider struct {
	reply  string
	err    error
	calls  int
	prompt []llm.Message
}

func (p *recordingProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	p.calls++
	p.prompt = messages
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type chatFixture struct {
	svc       *ChatService
	convs     *fakeConvStore
	questions *fakeQuestionStore
	provider  *recordingProvider
	conv      *models.Conversation
	userID    uuid.UUID
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	userID := uuid.New()
	assistant := &models.Assistant{
		ID:           uuid.New(),
		OwnerID:      userID,
		Name:         "政策问答助手",
		SystemPrompt: "你是政策咨询助手",
		Status:       models.AssistantActive,
	}

	provider := &recordingProvider{reply: "这是助手的回答"}
	registry := llm.NewRegistry()
	registry.Register("fake", func(ctx context.Context, cfg *models.ModelProvider) (llm.Provider, error) {
		return provider, nil
	})

	convs := newFakeConvStore()
	questions := &fakeQuestionStore{}
	conv := &models.Conversation{
		ID:             uuid.New(),
		ConversationID: "01HTESTCONVERSATION0000000",
		UserID:         userID,
		AssistantID:    assistant.ID,
		Title:          "测试对话",
	}
	if err := convs.Create(context.Background(), conv); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	kbID := uuid.New()
	svc := NewChatService(
		convs,
		questions,
		&fakeAssistantStore{assistant: assistant, kbIDs: []uuid.UUID{kbID}},
		&fakeProviderStore{provider: &models.ModelProvider{ID: uuid.New(), Kind: "fake", Enabled: true}},
		&fakeRetriever{chunks: []*models.DocumentChunk{{Content: "政策补贴标准为每月300元"}}},
		registry,
		&config.ChatConfig{ContextWindow: 20, TopK: 5},
		zap.NewNop(),
	)

	return &chatFixture{svc: svc, convs: convs, questions: questions, provider: provider, conv: conv, userID: userID}
}

func TestSendMessage_ProviderReply(t *testing.T) {
	fx := newChatFixture(t)

	resp, err := fx.svc.SendMessage(context.Background(), fx.userID, fx.conv.ConversationID, "养老补贴多少钱")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if resp.FromCache {
		t.Error("reply should not come from the question cache")
	}
	if resp.Reply.Content != "这是助手的回答" {
		t.Errorf("reply = %q", resp.Reply.Content)
	}
	if fx.provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", fx.provider.calls)
	}

	// System prompt carries the retrieved knowledge base context.
	if len(fx.provider.prompt) == 0 || fx.provider.prompt[0].Role != "system" {
		t.Fatalf("prompt missing system message: %+v", fx.provider.prompt)
	}
	if !strings.Contains(fx.provider.prompt[0].Content, "每月300元") {
		t.Errorf("system message missing KB context: %q", fx.provider.prompt[0].Content)
	}
	last := fx.provider.prompt[len(fx.provider.prompt)-1]
	if last.Role != "user" || last.Content != "养老补贴多少钱" {
		t.Errorf("last prompt message = %+v, want the user message", last)
	}

	// User message and assistant reply both persisted.
	if len(fx.convs.messages) != 2 {
		t.Errorf("persisted %d messages, want 2", len(fx.convs.messages))
	}
}

func TestSendMessage_QuestionCacheHit(t *testing.T) {
	fx := newChatFixture(t)
	fx.questions.match = &models.Question{
		ID:      uuid.New(),
		Content: "营业时间",
		Answer:  "每天9点到17点",
		Enabled: true,
	}

	resp, err := fx.svc.SendMessage(context.Background(), fx.userID, fx.conv.ConversationID, " 营业时间 ")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if !resp.FromCache {
		t.Error("reply should come from the question cache")
	}
	if resp.Reply.Content != "每天9点到17点" {
		t.Errorf("reply = %q", resp.Reply.Content)
	}
	if fx.provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", fx.provider.calls)
	}
	if fx.questions.hits != 1 {
		t.Errorf("hit count bumped %d times, want 1", fx.questions.hits)
	}
}

func TestSendMessage_UpstreamFailure(t *testing.T) {
	fx := newChatFixture(t)
	fx.provider.err = errors.New("connection refused")

	_, err := fx.svc.SendMessage(context.Background(), fx.userID, fx.conv.ConversationID, "你好")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}

	// The user message persists, the failed assistant reply does not.
	if len(fx.convs.messages) != 1 {
		t.Errorf("persisted %d messages, want 1", len(fx.convs.messages))
	}
	if fx.convs.messages[0].Role != models.RoleMessageUser {
		t.Errorf("persisted message role = %q", fx.convs.messages[0].Role)
	}
}

func TestSendMessage_UnknownConversation(t *testing.T) {
	fx := newChatFixture(t)

	_, err := fx.svc.SendMessage(context.Background(), fx.userID, "01HDOESNOTEXIST00000000000", "你好")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListMessages_NewestFirst(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	for _, content := range []string{"第一条", "第二条"} {
		if _, err := fx.svc.SendMessage(ctx, fx.userID, fx.conv.ConversationID, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}

	messages, err := fx.svc.ListMessages(ctx, fx.userID, fx.conv.ConversationID, 10, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}
	if messages[0].ID <= messages[1].ID {
		t.Errorf("messages not newest first: %d then %d", messages[0].ID, messages[1].ID)
	}
}
