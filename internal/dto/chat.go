package dto

type CreateConversationRequest struct {
	AssistantID string `json:"assistant_id" validate:"required,uuid"`
	Title       string `json:"title"`
}

type ConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	AssistantID    string `json:"assistant_id"`
	Title          string `json:"title"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	TokenCount int    `json:"token_count,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ChatResponse struct {
	Reply     MessageResponse `json:"reply"`
	FromCache bool            `json:"from_cache,omitempty"`
}

type CreateQuestionRequest struct {
	Content string `json:"content" validate:"required"`
	Answer  string `json:"answer" validate:"required"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type UpdateQuestionRequest struct {
	Content string `json:"content"`
	Answer  string `json:"answer"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type QuestionResponse struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistant_id"`
	Content     string `json:"content"`
	Answer      string `json:"answer"`
	HitCount    int64  `json:"hit_count"`
	Enabled     bool   `json:"enabled"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
