package dto

type CreateAssistantRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  string  `json:"description"`
	SystemPrompt string  `json:"system_prompt"`
	ProviderID   string  `json:"provider_id,omitempty"`
	Model        string  `json:"model"`
	Temperature  float32 `json:"temperature"`
}

type UpdateAssistantRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	SystemPrompt string  `json:"system_prompt"`
	ProviderID   string  `json:"provider_id,omitempty"`
	Model        string  `json:"model"`
	Temperature  float32 `json:"temperature"`
	Status       string  `json:"status"`
}

type AssistantResponse struct {
	ID               string   `json:"id"`
	OwnerID          string   `json:"owner_id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	SystemPrompt     string   `json:"system_prompt"`
	ProviderID       string   `json:"provider_id,omitempty"`
	Model            string   `json:"model"`
	Temperature      float32  `json:"temperature"`
	Status           string   `json:"status"`
	KnowledgeBaseIDs []string `json:"knowledge_base_ids,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type LinkKnowledgeBaseRequest struct {
	KnowledgeBaseID string `json:"kb_id" validate:"required,uuid"`
}
