package dto

type ProviderRequest struct {
	Name           string `json:"name" validate:"required"`
	Kind           string `json:"kind" validate:"required,oneof=openai ollama"`
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
	Enabled        *bool  `json:"enabled,omitempty"`
}

// ProviderResponse never echoes the API key back.
type ProviderResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
	Enabled        bool   `json:"enabled"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type MCPServiceRequest struct {
	Name        string `json:"name" validate:"required"`
	Endpoint    string `json:"endpoint" validate:"required"`
	Transport   string `json:"transport" validate:"required,oneof=http sse stdio"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

type MCPServiceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint"`
	Transport   string `json:"transport"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	LastPingAt  string `json:"last_ping_at,omitempty"`
	LastStatus  string `json:"last_status,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type PingResponse struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

type SelectorConfig struct {
	Result     string `json:"result" validate:"required"`
	Title      string `json:"title" validate:"required"`
	URL        string `json:"url" validate:"required"`
	Date       string `json:"date"`
	Department string `json:"department"`
}

type PortalRequest struct {
	Region       string         `json:"region" validate:"required"`
	Name         string         `json:"name" validate:"required"`
	SearchURL    string         `json:"search_url" validate:"required"`
	ParentRegion string         `json:"parent_region"`
	Selectors    SelectorConfig `json:"selectors"`
	Enabled      *bool          `json:"enabled,omitempty"`
}

type PortalResponse struct {
	ID           string         `json:"id"`
	Region       string         `json:"region"`
	Name         string         `json:"name"`
	SearchURL    string         `json:"search_url"`
	ParentRegion string         `json:"parent_region,omitempty"`
	Selectors    SelectorConfig `json:"selectors"`
	Enabled      bool           `json:"enabled"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

type GrantPermissionRequest struct {
	UserID       string `json:"user_id" validate:"required,uuid"`
	ResourceType string `json:"resource_type" validate:"required,oneof=assistant knowledge_base"`
	ResourceID   string `json:"resource_id" validate:"required,uuid"`
	Permission   string `json:"permission" validate:"required,oneof=read write manage"`
}

type PermissionResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Permission   string `json:"permission"`
	CreatedAt    string `json:"created_at"`
}

type SystemConfigResponse struct {
	VectorStoreBackend string  `json:"vector_store_backend"`
	SearchQualityMin   float64 `json:"search_quality_min"`
	SearchTimeoutSec   int     `json:"search_timeout_sec"`
	SearchMaxFetches   int     `json:"search_max_fetches"`
	CrawlerRetries     int     `json:"crawler_retries"`
	ChatContextWindow  int     `json:"chat_context_window"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}
