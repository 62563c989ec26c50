package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-completion backend.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Embedder generates vector embeddings for a batch of texts. Providers that
// expose an embeddings endpoint implement both interfaces.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
