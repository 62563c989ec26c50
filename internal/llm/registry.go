package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"policyhub/internal/models"
)

// ProviderFactory builds a Provider from a model provider row.
type ProviderFactory func(ctx context.Context, cfg *models.ModelProvider) (Provider, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// NewDefaultRegistry returns a registry with the built-in provider kinds.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(string(models.ProviderOpenAI), func(ctx context.Context, cfg *models.ModelProvider) (Provider, error) {
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.EmbeddingModel), nil
	})
	r.Register(string(models.ProviderOllama), func(ctx context.Context, cfg *models.ModelProvider) (Provider, error) {
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.EmbeddingModel), nil
	})
	return r
}

func (r *Registry) Register(kind string, f ProviderFactory) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

func (r *Registry) Get(ctx context.Context, cfg *models.ModelProvider) (Provider, error) {
	kind := strings.ToLower(strings.TrimSpace(string(cfg.Kind)))
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown model provider kind: %s", kind)
	}
	return f(ctx, cfg)
}
