package llm

import (
	"context"
	"testing"

	"policyhub/internal/models"
)

type fakeProvider struct{}

func (fakeProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return "ok", nil
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("fake", func(ctx context.Context, cfg *models.ModelProvider) (Provider, error) {
		return fakeProvider{}, nil
	})

	p, err := reg.Get(context.Background(), &models.ModelProvider{Kind: "FAKE"})
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}

	reply, err := p.Chat(context.Background(), nil)
	if err != nil || reply != "ok" {
		t.Fatalf("chat: reply=%q err=%v", reply, err)
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get(context.Background(), &models.ModelProvider{Kind: "nope"}); err == nil {
		t.Fatal("expected error for unknown provider kind")
	}
}

func TestDefaultRegistry_BuiltinKinds(t *testing.T) {
	reg := NewDefaultRegistry()

	for _, kind := range []models.ProviderKind{models.ProviderOpenAI, models.ProviderOllama} {
		if _, err := reg.Get(context.Background(), &models.ModelProvider{Kind: kind}); err != nil {
			t.Errorf("builtin kind %q not registered: %v", kind, err)
		}
	}
}
