package provider

import (
	"context"
	"testing"

	"github.com/silverl/distill/pkg/model"
)

// mockProvider implements Provider for testing.
type mockProvider struct {
	id     string
	name   string
	models []Model
}

func (m *mockProvider) ID() string        { return m.id }
func (m *mockProvider) Name() string      { return m.name }
func (m *mockProvider) Models() []Model   { return m.models }
func (m *mockProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	return "", nil
}

func newMockProvider(id, name string, models []Model) *mockProvider {
	return &mockProvider{id: id, name: name, models: models}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry(nil)

	p := newMockProvider("test", "Test Provider", nil)
	registry.Register(p)

	got, err := registry.Get("test")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID() != "test" {
		t.Errorf("Got provider ID %q, want 'test'", got.ID())
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	registry := NewRegistry(nil)

	_, err := registry.Get("nonexistent")
	if err == nil {
		t.Error("Expected error for nonexistent provider")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry(nil)

	registry.Register(newMockProvider("p1", "Provider 1", nil))
	registry.Register(newMockProvider("p2", "Provider 2", nil))
	registry.Register(newMockProvider("p3", "Provider 3", nil))

	providers := registry.List()
	if len(providers) != 3 {
		t.Errorf("Expected 3 providers, got %d", len(providers))
	}
}

func TestRegistry_GetModel(t *testing.T) {
	registry := NewRegistry(nil)

	models := []Model{
		{ID: "model-a", Name: "Model A", ProviderID: "test"},
		{ID: "model-b", Name: "Model B", ProviderID: "test"},
	}
	registry.Register(newMockProvider("test", "Test", models))

	m, err := registry.GetModel("test", "model-a")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if m.ID != "model-a" {
		t.Errorf("Got model ID %q, want 'model-a'", m.ID)
	}
}

func TestRegistry_GetModel_NotFound(t *testing.T) {
	registry := NewRegistry(nil)

	models := []Model{{ID: "model-a", Name: "Model A", ProviderID: "test"}}
	registry.Register(newMockProvider("test", "Test", models))

	if _, err := registry.GetModel("test", "nonexistent"); err == nil {
		t.Error("Expected error for nonexistent model")
	}
	if _, err := registry.GetModel("nonexistent", "model-a"); err == nil {
		t.Error("Expected error for nonexistent provider")
	}
}

func TestRegistry_AllModels(t *testing.T) {
	registry := NewRegistry(nil)

	registry.Register(newMockProvider("p1", "Provider 1", []Model{
		{ID: "gpt-4o-latest", Name: "GPT-4o"},
	}))
	registry.Register(newMockProvider("p2", "Provider 2", []Model{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4"},
		{ID: "claude-3-5-sonnet", Name: "Claude 3.5 Sonnet"},
	}))

	models := registry.AllModels()
	if len(models) != 3 {
		t.Fatalf("Expected 3 models, got %d", len(models))
	}
	if models[0].ID != "claude-sonnet-4-20250514" {
		t.Errorf("First model should be claude-sonnet-4, got %s", models[0].ID)
	}
}

func TestRegistry_DefaultModel_FromConfig(t *testing.T) {
	cfg := &model.LLMConfig{Model: "test/model-custom"}
	registry := NewRegistry(cfg)

	registry.Register(newMockProvider("test", "Test", []Model{
		{ID: "model-custom", Name: "Custom Model", ProviderID: "test"},
	}))

	m, err := registry.DefaultModel()
	if err != nil {
		t.Fatalf("DefaultModel failed: %v", err)
	}
	if m.ID != "model-custom" {
		t.Errorf("Expected model-custom, got %s", m.ID)
	}
}

func TestRegistry_DefaultModel_Fallback(t *testing.T) {
	registry := NewRegistry(nil)

	registry.Register(newMockProvider("test", "Test", []Model{
		{ID: "some-model", Name: "Some Model", ProviderID: "test"},
	}))

	m, err := registry.DefaultModel()
	if err != nil {
		t.Fatalf("DefaultModel failed: %v", err)
	}
	if m.ID != "some-model" {
		t.Errorf("Expected some-model as fallback, got %s", m.ID)
	}
}

func TestRegistry_DefaultModel_NoModels(t *testing.T) {
	registry := NewRegistry(nil)

	if _, err := registry.DefaultModel(); err == nil {
		t.Error("Expected error when no models available")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry(nil)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			p := newMockProvider("p"+string(rune('0'+n)), "Provider", nil)
			registry.Register(p)
			registry.List()
			registry.Get("p" + string(rune('0'+n)))
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if providers := registry.List(); len(providers) != 10 {
		t.Errorf("Expected 10 providers, got %d", len(providers))
	}
}

func TestInitializeProviders_NoConfig(t *testing.T) {
	cfg := &model.LLMConfig{Providers: make(map[string]model.ProviderConfig)}

	registry, err := InitializeProviders(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}

	if providers := registry.List(); len(providers) != 0 {
		t.Errorf("Expected 0 providers without API keys, got %d", len(providers))
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"anthropic", "anthropic"},
		{"claude", "anthropic"},
		{"openai", "openai"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferKind(tt.name); got != tt.expected {
				t.Errorf("inferKind(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}
