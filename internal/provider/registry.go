package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/silverl/distill/internal/logging"
	"github.com/silverl/distill/pkg/model"
)

// Registry manages the set of configured LLM providers and answers
// "provider/model" lookups for the library backend.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	config    *model.LLMConfig
}

// NewRegistry creates an empty provider registry.
func NewRegistry(config *model.LLMConfig) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		config:    config,
	}
}

// Register adds a provider to the registry, keyed by its ID.
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID()] = provider
}

// Get retrieves a provider by ID.
func (r *Registry) Get(providerID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", providerID)
	}
	return provider, nil
}

// List returns all registered providers.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	return providers
}

// GetModel retrieves a specific model from a provider.
func (r *Registry) GetModel(providerID, modelID string) (*Model, error) {
	provider, err := r.Get(providerID)
	if err != nil {
		return nil, err
	}

	for _, m := range provider.Models() {
		if m.ID == modelID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("model not found: %s/%s", providerID, modelID)
}

// AllModels returns every model from every registered provider, sorted by
// a rough capability/priority heuristic.
func (r *Registry) AllModels() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var models []Model
	for _, p := range r.providers {
		models = append(models, p.Models()...)
	}

	sort.Slice(models, func(i, j int) bool {
		return modelPriority(models[i].ID) > modelPriority(models[j].ID)
	})

	return models
}

// DefaultModel returns the model selected by LLMConfig.Model, falling back
// to Claude Sonnet or the first available model.
func (r *Registry) DefaultModel() (*Model, error) {
	if r.config != nil && r.config.Model != "" {
		providerID, modelID := ParseModelString(r.config.Model)
		return r.GetModel(providerID, modelID)
	}

	if m, err := r.GetModel("anthropic", "claude-sonnet-4-20250514"); err == nil {
		return m, nil
	}

	models := r.AllModels()
	if len(models) == 0 {
		return nil, fmt.Errorf("no models available")
	}
	return &models[0], nil
}

// ParseModelString parses a "provider/model" string.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}

func modelPriority(modelID string) int {
	switch {
	case strings.Contains(modelID, "gpt-5"):
		return 100
	case strings.Contains(modelID, "claude-sonnet-4"):
		return 90
	case strings.Contains(modelID, "claude-opus"):
		return 85
	case strings.Contains(modelID, "gpt-4o"):
		return 80
	case strings.Contains(modelID, "claude-3-5"):
		return 75
	default:
		return 50
	}
}

// InitializeProviders constructs and registers a provider for every
// non-disabled entry in cfg.Providers, then auto-registers Anthropic/OpenAI
// from environment credentials if not already configured.
func InitializeProviders(ctx context.Context, cfg *model.LLMConfig) (*Registry, error) {
	registry := NewRegistry(cfg)

	configured := make(map[string]bool)

	for name, pc := range cfg.Providers {
		if pc.Disable {
			continue
		}
		configured[name] = true

		var provider Provider
		var err error

		switch inferKind(name) {
		case "anthropic":
			provider, err = NewAnthropicProvider(ctx, &AnthropicConfig{
				ID: name, APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model, MaxTokens: 8192,
			})
		case "openai":
			provider, err = NewOpenAIProvider(ctx, &OpenAIConfig{
				ID: name, APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model, MaxTokens: 4096,
			})
		default:
			// Unrecognized provider name with an explicit BaseURL is treated
			// as an OpenAI-compatible endpoint.
			if pc.BaseURL != "" {
				provider, err = NewOpenAIProvider(ctx, &OpenAIConfig{
					ID: name, APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model, MaxTokens: 4096,
				})
			}
		}

		if err != nil {
			logging.Warn().Str("provider", name).Err(err).Msg("provider init failed")
			continue
		}
		if provider != nil {
			registry.Register(provider)
		}
	}

	if !configured["anthropic"] {
		if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
			if p, err := NewAnthropicProvider(ctx, &AnthropicConfig{ID: "anthropic", APIKey: apiKey, MaxTokens: 8192}); err == nil {
				registry.Register(p)
			}
		}
	}

	if !configured["openai"] {
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
			if p, err := NewOpenAIProvider(ctx, &OpenAIConfig{ID: "openai", APIKey: apiKey, MaxTokens: 4096}); err == nil {
				registry.Register(p)
			}
		}
	}

	return registry, nil
}

func inferKind(name string) string {
	switch name {
	case "anthropic", "claude":
		return "anthropic"
	case "openai":
		return "openai"
	default:
		return ""
	}
}
