package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible models.
type OpenAIProvider struct {
	chatModel einomodel.ToolCallingChatModel
	models    []Model
	config    *OpenAIConfig
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	// ID is the provider identifier (e.g. "openai", "qwen", "ollama").
	ID        string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int

	UseAzure   bool
	APIVersion string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(ctx context.Context, config *OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		if config.UseAzure {
			apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
		} else {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if apiKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	modelID := config.Model
	if modelID == "" {
		modelID = os.Getenv("OPENAI_MODEL_ID")
	}
	if modelID == "" {
		modelID = "gpt-4o"
	}

	cfg := &openai.ChatModelConfig{
		APIKey:              apiKey,
		Model:               modelID,
		MaxCompletionTokens: &maxTokens, // GPT-5 family requires MaxCompletionTokens.
	}
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}
	if config.UseAzure {
		cfg.ByAzure = true
		cfg.APIVersion = config.APIVersion
		if cfg.APIVersion == "" {
			cfg.APIVersion = "2024-02-15-preview"
		}
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}

	return &OpenAIProvider{
		chatModel: chatModel,
		models:    openAIModels(),
		config:    config,
	}, nil
}

// ID returns the provider identifier.
func (p *OpenAIProvider) ID() string {
	if p.config.ID != "" {
		return p.config.ID
	}
	return "openai"
}

// Name returns the human-readable provider name.
func (p *OpenAIProvider) Name() string { return "OpenAI" }

// Models returns the list of available models.
func (p *OpenAIProvider) Models() []Model { return p.models }

// Complete runs a single-shot completion.
func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	return generate(ctx, p.chatModel, req, "openai")
}

func openAIModels() []Model {
	return []Model{
		{ID: "gpt-5", Name: "GPT-5", ProviderID: "openai", ContextLength: 272000, MaxOutputTokens: 128000, SupportsVision: true, SupportsReasoning: true, InputPrice: 1.25, OutputPrice: 10.0},
		{ID: "gpt-5-mini", Name: "GPT-5 Mini", ProviderID: "openai", ContextLength: 272000, MaxOutputTokens: 128000, SupportsVision: true, SupportsReasoning: true, InputPrice: 0.25, OutputPrice: 2.0},
		{ID: "gpt-5-nano", Name: "GPT-5 Nano", ProviderID: "openai", ContextLength: 272000, MaxOutputTokens: 128000, SupportsVision: true, InputPrice: 0.05, OutputPrice: 0.4},
		{ID: "gpt-4o", Name: "GPT-4o", ProviderID: "openai", ContextLength: 128000, MaxOutputTokens: 16384, SupportsVision: true, InputPrice: 2.5, OutputPrice: 10.0},
		{ID: "gpt-4o-mini", Name: "GPT-4o Mini", ProviderID: "openai", ContextLength: 128000, MaxOutputTokens: 16384, SupportsVision: true, InputPrice: 0.15, OutputPrice: 0.6},
		{ID: "o1", Name: "O1", ProviderID: "openai", ContextLength: 200000, MaxOutputTokens: 100000, SupportsReasoning: true, InputPrice: 15.0, OutputPrice: 60.0},
		{ID: "o1-mini", Name: "O1 Mini", ProviderID: "openai", ContextLength: 128000, MaxOutputTokens: 65536, SupportsReasoning: true, InputPrice: 1.1, OutputPrice: 4.4},
	}
}
