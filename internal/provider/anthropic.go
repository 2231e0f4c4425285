package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino-ext/components/model/claude"
	einomodel "github.com/cloudwego/eino/components/model"
)

// AnthropicProvider implements Provider for Anthropic Claude models.
type AnthropicProvider struct {
	chatModel einomodel.ToolCallingChatModel
	models    []Model
	config    *AnthropicConfig
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	// ID is the provider identifier (e.g. "anthropic"). Defaults to "anthropic".
	ID        string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int

	Thinking *claude.Thinking

	UseBedrock bool
	Region     string
	Profile    string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(ctx context.Context, config *AnthropicConfig) (*AnthropicProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" && !config.UseBedrock {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	modelID := config.Model
	if modelID == "" {
		modelID = "claude-sonnet-4-20250514"
	}

	var chatModel einomodel.ToolCallingChatModel
	var err error

	if config.UseBedrock {
		bedrockModel := "anthropic." + modelID + "-v1:0"
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			ByBedrock: true,
			Region:    config.Region,
			Profile:   config.Profile,
			Model:     bedrockModel,
			MaxTokens: config.MaxTokens,
			Thinking:  config.Thinking,
		})
	} else {
		cfg := &claude.Config{
			APIKey:    apiKey,
			Model:     modelID,
			MaxTokens: config.MaxTokens,
			Thinking:  config.Thinking,
		}
		if config.BaseURL != "" {
			cfg.BaseURL = &config.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("create claude model: %w", err)
	}

	return &AnthropicProvider{
		chatModel: chatModel,
		models:    anthropicModels(),
		config:    config,
	}, nil
}

// ID returns the provider identifier.
func (p *AnthropicProvider) ID() string {
	if p.config.ID != "" {
		return p.config.ID
	}
	return "anthropic"
}

// Name returns the human-readable provider name.
func (p *AnthropicProvider) Name() string { return "Anthropic" }

// Models returns the list of available models.
func (p *AnthropicProvider) Models() []Model { return p.models }

// Complete runs a single-shot completion. A request with no messages, or
// whose first message has empty content, is rejected with an error before
// any call is made.
func (p *AnthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if len(req.Messages) == 0 || req.Messages[0].Content == "" {
		return "", fmt.Errorf("anthropic: first message has empty content")
	}
	return generate(ctx, p.chatModel, req, "anthropic")
}

func anthropicModels() []Model {
	return []Model{
		{
			ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 64000, SupportsVision: true,
			InputPrice: 3.0, OutputPrice: 15.0,
			Options: ModelOptions{PromptCaching: true, ExtendedOutput: true},
		},
		{
			ID: "claude-opus-4-20250514", Name: "Claude Opus 4", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 32000, SupportsVision: true, SupportsReasoning: true,
			InputPrice: 15.0, OutputPrice: 75.0,
			Options: ModelOptions{PromptCaching: true},
		},
		{
			ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 8192, SupportsVision: true,
			InputPrice: 3.0, OutputPrice: 15.0,
			Options: ModelOptions{PromptCaching: true},
		},
		{
			ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 8192, SupportsVision: true,
			InputPrice: 0.8, OutputPrice: 4.0,
		},
		{
			ID: "claude-haiku-4-5-20251001", Name: "Claude 4.5 Haiku", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 8192, SupportsVision: true,
			InputPrice: 0.8, OutputPrice: 4.0,
		},
		{
			// Alias for claude-haiku-4-5-20251001.
			ID: "claude-haiku-4-5", Name: "Claude 4.5 Haiku", ProviderID: "anthropic",
			ContextLength: 200000, MaxOutputTokens: 8192, SupportsVision: true,
			InputPrice: 0.8, OutputPrice: 4.0,
		},
	}
}
