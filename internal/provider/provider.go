// Package provider wraps Eino chat models behind a small single-shot
// completion interface. It backs the "library" llm.Worker implementation.
package provider

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Model describes an LLM model's capabilities and pricing, independent of
// any particular wire format.
type Model struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	ProviderID        string      `json:"providerId"`
	ContextLength     int         `json:"contextLength"`
	MaxOutputTokens   int         `json:"maxOutputTokens"`
	SupportsVision    bool        `json:"supportsVision,omitempty"`
	SupportsReasoning bool        `json:"supportsReasoning,omitempty"`
	InputPrice        float64     `json:"inputPrice,omitempty"`
	OutputPrice       float64     `json:"outputPrice,omitempty"`
	Options           ModelOptions `json:"options,omitempty"`
}

// ModelOptions captures model-specific feature toggles.
type ModelOptions struct {
	PromptCaching  bool `json:"promptCaching,omitempty"`
	ExtendedOutput bool `json:"extendedOutput,omitempty"`
}

// Provider represents a single-shot LLM backend with an Eino ChatModel
// underneath.
type Provider interface {
	// ID returns the provider identifier used in "provider/model" strings.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Models returns the list of models this provider exposes.
	Models() []Model

	// Complete runs one request/response completion (no streaming, no
	// tool-calling; distill only ever needs a finished block of prose).
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// CompletionRequest represents a single-shot completion request.
type CompletionRequest struct {
	Model       string
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float64
}

// completionOpts builds the Eino generation options shared by providers.
func completionOpts(req *CompletionRequest) []einomodel.Option {
	opts := []einomodel.Option{einomodel.WithMaxTokens(req.MaxTokens)}
	if req.Temperature > 0 {
		opts = append(opts, einomodel.WithTemperature(float32(req.Temperature)))
	}
	return opts
}

// generate runs chatModel.Generate and flattens the result to plain text,
// returning a descriptive error on failure.
func generate(ctx context.Context, chatModel einomodel.ToolCallingChatModel, req *CompletionRequest, providerName string) (string, error) {
	msg, err := chatModel.Generate(ctx, req.Messages, completionOpts(req)...)
	if err != nil {
		return "", fmt.Errorf("%s: generate completion: %w", providerName, err)
	}
	return msg.Content, nil
}
