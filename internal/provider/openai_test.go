package provider

import (
	"context"
	"os"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/joho/godotenv"
)

func TestOpenAIProvider_Integration(t *testing.T) {
	_ = godotenv.Load("../../.env")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	modelID := os.Getenv("OPENAI_MODEL_ID")
	if modelID == "" {
		modelID = "gpt-4o-mini"
	}

	ctx := context.Background()

	provider, err := NewOpenAIProvider(ctx, &OpenAIConfig{APIKey: apiKey, Model: modelID, MaxTokens: 1024})
	if err != nil {
		t.Fatalf("Failed to create OpenAI provider: %v", err)
	}

	if provider.ID() != "openai" {
		t.Errorf("Expected ID 'openai', got '%s'", provider.ID())
	}
	if provider.Name() != "OpenAI" {
		t.Errorf("Expected Name 'OpenAI', got '%s'", provider.Name())
	}
	if len(provider.Models()) == 0 {
		t.Error("Expected at least one model")
	}

	t.Run("SimpleCompletion", func(t *testing.T) {
		req := &CompletionRequest{
			Model:     modelID,
			Messages:  []*schema.Message{{Role: schema.User, Content: "Say 'Hello, World!' and nothing else."}},
			MaxTokens: 100,
			// GPT-5 models don't accept a custom temperature.
		}

		content, err := provider.Complete(ctx, req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if content == "" {
			t.Error("Expected non-empty response")
		}
		t.Logf("OpenAI response: %s", content)
	})

	t.Run("MultiTurnConversation", func(t *testing.T) {
		req := &CompletionRequest{
			Model: modelID,
			Messages: []*schema.Message{
				{Role: schema.User, Content: "Remember the number 42."},
				{Role: schema.Assistant, Content: "I'll remember the number 42."},
				{Role: schema.User, Content: "What number did I ask you to remember? Reply with just the number."},
			},
			MaxTokens: 50,
		}

		content, err := provider.Complete(ctx, req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if content == "" {
			t.Error("Expected non-empty response")
		}
	})
}
