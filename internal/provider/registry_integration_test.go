package provider

import (
	"context"
	"os"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/joho/godotenv"

	"github.com/silverl/distill/pkg/model"
)

// integrationTestConfig defines a provider configuration for table-driven
// live-API tests. These are skipped unless the corresponding API key env
// var is set.
type integrationTestConfig struct {
	Name           string
	ProviderID     string
	APIKeyEnv      string
	ModelIDEnv     string
	DefaultModelID string
}

var integrationTestConfigs = []integrationTestConfig{
	{
		Name:           "Anthropic",
		ProviderID:     "anthropic",
		APIKeyEnv:      "ANTHROPIC_API_KEY",
		ModelIDEnv:     "ANTHROPIC_MODEL_ID",
		DefaultModelID: "claude-3-5-haiku-20241022",
	},
	{
		Name:           "OpenAI",
		ProviderID:     "openai",
		APIKeyEnv:      "OPENAI_API_KEY",
		ModelIDEnv:     "OPENAI_MODEL_ID",
		DefaultModelID: "gpt-4o-mini",
	},
}

func TestRegistry_LLMIntegration(t *testing.T) {
	_ = godotenv.Load("../../.env")

	for _, tc := range integrationTestConfigs {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			apiKey := os.Getenv(tc.APIKeyEnv)
			if apiKey == "" {
				t.Skipf("%s not set, skipping %s integration test", tc.APIKeyEnv, tc.Name)
			}

			modelID := os.Getenv(tc.ModelIDEnv)
			if modelID == "" {
				modelID = tc.DefaultModelID
			}

			cfg := &model.LLMConfig{
				Model: tc.ProviderID + "/" + modelID,
				Providers: map[string]model.ProviderConfig{
					tc.ProviderID: {APIKey: apiKey, Model: modelID},
				},
			}

			ctx := context.Background()
			registry, err := InitializeProviders(ctx, cfg)
			if err != nil {
				t.Fatalf("Failed to initialize providers: %v", err)
			}

			p, err := registry.Get(tc.ProviderID)
			if err != nil {
				t.Fatalf("Failed to get provider %s from registry: %v", tc.ProviderID, err)
			}

			req := &CompletionRequest{
				Model:       modelID,
				Messages:    []*schema.Message{{Role: schema.User, Content: "Say 'Hello, World!' and nothing else."}},
				MaxTokens:   100,
				Temperature: 0,
			}

			content, err := p.Complete(ctx, req)
			if err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if content == "" {
				t.Error("Expected non-empty response")
			}
			t.Logf("[%s] Response: %s", p.Name(), content)
		})
	}
}
