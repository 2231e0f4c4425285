// Package provider provides a single-shot LLM completion abstraction over
// the Eino framework for distill's "library" synthesis backend.
//
// # Core Components
//
//   - Provider: the interface every backend implements (ID, Name, Models,
//     Complete)
//   - Registry: resolves "provider/model" strings to a configured Provider
//
// # Supported Providers
//
// ## Anthropic (Claude)
//
// Supports Claude models directly or via AWS Bedrock:
//
//	provider, err := NewAnthropicProvider(ctx, &AnthropicConfig{
//	    APIKey: "sk-...",
//	    Model:  "claude-sonnet-4-20250514",
//	})
//
// ## OpenAI (and OpenAI-compatible endpoints)
//
//	provider, err := NewOpenAIProvider(ctx, &OpenAIConfig{
//	    APIKey: "sk-...",
//	    Model:  "gpt-4o",
//	})
//
// # Registry Usage
//
//	registry, err := InitializeProviders(ctx, &cfg.LLM)
//	provider, err := registry.Get("anthropic")
//	model, err := registry.DefaultModel()
//
// Unlike a live coding assistant, distill never streams partial output or
// binds tools to a chat model: every completion is one prompt in, one
// finished block of prose out, so Complete returns a plain string.
package provider
