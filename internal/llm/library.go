package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/provider"
	"github.com/silverl/distill/pkg/model"
)

const defaultLibraryTimeout = 120 * time.Second

// LibraryWorker invokes an in-process LLM provider (Anthropic or OpenAI
// via Eino) as a single-shot completion, rather than shelling out to an
// external CLI.
type LibraryWorker struct {
	registry  *provider.Registry
	modelSpec string
	timeout   time.Duration
}

// NewLibraryWorker initializes the provider registry from config and
// resolves the configured "provider/model" string (or its default).
func NewLibraryWorker(ctx context.Context, cfg *model.LLMConfig) (*LibraryWorker, error) {
	registry, err := provider.InitializeProviders(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: initialize providers: %w", err)
	}

	timeout := defaultLibraryTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &LibraryWorker{registry: registry, modelSpec: cfg.Model, timeout: timeout}, nil
}

func (w *LibraryWorker) Render(tmpl string, data any) (string, error) {
	return renderTemplate(tmpl, data)
}

func (w *LibraryWorker) Timeout() time.Duration {
	return w.timeout
}

func (w *LibraryWorker) Invoke(ctx context.Context, prompt string) (string, error) {
	providerID, modelID, err := w.resolveModel()
	if err != nil {
		return "", err
	}

	p, err := w.registry.Get(providerID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", distillerr.LLMUnavailable, err)
	}

	invokeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req := &provider.CompletionRequest{
		Model:    modelID,
		Messages: []*schema.Message{{Role: schema.User, Content: prompt}},
	}

	content, err := p.Complete(invokeCtx, req)
	if err != nil {
		if invokeCtx.Err() != nil {
			return "", fmt.Errorf("%w: %s", distillerr.LLMTimeout, err)
		}
		return "", fmt.Errorf("%w: %s", distillerr.LLMUnavailable, err)
	}
	if content == "" {
		return "", fmt.Errorf("%w: empty output", distillerr.LLMUnavailable)
	}
	return content, nil
}

func (w *LibraryWorker) resolveModel() (providerID, modelID string, err error) {
	if w.modelSpec != "" {
		providerID, modelID = provider.ParseModelString(w.modelSpec)
		return providerID, modelID, nil
	}
	m, err := w.registry.DefaultModel()
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", distillerr.LLMUnavailable, err)
	}
	return m.ProviderID, m.ID, nil
}
