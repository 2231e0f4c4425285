// Package llm provides the single external boundary the journal and blog
// synthesizers call through: render a prompt template, invoke an LLM, and
// enforce a timeout. Three backends satisfy the same Worker contract so
// the synthesis layer never knows which one is configured.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/silverl/distill/pkg/model"
)

// Worker is the external LLM boundary. Render fills the prompt template
// text tmpl with data; Invoke sends a finished prompt and returns plain
// markdown; Timeout reports the bound each Invoke call is subject to.
type Worker interface {
	Render(tmpl string, data any) (string, error)
	Invoke(ctx context.Context, prompt string) (string, error)
	Timeout() time.Duration
}

// NewWorker selects a Worker implementation from the configured backend
// string ("subprocess", "library", or "http").
func NewWorker(ctx context.Context, cfg *model.LLMConfig) (Worker, error) {
	switch cfg.Backend {
	case "", "subprocess":
		return NewSubprocessWorker(cfg.Subprocess), nil
	case "library":
		return NewLibraryWorker(ctx, cfg)
	case "http":
		return NewHTTPWorker(cfg.HTTP), nil
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", cfg.Backend)
	}
}

// renderTemplate is the shared Render implementation for every backend:
// plain text/template, no custom function map, since prompt templates are
// fixed strings defined by internal/journal and internal/blog rather than
// user-authored config.
func renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("llm: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("llm: execute template: %w", err)
	}
	return buf.String(), nil
}
