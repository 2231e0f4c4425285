package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/silverl/distill/pkg/model"
)

// PlainMarkdownPublisher writes a post as a plain markdown file: a
// "# Title" heading followed by the body, with no frontmatter or
// platform-specific markup — the simplest of the seven dialects.
type PlainMarkdownPublisher struct {
	name string
	dir  string
}

// NewPlainMarkdownPublisher builds a PlainMarkdownPublisher writing files
// under cfg.Target.
func NewPlainMarkdownPublisher(name string, cfg model.PublisherConfig) *PlainMarkdownPublisher {
	return &PlainMarkdownPublisher{name: name, dir: cfg.Target}
}

func (p *PlainMarkdownPublisher) Name() string { return p.name }

func (p *PlainMarkdownPublisher) Render(post *model.BlogPost) (*Payload, error) {
	body := "# " + post.Title + "\n\n" + post.BodyMarkdown
	return &Payload{Platform: p.name, Slug: post.Slug, Body: []byte(body)}, nil
}

func (p *PlainMarkdownPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	if p.dir == "" {
		return nil, fmt.Errorf("plainmd publisher %q: no target directory configured", p.name)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("plainmd: create target directory: %w", err)
	}
	path := filepath.Join(p.dir, payload.Slug+".md")
	if err := os.WriteFile(path, payload.Body, 0o644); err != nil {
		return nil, fmt.Errorf("plainmd: write file: %w", err)
	}
	return &Receipt{Platform: p.name, Detail: path}, nil
}
