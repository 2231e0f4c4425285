package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/silverl/distill/internal/frontmatter"
	"github.com/silverl/distill/pkg/model"
)

// VaultPublisher writes a post as a local Obsidian-style vault note:
// YAML frontmatter plus `[[wiki-link]]`-ified theme/project references,
// following internal/storage atomic file writing (the same
// temp-file-then-rename discipline used for journal/blog artifacts).
type VaultPublisher struct {
	name string
	dir  string
}

// NewVaultPublisher builds a VaultPublisher writing notes under
// cfg.Target.
func NewVaultPublisher(name string, cfg model.PublisherConfig) *VaultPublisher {
	return &VaultPublisher{name: name, dir: cfg.Target}
}

func (v *VaultPublisher) Name() string { return v.name }

var wikiLinkUnsafe = regexp.MustCompile(`[\[\]|]`)

type vaultFrontmatter struct {
	Title string   `json:"title"`
	Slug  string   `json:"slug"`
	Date  string   `json:"date"`
	Tags  []string `json:"tags"`
}

func (v *VaultPublisher) Render(post *model.BlogPost) (*Payload, error) {
	body := post.BodyMarkdown + "\n\n## Related\n\n"
	for _, theme := range post.Themes.Slice() {
		body += fmt.Sprintf("- [[%s]]\n", wikiLinkUnsafe.ReplaceAllString(theme, ""))
	}
	for _, project := range post.Projects {
		body += fmt.Sprintf("- [[%s]]\n", wikiLinkUnsafe.ReplaceAllString(project, ""))
	}

	meta := vaultFrontmatter{
		Title: post.Title,
		Slug:  post.Slug,
		Date:  post.Date,
		Tags:  append(post.Themes.Slice(), post.Projects...),
	}
	data, err := frontmatter.Render(meta, body)
	if err != nil {
		return nil, fmt.Errorf("vault: render frontmatter: %w", err)
	}
	return &Payload{Platform: v.name, Slug: post.Slug, Body: data}, nil
}

func (v *VaultPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	if v.dir == "" {
		return nil, fmt.Errorf("vault publisher %q: no target directory configured", v.name)
	}
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create target directory: %w", err)
	}
	path := filepath.Join(v.dir, payload.Slug+".md")
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, payload.Body, 0o644); err != nil {
		return nil, fmt.Errorf("vault: write note: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("vault: rename note: %w", err)
	}
	return &Receipt{Platform: v.name, Detail: path}, nil
}
