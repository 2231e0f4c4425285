package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/silverl/distill/pkg/model"
)

const defaultPublishTimeout = 30 * time.Second

// CMSPublisher delivers a post to a Ghost-like authenticated markdown
// API through a dedicated *http.Client with a bounded Timeout, never
// the package-level http.DefaultClient.
type CMSPublisher struct {
	name    string
	target  string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewCMSPublisher builds a CMSPublisher posting to cfg.Target.
func NewCMSPublisher(name string, cfg model.PublisherConfig) *CMSPublisher {
	return &CMSPublisher{
		name:    name,
		target:  cfg.Target,
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: defaultPublishTimeout},
	}
}

func (c *CMSPublisher) Name() string { return c.name }

type cmsPostBody struct {
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	Body  string   `json:"body_markdown"`
	Tags  []string `json:"tags,omitempty"`
}

func (c *CMSPublisher) Render(post *model.BlogPost) (*Payload, error) {
	data, err := json.Marshal(cmsPostBody{
		Slug:  post.Slug,
		Title: post.Title,
		Body:  post.BodyMarkdown,
		Tags:  append(post.Themes.Slice(), post.Projects...),
	})
	if err != nil {
		return nil, fmt.Errorf("cms: encode payload: %w", err)
	}
	return &Payload{Platform: c.name, Slug: post.Slug, Body: data}, nil
}

func (c *CMSPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	if c.target == "" {
		return nil, fmt.Errorf("cms publisher %q: no target URL configured", c.name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target, bytes.NewReader(payload.Body))
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cms: non-2xx response %d: %s", resp.StatusCode, string(body))
	}
	return &Receipt{Platform: c.name, Detail: string(body)}, nil
}
