package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/silverl/distill/pkg/model"
)

// SchedulerPublisher forwards a post to an external social-scheduling
// service (Postiz-like): one payload, fanned out to multiple social
// channels server-side. Same HTTP client-with-timeout shape as
// CMSPublisher.
type SchedulerPublisher struct {
	name    string
	target  string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewSchedulerPublisher builds a SchedulerPublisher posting to
// cfg.Target.
func NewSchedulerPublisher(name string, cfg model.PublisherConfig) *SchedulerPublisher {
	return &SchedulerPublisher{
		name:    name,
		target:  cfg.Target,
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: defaultPublishTimeout},
	}
}

func (s *SchedulerPublisher) Name() string { return s.name }

type schedulerPostBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *SchedulerPublisher) Render(post *model.BlogPost) (*Payload, error) {
	data, err := json.Marshal(schedulerPostBody{Title: post.Title, Content: post.BodyMarkdown})
	if err != nil {
		return nil, fmt.Errorf("scheduler: encode payload: %w", err)
	}
	return &Payload{Platform: s.name, Slug: post.Slug, Body: data}, nil
}

func (s *SchedulerPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	if s.target == "" {
		return nil, fmt.Errorf("scheduler publisher %q: no target URL configured", s.name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target, bytes.NewReader(payload.Body))
	if err != nil {
		return nil, fmt.Errorf("scheduler: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scheduler: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scheduler: non-2xx response %d: %s", resp.StatusCode, string(body))
	}
	return &Receipt{Platform: s.name, Detail: string(body)}, nil
}
