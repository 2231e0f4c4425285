package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/silverl/distill/pkg/model"
)

// professionalBodyLimit keeps the post within LinkedIn's comfortable
// single-post reading length, trimming at a paragraph boundary.
const professionalBodyLimit = 3000

// ProfessionalPublisher renders a post as a single LinkedIn-shaped post:
// a short hook line, the body trimmed to professionalBodyLimit at a
// paragraph boundary, and a closing hashtag line from themes/projects.
type ProfessionalPublisher struct {
	name   string
	client schedulerLikeClient
}

// NewProfessionalPublisher builds a ProfessionalPublisher delivering via
// a scheduler-shaped HTTP transport.
func NewProfessionalPublisher(name string, cfg model.PublisherConfig) *ProfessionalPublisher {
	return &ProfessionalPublisher{name: name, client: NewSchedulerPublisher(name, cfg)}
}

func (p *ProfessionalPublisher) Name() string { return p.name }

type professionalPost struct {
	Hook string `json:"hook"`
	Body string `json:"body"`
	Tags string `json:"tags"`
}

func (p *ProfessionalPublisher) Render(post *model.BlogPost) (*Payload, error) {
	body := trimAtParagraph(post.BodyMarkdown, professionalBodyLimit)
	tags := ""
	for _, theme := range post.Themes.Slice() {
		tags += "#" + sanitizeHashtag(theme) + " "
	}
	for _, project := range post.Projects {
		tags += "#" + sanitizeHashtag(project) + " "
	}
	data, err := json.Marshal(professionalPost{Hook: post.Title, Body: body, Tags: tags})
	if err != nil {
		return nil, fmt.Errorf("professional: encode payload: %w", err)
	}
	return &Payload{Platform: p.name, Slug: post.Slug, Body: data}, nil
}

func (p *ProfessionalPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	receipt, err := p.client.Deliver(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("professional: %w", err)
	}
	return receipt, nil
}

func trimAtParagraph(body string, limit int) string {
	if len(body) <= limit {
		return body
	}
	cut := body[:limit]
	if idx := lastIndexOf(cut, "\n\n"); idx > 0 {
		return cut[:idx]
	}
	return cut
}

func lastIndexOf(s, sub string) int {
	for i := len(s) - len(sub); i >= 0; i-- {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func sanitizeHashtag(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
