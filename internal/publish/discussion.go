package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/silverl/distill/pkg/model"
)

// DiscussionPublisher renders a post as a Reddit-shaped discussion post:
// a plain title plus the full markdown body, no platform-specific
// trimming or hashtag mangling.
type DiscussionPublisher struct {
	name   string
	client schedulerLikeClient
}

// NewDiscussionPublisher builds a DiscussionPublisher delivering via a
// scheduler-shaped HTTP transport.
func NewDiscussionPublisher(name string, cfg model.PublisherConfig) *DiscussionPublisher {
	return &DiscussionPublisher{name: name, client: NewSchedulerPublisher(name, cfg)}
}

func (d *DiscussionPublisher) Name() string { return d.name }

type discussionPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (d *DiscussionPublisher) Render(post *model.BlogPost) (*Payload, error) {
	data, err := json.Marshal(discussionPost{Title: post.Title, Body: post.BodyMarkdown})
	if err != nil {
		return nil, fmt.Errorf("discussion: encode payload: %w", err)
	}
	return &Payload{Platform: d.name, Slug: post.Slug, Body: data}, nil
}

func (d *DiscussionPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	receipt, err := d.client.Deliver(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("discussion: %w", err)
	}
	return receipt, nil
}
