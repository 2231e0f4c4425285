package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/silverl/distill/pkg/model"
)

// threadSegmentLimit mirrors a conservative X/Twitter character budget,
// leaving headroom for a "(n/total) " prefix.
const threadSegmentLimit = 260

// ThreadPublisher splits a post into a segmented thread (Twitter/X-
// shaped): one segment per accumulated run of sentences up to
// threadSegmentLimit characters, numbered "n/total".
type ThreadPublisher struct {
	name   string
	client schedulerLikeClient
}

// schedulerLikeClient is the delivery half of a Publisher, satisfied by
// *SchedulerPublisher; ThreadPublisher, ProfessionalPublisher and
// DiscussionPublisher deliver through it.
type schedulerLikeClient interface {
	Deliver(ctx context.Context, payload *Payload) (*Receipt, error)
}

// NewThreadPublisher builds a ThreadPublisher posting segments to
// cfg.Target via a scheduler-shaped HTTP delivery.
func NewThreadPublisher(name string, cfg model.PublisherConfig) *ThreadPublisher {
	return &ThreadPublisher{
		name:   name,
		client: NewSchedulerPublisher(name, cfg),
	}
}

func (t *ThreadPublisher) Name() string { return t.name }

func (t *ThreadPublisher) Render(post *model.BlogPost) (*Payload, error) {
	segments := splitIntoThread(post.Title, post.BodyMarkdown)
	data, err := json.Marshal(segments)
	if err != nil {
		return nil, fmt.Errorf("thread: encode segments: %w", err)
	}
	return &Payload{Platform: t.name, Slug: post.Slug, Body: data}, nil
}

func (t *ThreadPublisher) Deliver(ctx context.Context, payload *Payload) (*Receipt, error) {
	receipt, err := t.client.Deliver(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("thread: %w", err)
	}
	return receipt, nil
}

// splitIntoThread breaks title+body into numbered segments, each a run
// of whole sentences not exceeding threadSegmentLimit characters.
func splitIntoThread(title, body string) []string {
	sentences := splitSentences(strings.TrimSpace(title + ". " + stripMarkdownHeadings(body)))

	var segments []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > threadSegmentLimit {
			segments = append(segments, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}

	total := len(segments)
	for i := range segments {
		segments[i] = fmt.Sprintf("(%d/%d) %s", i+1, total, segments[i])
	}
	return segments
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s+".")
		}
	}
	return out
}

func stripMarkdownHeadings(body string) string {
	lines := strings.Split(body, "\n")
	var kept []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}
