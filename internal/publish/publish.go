// Package publish adapts a canonical BlogPost to each destination
// platform's dialect and delivers it. Every Publisher
// implements {Render(post) → platform payload, Deliver(ctx, payload) →
// delivery receipt}; fan-out across platforms for a single post is the
// orchestrator's concern (parallel, no shared state between platforms).
package publish

import (
	"context"
	"fmt"

	"github.com/silverl/distill/pkg/model"
)

// Payload is the platform-rendered form of one BlogPost, opaque to the
// orchestrator beyond its Platform tag.
type Payload struct {
	Platform string
	Slug     string
	Body     []byte
}

// Receipt is what a successful delivery returns: enough to log and to
// feed into memory.RecordPublished.
type Receipt struct {
	Platform string
	Detail   string
}

// Publisher adapts and delivers a BlogPost to one destination platform.
type Publisher interface {
	// Name identifies this platform for config.Publishers lookup and for
	// PublishedRecord.Platforms.
	Name() string

	// Render converts a BlogPost into this platform's payload shape.
	Render(post *model.BlogPost) (*Payload, error)

	// Deliver sends a rendered payload. A non-nil error is classified by
	// the caller as distillerr.PublisherRejected.
	Deliver(ctx context.Context, payload *Payload) (*Receipt, error)
}

// New builds the Publisher named by cfg.Type, one of the seven
// dialects.
func New(name string, cfg model.PublisherConfig) (Publisher, error) {
	switch cfg.Type {
	case "vault":
		return NewVaultPublisher(name, cfg), nil
	case "cms":
		return NewCMSPublisher(name, cfg), nil
	case "plainmd":
		return NewPlainMarkdownPublisher(name, cfg), nil
	case "thread":
		return NewThreadPublisher(name, cfg), nil
	case "professional":
		return NewProfessionalPublisher(name, cfg), nil
	case "discussion":
		return NewDiscussionPublisher(name, cfg), nil
	case "scheduler":
		return NewSchedulerPublisher(name, cfg), nil
	default:
		return nil, fmt.Errorf("publish: unknown publisher type %q for %q", cfg.Type, name)
	}
}
