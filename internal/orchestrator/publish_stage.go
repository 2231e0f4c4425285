package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/silverl/distill/internal/event"
	"github.com/silverl/distill/pkg/model"
)

// PublishPost fans a BlogPost out to every configured, enabled publisher
// listed in blog.platforms (or every enabled publisher, if platforms is
// empty), recording a PublishedRecord in UnifiedMemory for each platform
// that accepted delivery. Platforms are delivered in parallel and share
// no state; a publisher rejection is never fatal to the others.
func (o *Orchestrator) PublishPost(ctx context.Context, post *model.BlogPost) error {
	platforms := o.Config.Blog.Platforms
	if len(platforms) == 0 {
		for name := range o.publishers {
			platforms = append(platforms, name)
		}
	}

	delivered := model.NewStringSet()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range platforms {
		p, ok := o.publishers[name]
		if !ok {
			continue
		}
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			publishEvent(event.PublishStarted, event.PublishStartedData{Slug: post.Slug, Publisher: name})

			payload, err := p.Render(post)
			if err != nil {
				publishEvent(event.PublishRejected, event.PublishRejectedData{Slug: post.Slug, Publisher: name, Error: err.Error()})
				return nil
			}
			receipt, err := p.Deliver(gctx, payload)
			if err != nil {
				publishEvent(event.PublishRejected, event.PublishRejectedData{Slug: post.Slug, Publisher: name, Error: err.Error()})
				return nil
			}
			publishEvent(event.PublishDelivered, event.PublishDeliveredData{Slug: post.Slug, Publisher: name, Receipt: receipt.Detail})

			mu.Lock()
			delivered.Add(name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(delivered) == 0 {
		return nil
	}
	post.PlatformsPublished = delivered
	if err := o.memory.RecordPublished(ctx, post.Slug, post.Title, post.PostType, post.Date, delivered); err != nil {
		return fmt.Errorf("orchestrator: record published: %w", err)
	}
	return nil
}

// PublishExisting reads already-synthesized posts back from blog state
// and fans each out. An empty slug list publishes every recorded post.
// Returns the slugs that reached at least one platform.
func (o *Orchestrator) PublishExisting(ctx context.Context, slugs []string) ([]string, error) {
	bs, err := o.state.LoadBlogState(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}

	var published []string
	for _, entry := range bs.Entries {
		if len(wanted) > 0 && !wanted[entry.Slug] {
			continue
		}
		post, err := o.blog.ReadPost(entry.Slug)
		if err != nil {
			return published, fmt.Errorf("orchestrator: read post %s: %w", entry.Slug, err)
		}
		if err := o.PublishPost(ctx, post); err != nil {
			return published, err
		}
		if len(post.PlatformsPublished) > 0 {
			published = append(published, entry.Slug)
		}
	}
	return published, nil
}
