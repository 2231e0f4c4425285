package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/silverl/distill/internal/blog"
	"github.com/silverl/distill/internal/event"
	"github.com/silverl/distill/internal/state"
	"github.com/silverl/distill/pkg/model"
)

// SynthesizeBlogs runs the Blog Context Builder and Blog Synthesizer over
// every ISO week touched by journals, then over every thematic candidate
// memory currently surfaces.
func (o *Orchestrator) SynthesizeBlogs(ctx context.Context, journals []model.JournalEntry, force bool) ([]*model.BlogPost, error) {
	var posts []*model.BlogPost

	weekly, err := o.synthesizeWeeklyBlogs(ctx, journals, force)
	if err != nil {
		return posts, err
	}
	posts = append(posts, weekly...)

	thematic, err := o.synthesizeThematicBlogs(ctx, journals, force)
	if err != nil {
		return posts, err
	}
	posts = append(posts, thematic...)

	return posts, nil
}

func (o *Orchestrator) synthesizeWeeklyBlogs(ctx context.Context, journals []model.JournalEntry, force bool) ([]*model.BlogPost, error) {
	weeks := map[string]bool{}
	for _, j := range journals {
		if t, err := time.Parse("2006-01-02", j.Date); err == nil {
			y, w := t.ISOWeek()
			weeks[fmt.Sprintf("%04d-W%02d", y, w)] = true
		}
	}

	var isoWeeks []string
	for w := range weeks {
		isoWeeks = append(isoWeeks, w)
	}
	sort.Strings(isoWeeks)

	mem, err := o.memory.Load(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := o.editorial.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	configHash, err := state.HashConfig(o.Config.Blog)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: hash blog config: %w", err)
	}

	var posts []*model.BlogPost
	for _, isoWeek := range isoWeeks {
		wc, ok := o.blogContext.BuildWeeklyContext(isoWeek, journals, mem)
		if !ok {
			publishEvent(event.BlogSkipped, event.BlogSkippedData{PostType: "weekly", Reason: "fewer than min_journals_for_weekly journals this week"})
			continue
		}

		slug := blog.WeeklySlug(isoWeek)
		weekNotes := matchingNotes(notes, func(n model.EditorialNote) bool { return n.MatchesWeek(isoWeek) })
		var sourceDates []string
		for _, j := range journals {
			if y, w := mustParseWeek(j.Date); fmt.Sprintf("%04d-W%02d", y, w) == isoWeek {
				sourceDates = append(sourceDates, j.Date)
			}
		}

		publishEvent(event.BlogStarted, event.BlogStartedData{Slug: slug, PostType: string(model.PostTypeWeekly)})
		post, err := o.blog.SynthesizeWeekly(ctx, slug, wc, sourceDates, weekNotes, o.Config.Blog.IncludeDiagrams, configHash, force)
		if err != nil {
			publishEvent(event.BlogFailed, event.BlogFailedData{Slug: slug, PostType: string(model.PostTypeWeekly), Error: err.Error()})
			continue
		}
		publishEvent(event.BlogCommitted, event.BlogCommittedData{
			Slug: slug, PostType: string(model.PostTypeWeekly), WordCount: countWords(post.BodyMarkdown),
			FilePath: fmt.Sprintf("blog/%s.md", slug), OverlapExceeded: post.OverlapExceeded,
		})
		for _, n := range weekNotes {
			_ = o.editorial.MarkNoteUsed(ctx, n.ID)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (o *Orchestrator) synthesizeThematicBlogs(ctx context.Context, journals []model.JournalEntry, force bool) ([]*model.BlogPost, error) {
	mem, err := o.memory.Load(ctx)
	if err != nil {
		return nil, err
	}
	bs, err := o.state.LoadBlogState(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := o.editorial.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	configHash, err := state.HashConfig(o.Config.Blog)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: hash blog config: %w", err)
	}

	publishedThemes := map[string]bool{}
	for name := range mem.Threads {
		base := blog.ThematicSlugBase(name)
		for _, e := range bs.Entries {
			if e.PostType == model.PostTypeThematic && strings.HasPrefix(e.Slug, base) {
				publishedThemes[name] = true
				break
			}
		}
	}

	candidates := o.blogContext.ThemeCandidates(mem, time.Now(), publishedThemes, journals)

	var posts []*model.BlogPost
	for _, candidate := range candidates {
		base := blog.ThematicSlugBase(candidate.Theme)
		slug := blog.ResolveSlugCollision(base, func(s string) bool {
			return o.storage.FileExists(fmt.Sprintf("blog/%s.md", s))
		})
		themeNotes := matchingNotes(notes, func(n model.EditorialNote) bool { return n.MatchesTheme(base) })

		tc := model.ThematicContext{Candidate: candidate}
		var sourceDates []string
		for _, j := range journals {
			sourceDates = append(sourceDates, j.Date)
		}

		publishEvent(event.BlogStarted, event.BlogStartedData{Slug: slug, PostType: string(model.PostTypeThematic)})
		post, err := o.blog.SynthesizeThematic(ctx, slug, tc, sourceDates, themeNotes, o.Config.Blog.IncludeDiagrams, configHash, force)
		if err != nil {
			publishEvent(event.BlogFailed, event.BlogFailedData{Slug: slug, PostType: string(model.PostTypeThematic), Error: err.Error()})
			continue
		}
		publishEvent(event.BlogCommitted, event.BlogCommittedData{
			Slug: slug, PostType: string(model.PostTypeThematic), WordCount: countWords(post.BodyMarkdown),
			FilePath: fmt.Sprintf("blog/%s.md", slug), OverlapExceeded: post.OverlapExceeded,
		})
		for _, n := range themeNotes {
			_ = o.editorial.MarkNoteUsed(ctx, n.ID)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func matchingNotes(notes []model.EditorialNote, match func(model.EditorialNote) bool) []model.EditorialNote {
	var out []model.EditorialNote
	for _, n := range notes {
		if !n.Used && match(n) {
			out = append(out, n)
		}
	}
	return out
}

func mustParseWeek(date string) (year, week int) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0
	}
	return t.ISOWeek()
}

func countWords(body string) int {
	return len(strings.Fields(body))
}
