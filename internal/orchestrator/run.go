package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/silverl/distill/pkg/model"
)

// RunOptions parameterizes one end-to-end orchestrator run.
type RunOptions struct {
	// Since and Until bound the date range (inclusive, "2006-01-02") of
	// journals to synthesize. Ingestion itself is always run over every
	// configured source regardless of range.
	Since, Until string

	// Styles lists the journal styles to synthesize per date; defaults to
	// []string{Config.Journal.Style} when empty.
	Styles []string

	// ForceRegenerate bypasses every idempotence check.
	ForceRegenerate bool

	// SkipBlogs stops the run after journal synthesis (used by the
	// `distill journal` CLI subcommand).
	SkipBlogs bool

	// SkipPublish runs ingestion and synthesis but not the publisher
	// fan-out stage (used by the `distill journal`/`distill blog` CLI
	// subcommands, which publish separately via `distill publish`).
	SkipPublish bool
}

// RunSummary reports what one Run call produced, for the CLI to print a
// closing summary.
type RunSummary struct {
	SessionCount     int
	ItemCount        int
	DigestsWritten   int
	JournalsWritten  int
	JournalsPending  int
	JournalsSkipped  int
	BlogPostsWritten int
	Diagnostics      int

	// PendingDates lists the dates whose journal retries are exhausted
	// and which require attention before blogs covering them can run.
	PendingDates []string
}

// Run drives the whole pipeline in topological order for the requested
// date range: ingest every configured source, synthesize a journal per
// (date, style), synthesize weekly/thematic blog posts from the
// resulting journals, then fan each post out to every enabled publisher.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	summary := &RunSummary{}

	ingestResult, err := o.Ingest(ctx)
	if err != nil {
		return summary, fmt.Errorf("orchestrator: ingest: %w", err)
	}
	summary.Diagnostics = len(ingestResult.Diagnostics)
	for _, sessions := range ingestResult.Sessions {
		summary.SessionCount += len(sessions)
	}
	for _, items := range ingestResult.Items {
		summary.ItemCount += len(items)
	}

	digests, err := o.WriteIntake(ctx, ingestResult.Items, opts.ForceRegenerate)
	if err != nil {
		return summary, fmt.Errorf("orchestrator: write intake: %w", err)
	}
	summary.DigestsWritten = digests

	styles := opts.Styles
	if len(styles) == 0 {
		style := o.Config.Journal.Style
		if style == "" {
			style = "default"
		}
		styles = []string{style}
	}

	dates, err := dateRange(opts.Since, opts.Until)
	if err != nil {
		return summary, fmt.Errorf("orchestrator: invalid date range: %w", err)
	}

	var journals []model.JournalEntry
	for _, date := range dates {
		sessions := ingestResult.Sessions[date]
		readIDs := itemIDs(ingestResult.Items[date])

		for _, style := range styles {
			outcome, err := o.SynthesizeJournal(ctx, date, style, sessions, readIDs, opts.ForceRegenerate)
			if err != nil {
				return summary, fmt.Errorf("orchestrator: synthesize journal %s/%s: %w", date, style, err)
			}
			switch {
			case outcome.Pending:
				summary.JournalsPending++
				summary.PendingDates = append(summary.PendingDates, date)
			case outcome.Skipped:
				journals = append(journals, *outcome.Entry)
				summary.JournalsSkipped++
			case outcome.Entry != nil:
				journals = append(journals, *outcome.Entry)
				summary.JournalsWritten++
			}
		}
	}

	if opts.SkipBlogs {
		return summary, nil
	}

	posts, err := o.SynthesizeBlogs(ctx, journals, opts.ForceRegenerate)
	if err != nil {
		return summary, fmt.Errorf("orchestrator: synthesize blogs: %w", err)
	}
	summary.BlogPostsWritten = len(posts)

	if !opts.SkipPublish {
		var publishErrs []error
		for _, post := range posts {
			if err := o.PublishPost(ctx, post); err != nil {
				logErr("publish post failed", err, map[string]string{"slug": post.Slug})
				publishErrs = append(publishErrs, fmt.Errorf("%s: %w", post.Slug, err))
			}
		}
		if len(publishErrs) > 0 {
			return summary, fmt.Errorf("orchestrator: publish failed for %d post(s): %w", len(publishErrs), errors.Join(publishErrs...))
		}
	}

	return summary, nil
}

// dateRange expands since..until (inclusive, "2006-01-02") into every
// calendar date in between. Since defaults to until when empty; until
// defaults to today when empty.
func dateRange(since, until string) ([]string, error) {
	var untilT time.Time
	var err error
	if until == "" {
		untilT = time.Now()
	} else {
		untilT, err = time.Parse("2006-01-02", until)
		if err != nil {
			return nil, fmt.Errorf("parse until: %w", err)
		}
	}

	var sinceT time.Time
	if since == "" {
		sinceT = untilT
	} else {
		sinceT, err = time.Parse("2006-01-02", since)
		if err != nil {
			return nil, fmt.Errorf("parse since: %w", err)
		}
	}

	if sinceT.After(untilT) {
		return nil, fmt.Errorf("since %s is after until %s", since, until)
	}

	var out []string
	for d := sinceT; !d.After(untilT); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format("2006-01-02"))
	}
	return out, nil
}

func itemIDs(items []model.ContentItem) []string {
	ids := make([]string, 0, len(items))
	for _, i := range items {
		ids = append(ids, i.ID)
	}
	return ids
}
