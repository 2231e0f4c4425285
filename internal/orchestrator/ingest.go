package orchestrator

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/silverl/distill/internal/event"
	"github.com/silverl/distill/internal/normalize"
	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

// IngestResult is everything one Ingest call produced: the deduplicated,
// canonically-ID'd Sessions and ContentItems (already passed through
// internal/analyzer), bucketed by calendar date, plus every parser
// diagnostic collected along the way.
type IngestResult struct {
	Sessions    map[string][]model.Session
	Items       map[string][]model.ContentItem
	Diagnostics []parser.Diagnostic
}

// sourceJob is one (parser, location) pair to run concurrently.
type sourceJob struct {
	p        parser.SourceParser
	location string
}

// Ingest runs every configured source parser, merges and canonicalizes
// their output via internal/normalize, decorates sessions via
// internal/analyzer, and buckets the result by calendar date. Discover
// failures are fatal only for the affected source; a
// ParserFailed event is published and the other sources continue.
func (o *Orchestrator) Ingest(ctx context.Context) (*IngestResult, error) {
	var jobs []sourceJob

	// sessions.sinceDays bounds discovery to recently-touched session
	// files; 0 means no bound.
	var cutoff time.Time
	if d := o.Config.Sessions.SinceDays; d > 0 {
		cutoff = time.Now().AddDate(0, 0, -d)
	}

	for _, root := range o.sessionSourceRoots() {
		for _, p := range o.sessionParsers {
			publishEvent(event.ParserStarted, event.ParserStartedData{Dialect: p.ID(), Root: root})
			locations, err := p.Discover(ctx, root)
			if err != nil {
				publishEvent(event.ParserFailed, event.ParserFailedData{Dialect: p.ID(), Root: root, Error: err.Error()})
				continue
			}
			for _, loc := range locations {
				if !modifiedSince(loc, cutoff) {
					continue
				}
				jobs = append(jobs, sourceJob{p: p, location: loc})
			}
		}
	}

	for _, fs := range o.Config.Intake.Feeds {
		jobs = append(jobs, sourceJob{p: o.feedParser, location: fs.URL})
	}
	if path := o.Config.Intake.BrowserHistoryPath; path != "" {
		jobs = append(jobs, sourceJob{p: o.browserParser, location: path})
	}
	if root := o.Config.Intake.NewslettersPath; root != "" {
		publishEvent(event.ParserStarted, event.ParserStartedData{Dialect: o.newsletterParser.ID(), Root: root})
		locations, err := o.newsletterParser.Discover(ctx, root)
		if err != nil {
			publishEvent(event.ParserFailed, event.ParserFailedData{Dialect: o.newsletterParser.ID(), Root: root, Error: err.Error()})
		} else {
			for _, loc := range locations {
				jobs = append(jobs, sourceJob{p: o.newsletterParser, location: loc})
			}
		}
	}

	results, diagnostics := o.runParserJobs(ctx, jobs)

	merger := normalize.NewMerger()
	for _, res := range results {
		for _, sess := range res.Sessions {
			sess.ID = normalize.DeriveID(sess.Source, sess.ID, sess.URL, sess.Title, sess.Body, sess.BucketDate())
			if sess.IngestedAt.IsZero() {
				sess.IngestedAt = time.Now()
			}
			if !merger.AddSession(sess) {
				publishEvent(event.ItemDeduped, event.ItemDedupedData{ID: sess.ID, Source: string(sess.Source)})
			}
		}
		for _, item := range res.Items {
			item.ID = normalize.DeriveID(item.Source, item.ID, item.URL, item.Title, item.Body, item.BucketDate())
			if item.IngestedAt.IsZero() {
				item.IngestedAt = time.Now()
			}
			if !merger.AddItem(item) {
				publishEvent(event.ItemDeduped, event.ItemDedupedData{ID: item.ID, Source: string(item.Source)})
			}
		}
		diagnostics = append(diagnostics, res.Diagnostics...)
	}

	sessions := make([]model.Session, 0, len(merger.Sessions()))
	for _, s := range merger.Sessions() {
		sessions = append(sessions, o.analyzer.Analyze(s))
	}

	return &IngestResult{
		Sessions:    normalize.BucketSessions(sessions, o.location),
		Items:       normalize.BucketItems(merger.Items(), o.location),
		Diagnostics: diagnostics,
	}, nil
}

// runParserJobs fans jobs out across ParserConcurrency workers, each
// calling Parse on its assigned (parser, location) pair. A single
// location's Parse error is recorded as a diagnostic rather than
// aborting the batch; Discover-level failures are handled by the caller.
func (o *Orchestrator) runParserJobs(ctx context.Context, jobs []sourceJob) ([]*parser.ParseResult, []parser.Diagnostic) {
	results := make([]*parser.ParseResult, len(jobs))
	var mu sync.Mutex
	var diagnostics []parser.Diagnostic

	concurrency := o.ParserConcurrency
	if concurrency <= 0 {
		concurrency = defaultParserConcurrency
	}
	sem := make(chan struct{}, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			res, err := job.p.Parse(gctx, job.location)
			if err != nil {
				mu.Lock()
				diagnostics = append(diagnostics, parser.Diagnostic{Location: job.location, Message: err.Error(), Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// A cancellation propagates to every in-flight worker; the
	// error is otherwise always nil since per-job failures are recorded
	// as diagnostics, not returned.
	_ = g.Wait()

	out := make([]*parser.ParseResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, diagnostics
}

// modifiedSince reports whether a session location was touched after
// cutoff. A location that cannot be stat'd is kept so Parse surfaces the
// real failure as a diagnostic.
func modifiedSince(location string, cutoff time.Time) bool {
	if cutoff.IsZero() {
		return true
	}
	info, err := os.Stat(location)
	if err != nil {
		return true
	}
	return info.ModTime().After(cutoff)
}

// sessionSourceRoots returns every directory the session-dialect parsers
// should be run against: the configured sources plus, if requested, the
// conventional user-wide session directories.
func (o *Orchestrator) sessionSourceRoots() []string {
	roots := append([]string(nil), o.Config.Sessions.Sources...)
	if o.Config.Sessions.IncludeGlobal {
		roots = append(roots, globalSessionRoots()...)
	}
	return roots
}
