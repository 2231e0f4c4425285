package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/silverl/distill/internal/analyzer"
	"github.com/silverl/distill/internal/blog"
	"github.com/silverl/distill/internal/blogcontext"
	"github.com/silverl/distill/internal/editorial"
	"github.com/silverl/distill/internal/journal"
	"github.com/silverl/distill/internal/memory"
	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/internal/publish"
	"github.com/silverl/distill/internal/state"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

// fakeParser is a minimal parser.SourceParser that yields one canned
// location and, on Parse, a fixed ParseResult.
type fakeParser struct {
	dialect   string
	locations []string
	result    *parser.ParseResult
}

func (f *fakeParser) ID() string { return f.dialect }

func (f *fakeParser) Discover(ctx context.Context, root string) ([]string, error) {
	return f.locations, nil
}

func (f *fakeParser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	return f.result, nil
}

// fakeWorker is a deterministic llm.Worker stub: Render ignores the
// template and returns a fixed prompt; Invoke returns canned markdown
// with a top-level heading so journal.stripChrome/countWords behave.
type fakeWorker struct {
	body string
}

func (f *fakeWorker) Render(tmpl string, data any) (string, error) { return "prompt", nil }
func (f *fakeWorker) Invoke(ctx context.Context, prompt string) (string, error) {
	return f.body, nil
}
func (f *fakeWorker) Timeout() time.Duration { return time.Minute }

// fakePublisher records every post it was asked to deliver.
type fakePublisher struct {
	name     string
	reject   bool
	received []string
}

func (f *fakePublisher) Name() string { return f.name }
func (f *fakePublisher) Render(post *model.BlogPost) (*publish.Payload, error) {
	return &publish.Payload{Platform: f.name, Slug: post.Slug, Body: []byte(post.BodyMarkdown)}, nil
}
func (f *fakePublisher) Deliver(ctx context.Context, payload *publish.Payload) (*publish.Receipt, error) {
	if f.reject {
		return nil, context.DeadlineExceeded
	}
	f.received = append(f.received, payload.Slug)
	return &publish.Receipt{Platform: f.name, Detail: "ok"}, nil
}

func newTestOrchestrator(t *testing.T, cfg *model.Config) (*Orchestrator, *fakeWorker) {
	t.Helper()
	store := storage.New(t.TempDir())
	st := state.New(store)
	mem := memory.New(store)
	ed := editorial.New(store)
	worker := &fakeWorker{body: "# Today\n\nSome synthesized prose about the day.\n"}

	o := &Orchestrator{
		Config:    cfg,
		storage:   store,
		state:     st,
		memory:    mem,
		editorial: ed,
		analyzer:  analyzer.New(cfg.Projects),

		worker:      worker,
		journal:     journal.New(worker, store, st),
		blogContext: blogcontext.New(),
		blog:        blog.New(worker, store, st),
		publishers:  map[string]publish.Publisher{},

		location: time.Local,
	}
	return o, worker
}

func baseConfig(dir string) *model.Config {
	return &model.Config{
		Output:  model.OutputConfig{Directory: dir},
		Journal: model.JournalConfig{Style: "default"},
	}
}

func sessionResult(id, source, body string, started time.Time) *parser.ParseResult {
	return &parser.ParseResult{
		Sessions: []model.Session{
			{
				ContentItem: model.ContentItem{
					ID:     id,
					Source: model.Source(source),
					Title:  "session " + id,
					Body:   body,
				},
				StartedAt: started,
				EndedAt:   started.Add(10 * time.Minute),
			},
		},
	}
}

func TestIngestDedupesIdenticalSessionsAcrossParsers(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Sessions.Sources = []string{"root"}
	o, _ := newTestOrchestrator(t, cfg)

	started := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	res := sessionResult("native-1", "claude-session", "same body", started)

	o.sessionParsers = []parser.SourceParser{
		&fakeParser{dialect: "chatlog", locations: []string{"a"}, result: res},
		&fakeParser{dialect: "chatlog-dup", locations: []string{"b"}, result: res},
	}

	result, err := o.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	total := 0
	for _, sessions := range result.Sessions {
		total += len(sessions)
	}
	if total != 1 {
		t.Fatalf("expected the duplicate session to be deduped to 1, got %d", total)
	}
}

func TestIngestBucketsByStartedAtDate(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Sessions.Sources = []string{"root"}
	o, _ := newTestOrchestrator(t, cfg)

	started := time.Date(2026, 7, 29, 23, 30, 0, 0, time.UTC)
	res := sessionResult("native-2", "codex-session", "distinct body text", started)
	o.sessionParsers = []parser.SourceParser{
		&fakeParser{dialect: "rollout", locations: []string{"a"}, result: res},
	}

	result, err := o.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(result.Sessions) != 1 {
		t.Fatalf("expected sessions bucketed under exactly one date, got %+v", result.Sessions)
	}
}

func TestIngestCarriesParseDiagnosticsWithoutAborting(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Sessions.Sources = []string{"root"}
	o, _ := newTestOrchestrator(t, cfg)

	good := sessionResult("native-3", "claude-session", "ok", time.Now())
	o.sessionParsers = []parser.SourceParser{
		&fakeParser{dialect: "chatlog", locations: []string{"loc"}, result: good},
	}

	// Discover succeeds trivially for fakeParser; exercise that a
	// malformed file on one of several jobs doesn't abort the batch by
	// using a parser whose Parse result carries only a diagnostic.
	o.sessionParsers = append(o.sessionParsers, &fakeParser{dialect: "broken", locations: []string{"bad"}, result: &parser.ParseResult{
		Diagnostics: []parser.Diagnostic{{Location: "bad", Message: "malformed"}},
	}})

	result, err := o.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic carried through, got %+v", result.Diagnostics)
	}
}

func TestSynthesizeJournalWritesAndFoldsIntoMemory(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	o, _ := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	sessions := []model.Session{
		{
			ContentItem: model.ContentItem{ID: "s1", Source: model.SourceClaudeSession, Title: "work", Project: "distill"},
			StartedAt:   time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC),
			EndedAt:     time.Date(2026, 7, 30, 9, 30, 0, 0, time.UTC),
		},
	}

	outcome, err := o.SynthesizeJournal(ctx, "2026-07-30", "default", sessions, nil, false)
	if err != nil {
		t.Fatalf("SynthesizeJournal failed: %v", err)
	}
	if outcome.Pending || outcome.Skipped {
		t.Fatalf("expected a freshly written entry, got %+v", outcome)
	}
	if outcome.Entry == nil {
		t.Fatal("expected a non-nil journal entry")
	}

	mem, err := o.memory.Load(ctx)
	if err != nil {
		t.Fatalf("memory.Load failed: %v", err)
	}
	if len(mem.DailyEntries) != 1 {
		t.Fatalf("expected journal synthesis to record one daily memory entry, got %+v", mem.DailyEntries)
	}

	// A second call with the same sessions and no force must be a cache
	// hit: Skipped, not a fresh write, and memory must not double-record.
	outcome2, err := o.SynthesizeJournal(ctx, "2026-07-30", "default", sessions, nil, false)
	if err != nil {
		t.Fatalf("SynthesizeJournal (second call) failed: %v", err)
	}
	if !outcome2.Skipped {
		t.Fatalf("expected the second call to be a cache hit, got %+v", outcome2)
	}

	mem, err = o.memory.Load(ctx)
	if err != nil {
		t.Fatalf("memory.Load failed: %v", err)
	}
	if len(mem.DailyEntries) != 1 {
		t.Fatalf("expected no duplicate memory recording on a skipped journal, got %+v", mem.DailyEntries)
	}
}

func TestPublishPostSkipsRejectedPlatformsButRecordsDelivered(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Blog.Platforms = []string{"good", "bad"}
	o, _ := newTestOrchestrator(t, cfg)

	good := &fakePublisher{name: "good"}
	bad := &fakePublisher{name: "bad", reject: true}
	o.publishers = map[string]publish.Publisher{"good": good, "bad": bad}

	post := &model.BlogPost{Slug: "weekly-2026-W31", PostType: model.PostTypeWeekly, Title: "Week 31", BodyMarkdown: "body", Date: "2026-07-30"}

	if err := o.PublishPost(context.Background(), post); err != nil {
		t.Fatalf("PublishPost failed: %v", err)
	}
	if len(good.received) != 1 {
		t.Errorf("expected the healthy publisher to receive the post, got %+v", good.received)
	}
	if len(bad.received) != 0 {
		t.Errorf("expected the rejecting publisher to receive nothing, got %+v", bad.received)
	}
	if !post.PlatformsPublished.Has("good") || post.PlatformsPublished.Has("bad") {
		t.Errorf("expected PlatformsPublished to record only the delivering platform, got %+v", post.PlatformsPublished)
	}
}

func TestPublishPostNoDeliveryIsNotAnError(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Blog.Platforms = []string{"bad"}
	o, _ := newTestOrchestrator(t, cfg)
	o.publishers = map[string]publish.Publisher{"bad": &fakePublisher{name: "bad", reject: true}}

	post := &model.BlogPost{Slug: "weekly-2026-W31", PostType: model.PostTypeWeekly, Date: "2026-07-30"}
	if err := o.PublishPost(context.Background(), post); err != nil {
		t.Fatalf("expected no error when every platform rejects, got %v", err)
	}
}

func TestDateRangeExpandsInclusive(t *testing.T) {
	dates, err := dateRange("2026-07-29", "2026-07-31")
	if err != nil {
		t.Fatalf("dateRange failed: %v", err)
	}
	want := []string{"2026-07-29", "2026-07-30", "2026-07-31"}
	if len(dates) != len(want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
	for i, d := range want {
		if dates[i] != d {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], d)
		}
	}
}

func TestDateRangeRejectsSinceAfterUntil(t *testing.T) {
	if _, err := dateRange("2026-08-01", "2026-07-31"); err == nil {
		t.Fatal("expected an error when since is after until")
	}
}

func TestExtractMemorySignalsSplitsSections(t *testing.T) {
	body := "## Today\n\nSome intro sentence. More text.\n\n## Decisions\n\n- Use errgroup for bounded concurrency\n\n## Open questions\n\n- Should thematic posts dedupe on name or slug?\n"
	insights, decisions, openQuestions := extractMemorySignals(body)

	if len(decisions) != 1 || decisions[0] != "Use errgroup for bounded concurrency" {
		t.Errorf("unexpected decisions: %+v", decisions)
	}
	if len(openQuestions) == 0 {
		t.Errorf("expected at least one open question, got none")
	}
	if len(insights) == 0 {
		t.Errorf("expected at least one insight from the intro section, got none")
	}
}
