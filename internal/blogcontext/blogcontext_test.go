package blogcontext

import (
	"testing"
	"time"

	"github.com/silverl/distill/pkg/model"
)

func TestBuildWeeklyContextSkippedBelowMinimum(t *testing.T) {
	b := New()
	journals := []model.JournalEntry{
		{Date: "2026-02-09", Projects: []string{"distill"}},
	}
	mem := model.NewUnifiedMemory()
	_, ok := b.BuildWeeklyContext("2026-W07", journals, mem)
	if ok {
		t.Fatalf("expected weekly context to be skipped with only 1 journal against default minimum 3")
	}
}

func TestBuildWeeklyContextAggregatesAcrossWeek(t *testing.T) {
	b := New()
	b.MinJournalsForWeekly = 2
	journals := []model.JournalEntry{
		{Date: "2026-02-09", Projects: []string{"distill"}, BodyMarkdown: "worked on the parser refactor today"},
		{Date: "2026-02-10", Projects: []string{"distill", "trellis"}, BodyMarkdown: "continued the parser refactor and fixed tests"},
	}
	mem := model.NewUnifiedMemory()
	mem.DailyEntries = []model.DailyEntry{
		{Date: "2026-02-09", Decisions: []string{"use backoff/v4"}},
		{Date: "2026-02-10", Decisions: []string{"use backoff/v4"}, OpenQuestions: []string{"which embedder?"}},
	}
	mem.Threads = map[string]model.MemoryThread{
		"parser-refactor": {Name: "parser-refactor", Status: model.ThreadActive, LastSeen: mustParse(t, "2026-02-10"), MentionCount: 2},
	}

	ctx, ok := b.BuildWeeklyContext("2026-W07", journals, mem)
	if !ok {
		t.Fatalf("expected weekly context to be built")
	}
	if ctx.JournalCount != 2 {
		t.Errorf("expected journal count 2, got %d", ctx.JournalCount)
	}
	if !ctx.Projects.Has("distill") || !ctx.Projects.Has("trellis") {
		t.Errorf("expected project union to include distill and trellis, got %v", ctx.Projects)
	}
	if len(ctx.Decisions) != 1 || ctx.Decisions[0] != "use backoff/v4" {
		t.Errorf("expected deduped decisions, got %v", ctx.Decisions)
	}
	if len(ctx.OpenQuestions) != 1 {
		t.Errorf("expected 1 open question, got %v", ctx.OpenQuestions)
	}
	found := false
	for _, topic := range ctx.RecurringTopics {
		if topic == "parser" || topic == "refactor" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a recurring sub-topic appearing in both journals, got %v", ctx.RecurringTopics)
	}
}

func TestThemeCandidatesRanksByMentionCountThenRecency(t *testing.T) {
	b := New()
	mem := model.NewUnifiedMemory()
	mem.Threads = map[string]model.MemoryThread{
		"alpha": {Name: "alpha", MentionCount: 5, LastSeen: mustParse(t, "2026-02-01")},
		"beta":  {Name: "beta", MentionCount: 5, LastSeen: mustParse(t, "2026-02-05")},
		"gamma": {Name: "gamma", MentionCount: 2, LastSeen: mustParse(t, "2026-02-05")},
	}
	candidates := b.ThemeCandidates(mem, mustParse(t, "2026-02-10"), nil, nil)
	if len(candidates) != 2 {
		t.Fatalf("expected gamma excluded for being below threshold, got %d candidates: %+v", len(candidates), candidates)
	}
	if candidates[0].Theme != "beta" {
		t.Errorf("expected beta (more recent) ranked first, got %s", candidates[0].Theme)
	}
}

func TestThemeCandidatesExcludesAlreadyPublished(t *testing.T) {
	b := New()
	mem := model.NewUnifiedMemory()
	mem.Threads = map[string]model.MemoryThread{
		"alpha": {Name: "alpha", MentionCount: 5, LastSeen: mustParse(t, "2026-02-05")},
	}
	candidates := b.ThemeCandidates(mem, mustParse(t, "2026-02-10"), map[string]bool{"alpha": true}, nil)
	if len(candidates) != 0 {
		t.Errorf("expected published theme excluded, got %+v", candidates)
	}
}

func TestThemeCandidatesExcludesStaleThreads(t *testing.T) {
	b := New()
	mem := model.NewUnifiedMemory()
	mem.Threads = map[string]model.MemoryThread{
		"alpha": {Name: "alpha", MentionCount: 5, LastSeen: mustParse(t, "2025-12-01")},
	}
	candidates := b.ThemeCandidates(mem, mustParse(t, "2026-02-10"), nil, nil)
	if len(candidates) != 0 {
		t.Errorf("expected thread last seen >30 days ago excluded, got %+v", candidates)
	}
}

func mustParse(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", date, err)
	}
	return parsed
}
