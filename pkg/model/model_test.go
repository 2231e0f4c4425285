package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStringSetMarshalSorted(t *testing.T) {
	s := NewStringSet("zeta", "alpha", "mu")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["alpha","mu","zeta"]` {
		t.Errorf("got %s, want sorted array", data)
	}
}

func TestStringSetRoundTrip(t *testing.T) {
	var s StringSet
	if err := json.Unmarshal([]byte(`["a","b","a"]`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(s) != 2 || !s.Has("a") || !s.Has("b") {
		t.Errorf("expected deduplicated set {a,b}, got %v", s)
	}
}

func TestContentItemBucketDate(t *testing.T) {
	ingested := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	item := ContentItem{IngestedAt: ingested}
	if !item.BucketDate().Equal(ingested) {
		t.Errorf("expected fallback to ingested_at when published_at is nil")
	}

	published := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	item.PublishedAt = &published
	if !item.BucketDate().Equal(published) {
		t.Errorf("expected published_at to take priority")
	}
}

func TestSessionSummarize(t *testing.T) {
	s := &Session{
		ContentItem:     ContentItem{ID: "sess-1", Title: "debugging flaky test", Project: "distill"},
		DurationSeconds: 1800,
		ToolUsage:       map[string]int{"bash": 4},
	}
	summary := s.Summarize()
	if summary.Duration != 30*time.Minute {
		t.Errorf("expected 30m duration, got %v", summary.Duration)
	}
	if summary.Project != "distill" {
		t.Errorf("expected project to carry through, got %q", summary.Project)
	}
}

func TestEditorialNoteMatching(t *testing.T) {
	global := &EditorialNote{Text: "stay concise"}
	if !global.MatchesWeek("2026-W05") || !global.MatchesTheme("golang") {
		t.Error("global note should match any week or theme")
	}

	weekly := &EditorialNote{Target: "week:2026-W05"}
	if !weekly.MatchesWeek("2026-W05") {
		t.Error("weekly note should match its own week")
	}
	if weekly.MatchesWeek("2026-W06") {
		t.Error("weekly note should not match a different week")
	}

	themed := &EditorialNote{Target: "theme:golang"}
	if !themed.MatchesTheme("golang") || themed.MatchesTheme("rust") {
		t.Error("themed note should match only its own theme")
	}
}

func TestNewUnifiedMemory(t *testing.T) {
	mem := NewUnifiedMemory()
	if mem.Threads == nil || mem.Entities == nil {
		t.Error("expected initialized maps")
	}
	if len(mem.DailyEntries) != 0 || len(mem.Published) != 0 {
		t.Error("expected empty slices for a fresh memory")
	}
}
