package normalize

import (
	"testing"
	"time"

	"github.com/silverl/distill/pkg/model"
)

func TestDeriveIDStableForNativeID(t *testing.T) {
	date := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	a := DeriveID(model.SourceClaudeSession, "sess-123", "", "title", "body", date)
	b := DeriveID(model.SourceClaudeSession, "sess-123", "", "different title", "different body", date)
	if a != b {
		t.Errorf("expected native id to dominate derivation, got %q != %q", a, b)
	}
}

func TestDeriveIDDedupesEquivalentURLs(t *testing.T) {
	date := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	a := DeriveID(model.SourceRSS, "", "https://Example.com/post/", "t", "b", date)
	b := DeriveID(model.SourceRSS, "", "https://example.com/post", "t", "b", date)
	if a != b {
		t.Errorf("expected normalized URLs to dedupe, got %q != %q", a, b)
	}
}

func TestDeriveIDFallsBackToContentHash(t *testing.T) {
	date := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	a := DeriveID(model.SourceRSS, "", "", "title", "body", date)
	b := DeriveID(model.SourceRSS, "", "", "title", "body", date)
	c := DeriveID(model.SourceRSS, "", "", "other title", "body", date)
	if a != b {
		t.Error("expected identical inputs to produce identical ids")
	}
	if a == c {
		t.Error("expected different titles to produce different ids")
	}
}

func TestMergerAddItemDedup(t *testing.T) {
	m := NewMerger()
	ingested := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := model.ContentItem{ID: "x", Title: "first", IngestedAt: ingested}
	if !m.AddItem(first) {
		t.Error("expected first insert to report new")
	}
	second := model.ContentItem{ID: "x", Title: "updated", IngestedAt: ingested.Add(time.Hour)}
	if m.AddItem(second) {
		t.Error("expected duplicate ID to report not-new")
	}

	items := m.Items()
	if len(items) != 1 {
		t.Fatalf("expected exactly one deduplicated item, got %d", len(items))
	}
	if items[0].Title != "updated" {
		t.Errorf("expected last-write-wins on title, got %q", items[0].Title)
	}
	if !items[0].IngestedAt.Equal(ingested) {
		t.Errorf("expected first-write-wins on IngestedAt, got %v", items[0].IngestedAt)
	}
}

func TestBucketSessionsByStartedAt(t *testing.T) {
	loc := time.UTC
	s := model.Session{
		ContentItem: model.ContentItem{ID: "s1"},
		StartedAt:   time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC),
	}
	buckets := BucketSessions([]model.Session{s}, loc)
	if _, ok := buckets["2026-02-08"]; !ok {
		t.Errorf("expected session bucketed under 2026-02-08, got buckets %v", buckets)
	}
}

func TestBucketSessionsFallsBackToIngestedAt(t *testing.T) {
	loc := time.UTC
	s := model.Session{
		ContentItem: model.ContentItem{ID: "s1", IngestedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	buckets := BucketSessions([]model.Session{s}, loc)
	if _, ok := buckets["2026-03-01"]; !ok {
		t.Errorf("expected fallback to ingested_at, got buckets %v", buckets)
	}
}
