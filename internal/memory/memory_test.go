package memory

import (
	"context"
	"testing"
	"time"

	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(storage.New(t.TempDir()))
}

func TestLoadEmptyWhenNothingPersisted(t *testing.T) {
	st := newTestStore(t)
	mem, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(mem.DailyEntries) != 0 || len(mem.Threads) != 0 {
		t.Errorf("expected empty memory, got %+v", mem)
	}
}

func TestCommitLoadRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mem, _ := st.Load(ctx)
	mem.Threads["golang concurrency"] = model.MemoryThread{Name: "golang concurrency", MentionCount: 3}
	if err := st.Commit(ctx, mem); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reloaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.Threads["golang concurrency"].MentionCount != 3 {
		t.Errorf("expected committed thread to round-trip, got %+v", reloaded.Threads)
	}
}

func TestCommitLoadIsNoop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mem, _ := st.Load(ctx)
	mem.Threads["x"] = model.MemoryThread{Name: "x", MentionCount: 1}
	if err := st.Commit(ctx, mem); err != nil {
		t.Fatal(err)
	}

	reloaded, err := st.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Commit(ctx, reloaded); err != nil {
		t.Fatal(err)
	}
	again, err := st.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Threads["x"].MentionCount != 1 {
		t.Error("expected commit(load()) to be a no-op")
	}
}

func TestRecordDailyMergesIntoExistingEntry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.RecordDaily(ctx, "2026-02-08", []string{"s1"}, nil, model.NewStringSet("golang"), nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordDaily(ctx, "2026-02-08", []string{"s2"}, nil, model.NewStringSet("testing"), []string{"insight"}, nil, nil); err != nil {
		t.Fatal(err)
	}

	mem, _ := st.Load(ctx)
	if len(mem.DailyEntries) != 1 {
		t.Fatalf("expected one merged daily entry, got %d", len(mem.DailyEntries))
	}
	entry := mem.DailyEntries[0]
	if len(entry.SessionIDs) != 2 {
		t.Errorf("expected both session ids merged, got %v", entry.SessionIDs)
	}
	if !entry.Themes.Has("golang") || !entry.Themes.Has("testing") {
		t.Errorf("expected both themes merged, got %v", entry.Themes)
	}
}

func TestUpdateThreadsMentionCountMonotone(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	day1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	if err := st.UpdateThreads(ctx, []string{"golang"}, day1); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateThreads(ctx, []string{"golang"}, day2); err != nil {
		t.Fatal(err)
	}

	mem, _ := st.Load(ctx)
	thread := mem.Threads["golang"]
	if thread.MentionCount != 2 {
		t.Errorf("expected mention count 2, got %d", thread.MentionCount)
	}
	if !thread.LastSeen.Equal(day2) {
		t.Errorf("expected last_seen to advance to day2, got %v", thread.LastSeen)
	}
	if thread.Status != model.ThreadActive {
		t.Errorf("expected thread active after recent mention, got %v", thread.Status)
	}
}

func TestUpdateThreadsMarksDormantAfterWindow(t *testing.T) {
	mem := model.NewUnifiedMemory()
	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ApplyThreadUpdates(mem, []string{"old topic"}, day1, 14)

	later := day1.AddDate(0, 0, 20)
	ApplyThreadUpdates(mem, nil, later, 14)

	if mem.Threads["old topic"].Status != model.ThreadDormant {
		t.Errorf("expected thread dormant after 20 days unseen, got %v", mem.Threads["old topic"].Status)
	}
}

func TestApplyEntityUpdatesCapsRecentContexts(t *testing.T) {
	mem := model.NewUnifiedMemory()
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		ApplyEntityUpdates(mem, []string{"zerolog"}, date, "library", "context snippet")
	}
	entity := mem.Entities["zerolog"]
	if entity.MentionCount != 8 {
		t.Errorf("expected mention count 8, got %d", entity.MentionCount)
	}
	if len(entity.RecentContexts) != maxRecentContexts {
		t.Errorf("expected recent contexts capped at %d, got %d", maxRecentContexts, len(entity.RecentContexts))
	}
}

func TestRecordPublishedAppendOnly(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.RecordPublished(ctx, "weekly-2026-W06", "Week 6", model.PostTypeWeekly, "2026-02-08", model.NewStringSet("vault")); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordPublished(ctx, "weekly-2026-W07", "Week 7", model.PostTypeWeekly, "2026-02-15", model.NewStringSet("vault")); err != nil {
		t.Fatal(err)
	}
	mem, _ := st.Load(ctx)
	if len(mem.Published) != 2 {
		t.Errorf("expected two published records, got %d", len(mem.Published))
	}
}

func TestActiveThreadsWindowFilter(t *testing.T) {
	mem := model.NewUnifiedMemory()
	asOf := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	mem.Threads["recent"] = model.MemoryThread{Name: "recent", LastSeen: asOf.AddDate(0, 0, -3)}
	mem.Threads["stale"] = model.MemoryThread{Name: "stale", LastSeen: asOf.AddDate(0, 0, -30)}

	active := ActiveThreads(mem, asOf, 7)
	if len(active) != 1 || active[0].Name != "recent" {
		t.Errorf("expected only 'recent' in 7-day window, got %+v", active)
	}
}
